package middleware

import (
	"context"
	"sync/atomic"
	"time"

	"wallet-service/pkg/apperror"
	"wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const drainPollInterval = 50 * time.Millisecond

// Drain tracks in-flight requests so shutdown can wait for wallet operations
// to finish, and rejects new requests once draining has started.
type Drain struct {
	active   atomic.Int64
	draining atomic.Bool
	log      zerolog.Logger
}

func NewDrain(log zerolog.Logger) *Drain {
	return &Drain{log: log}
}

// Middleware counts the request while it runs. Requests arriving after
// Shutdown get 503.
func (d *Drain) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.draining.Load() {
			c.Header("Connection", "close")
			response.Abort(c, apperror.ErrShuttingDown())
			return
		}

		d.active.Add(1)
		defer d.active.Add(-1)
		c.Next()
	}
}

// Shutdown stops accepting requests and waits until none are in flight or
// ctx ends.
func (d *Drain) Shutdown(ctx context.Context) error {
	d.draining.Store(true)

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for {
		active := d.active.Load()
		if active == 0 {
			d.log.Info().Msg("all in-flight requests completed")
			return nil
		}

		select {
		case <-ctx.Done():
			d.log.Warn().Int64("active_requests", active).Msg("drain timeout reached")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Active returns the number of in-flight requests.
func (d *Drain) Active() int64 {
	return d.active.Load()
}
