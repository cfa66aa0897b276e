package postgres

import (
	"errors"
	"fmt"
	"strings"

	"wallet-service/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	integrityConstraintClass = "23"
	lockNotAvailable         = "55P03"
)

// classify tags driver errors with the port-level sentinel the service
// understands. The original error stays in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case pgErr.Code == lockNotAvailable:
		return fmt.Errorf("%w: %w", ports.ErrLockTimeout, err)
	case strings.HasPrefix(pgErr.Code, integrityConstraintClass):
		return fmt.Errorf("%w: %w", ports.ErrIntegrityViolation, err)
	default:
		return err
	}
}
