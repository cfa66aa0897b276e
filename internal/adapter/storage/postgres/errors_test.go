package postgres

import (
	"errors"
	"fmt"
	"testing"

	"wallet-service/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		integrity bool
		lock      bool
	}{
		{"nil", nil, false, false},
		{"plain error", errors.New("conn reset"), false, false},
		{"unique violation", &pgconn.PgError{Code: "23505"}, true, false},
		{"check violation", &pgconn.PgError{Code: "23514"}, true, false},
		{"wrapped not null violation", fmt.Errorf("insert wallet: %w", &pgconn.PgError{Code: "23502"}), true, false},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, false, true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.integrity, errors.Is(got, ports.ErrIntegrityViolation))
			assert.Equal(t, tt.lock, errors.Is(got, ports.ErrLockTimeout))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_KeepsPgError(t *testing.T) {
	got := classify(&pgconn.PgError{Code: "23505", ConstraintName: "wallets_pkey"})

	var pgErr *pgconn.PgError
	if assert.True(t, errors.As(got, &pgErr)) {
		assert.Equal(t, "wallets_pkey", pgErr.ConstraintName)
	}
}
