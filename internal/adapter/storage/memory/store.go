package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Store keeps wallets in process memory. It implements
// ports.WalletRepository, ports.DBTransactor and ports.HealthChecker.
//
// GetByIDForUpdate takes an exclusive per-wallet lock that is held until the
// transaction commits or rolls back. Balance writes are staged on the
// transaction and become visible on commit.
type Store struct {
	mu          sync.Mutex
	rows        map[string]*row
	lockTimeout time.Duration
	now         func() time.Time
}

type row struct {
	lock   chan struct{}
	wallet domain.Wallet
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout bounds how long GetByIDForUpdate waits for a row lock.
// Zero waits until the context ends.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		rows: make(map[string]*row),
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin starts a new transaction.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{
		store:   s,
		locked:  make(map[string]*row),
		pending: make(map[string]decimal.Decimal),
	}, nil
}

// Create inserts a wallet. A duplicate ID or a negative balance is reported
// as ports.ErrIntegrityViolation, like the table constraints would.
func (s *Store) Create(ctx context.Context, w *domain.Wallet) error {
	if w.Balance.IsNegative() {
		return fmt.Errorf("insert wallet: %w: negative balance", ports.ErrIntegrityViolation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rows[w.ID]; exists {
		return fmt.Errorf("insert wallet: %w: duplicate id %s", ports.ErrIntegrityViolation, w.ID)
	}

	now := s.now()
	w.CreatedAt = now
	w.UpdatedAt = now
	s.rows[w.ID] = &row{
		lock:   make(chan struct{}, 1),
		wallet: *w,
	}
	return nil
}

// GetByID returns the last committed state of a wallet.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	w := r.wallet
	return &w, nil
}

// GetByIDForUpdate locks the wallet row for the lifetime of tx.
func (s *Store) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Wallet, error) {
	mtx, err := s.own(tx)
	if err != nil {
		return nil, err
	}

	if !mtx.holds(id) {
		s.mu.Lock()
		r, ok := s.rows[id]
		s.mu.Unlock()
		if !ok {
			return nil, nil
		}

		if err := s.acquire(ctx, r, id); err != nil {
			return nil, fmt.Errorf("get wallet for update by id: %w", err)
		}
		if !mtx.track(id, r) {
			<-r.lock
			return nil, pgx.ErrTxClosed
		}
	}

	w, _ := s.GetByID(ctx, id)
	if w == nil {
		return nil, nil
	}
	if balance, ok := mtx.staged(id); ok {
		w.Balance = balance
	}
	return w, nil
}

// UpdateBalance stages a balance write on tx. The row must already be
// locked by tx.
func (s *Store) UpdateBalance(ctx context.Context, tx pgx.Tx, id string, balance decimal.Decimal) error {
	mtx, err := s.own(tx)
	if err != nil {
		return err
	}
	if balance.IsNegative() {
		return fmt.Errorf("update wallet balance: %w: negative balance", ports.ErrIntegrityViolation)
	}
	if err := mtx.stage(id, balance); err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	return nil
}

// Ping implements ports.HealthChecker.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Name() string {
	return "memory"
}

func (s *Store) own(tx pgx.Tx) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx.store != s {
		return nil, errors.New("transaction does not belong to this store")
	}
	return mtx, nil
}

func (s *Store) acquire(ctx context.Context, r *row, id string) error {
	var timeout <-chan time.Time
	if s.lockTimeout > 0 {
		timer := time.NewTimer(s.lockTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case r.lock <- struct{}{}:
		return nil
	case <-timeout:
		return fmt.Errorf("%w: wallet %s", ports.ErrLockTimeout, id)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// commit publishes staged balances. Caller still holds the row locks.
func (s *Store) commit(pending map[string]decimal.Decimal) {
	if len(pending) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, balance := range pending {
		r := s.rows[id]
		r.wallet.Balance = balance
		r.wallet.UpdatedAt = now
	}
}
