package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var errUnsupported = errors.New("memory store: SQL is not supported")

// Tx is a Store transaction. Only Commit and Rollback are meaningful; the
// SQL methods of pgx.Tx return errUnsupported.
type Tx struct {
	store *Store

	mu      sync.Mutex
	locked  map[string]*row
	pending map[string]decimal.Decimal
	closed  bool
}

func (t *Tx) holds(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.locked[id]
	return ok
}

// track records a freshly acquired lock. It reports false if the transaction
// ended while the lock was being acquired.
func (t *Tx) track(id string, r *row) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.locked[id] = r
	return true
}

func (t *Tx) staged(id string) (decimal.Decimal, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.pending[id]
	return b, ok
}

func (t *Tx) stage(id string, balance decimal.Decimal) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return pgx.ErrTxClosed
	}
	if _, ok := t.locked[id]; !ok {
		return fmt.Errorf("wallet not found: %s", id)
	}
	t.pending[id] = balance
	return nil
}

// finish closes the transaction and releases its locks, publishing staged
// writes first when commit is true.
func (t *Tx) finish(commit bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true

	if commit {
		t.store.commit(t.pending)
	}
	for id, r := range t.locked {
		<-r.lock
		delete(t.locked, id)
	}
	t.pending = nil
	return nil
}

func (t *Tx) Commit(ctx context.Context) error   { return t.finish(true) }
func (t *Tx) Rollback(ctx context.Context) error { return t.finish(false) }

func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, errUnsupported }

func (t *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errUnsupported
}

func (t *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *Tx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }

func (t *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errUnsupported
}

func (t *Tx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errUnsupported
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errUnsupported
}

func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{}
}

func (t *Tx) Conn() *pgx.Conn { return nil }

type errRow struct{}

func (errRow) Scan(dest ...any) error { return errUnsupported }
