package ports

import (
	"context"

	"wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside the caller's transaction; the row lock
// taken by GetByIDForUpdate is held until that transaction ends.
// Lookups return (nil, nil) when the wallet does not exist.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id string, balance decimal.Decimal) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
