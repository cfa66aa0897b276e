package ports

import (
	"context"

	"wallet-service/internal/core/domain"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

// WalletService is the wallet mutation engine. Errors are *apperror.AppError.
type WalletService interface {
	CreateWallet(ctx context.Context, initialBalance decimal.Decimal) (*domain.Wallet, error)
	GetWallet(ctx context.Context, id string) (*domain.Wallet, error)
	PerformOperation(ctx context.Context, id string, kind domain.OperationKind, amount decimal.Decimal) (*domain.Wallet, error)
}
