package service

import (
	"context"
	"errors"
	"fmt"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService.
//
// Every mutation runs as one transaction: lock the wallet row, apply the
// operation strategy, write the new balance, commit. Any failure after Begin
// rolls the transaction back before the error is returned.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	transactor ports.DBTransactor
	strategies domain.StrategySet
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	strategies domain.StrategySet,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		transactor: transactor,
		strategies: strategies,
		log:        log,
	}
}

// CreateWallet inserts a wallet with the given opening balance.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, initialBalance decimal.Decimal) (*domain.Wallet, error) {
	w, err := domain.NewWallet(initialBalance)
	if err != nil {
		return nil, apperror.ValidationWrap(err.Error(), err)
	}

	if err := s.walletRepo.Create(ctx, &w); err != nil {
		return nil, s.storageError("create wallet", err)
	}

	s.log.Info().
		Str("wallet_id", w.ID).
		Str("balance", w.Balance.StringFixed(domain.MoneyScale)).
		Msg("wallet created")

	return &w, nil
}

// GetWallet reads a wallet through the locking read in a transaction of its
// own, so it waits for any in-flight mutation of the same wallet.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, s.storageError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	w, err := s.lockWallet(ctx, dbTx, id)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, s.storageError("commit tx", err)
	}
	return w, nil
}

// PerformOperation applies a credit or debit to a wallet and returns the
// committed state. Kind and amount are checked before any lock is taken.
//
// The transaction runs detached from ctx cancellation: once started it always
// ends in commit or rollback.
func (s *WalletServiceImpl) PerformOperation(
	ctx context.Context,
	id string,
	kind domain.OperationKind,
	amount decimal.Decimal,
) (*domain.Wallet, error) {
	strategy, err := s.strategies.For(kind)
	if err != nil {
		return nil, apperror.ErrInvalidOperationKind()
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, apperror.ValidationWrap(err.Error(), err)
	}

	ctx = context.WithoutCancel(ctx)

	if err := s.applyOperation(ctx, id, strategy, amount); err != nil {
		return nil, err
	}

	w, err := s.walletRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storageError("read wallet", err)
	}
	if w == nil {
		return nil, s.storageError("read wallet", fmt.Errorf("wallet %s missing after commit", id))
	}

	s.log.Info().
		Str("wallet_id", id).
		Str("operation", kind.String()).
		Str("amount", amount.StringFixed(domain.MoneyScale)).
		Str("balance", w.Balance.StringFixed(domain.MoneyScale)).
		Msg("wallet operation applied")

	return w, nil
}

func (s *WalletServiceImpl) applyOperation(
	ctx context.Context,
	id string,
	strategy domain.OperationStrategy,
	amount decimal.Decimal,
) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return s.storageError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	w, err := s.lockWallet(ctx, dbTx, id)
	if err != nil {
		return err
	}

	updated, err := strategy.Apply(*w, amount)
	if err != nil {
		s.log.Debug().
			Err(err).
			Str("wallet_id", id).
			Str("operation", strategy.Kind().String()).
			Str("amount", amount.StringFixed(domain.MoneyScale)).
			Msg("wallet operation rejected")
		return operationError(err)
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, id, updated.Balance); err != nil {
		return s.storageError("update balance", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return s.storageError("commit tx", err)
	}
	return nil
}

func (s *WalletServiceImpl) lockWallet(ctx context.Context, dbTx pgx.Tx, id string) (*domain.Wallet, error) {
	w, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, s.storageError("lock wallet", err)
	}
	if w == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return w, nil
}

// operationError maps strategy rejections to client errors.
func operationError(err error) *apperror.AppError {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return apperror.ErrInsufficientFunds()
	case errors.Is(err, domain.ErrInvalidOperationKind):
		return apperror.ErrInvalidOperationKind()
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrBelowMinimumAmount),
		errors.Is(err, domain.ErrAmountOutOfRange):
		return apperror.ValidationWrap(err.Error(), err)
	default:
		return apperror.InternalError(err)
	}
}

// storageError maps persistence failures to server errors and logs the cause.
func (s *WalletServiceImpl) storageError(op string, err error) *apperror.AppError {
	wrapped := fmt.Errorf("%s: %w", op, err)

	var appErr *apperror.AppError
	switch {
	case errors.Is(err, ports.ErrLockTimeout):
		appErr = apperror.ErrLockTimeout(wrapped)
	case errors.Is(err, ports.ErrIntegrityViolation):
		appErr = apperror.ErrDataIntegrity(wrapped)
	default:
		appErr = apperror.InternalError(wrapped)
	}

	s.log.Error().Err(wrapped).Str("error_code", appErr.Code).Msg("wallet storage failure")
	return appErr
}
