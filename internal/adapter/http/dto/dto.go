package dto

import (
	"wallet-service/internal/core/domain"

	"github.com/shopspring/decimal"
)

// CreateWalletRequest is the request body for wallet creation.
// Amount accepts a JSON number or a numeric string.
type CreateWalletRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required,money"`
}

// OperationRequest is the request body for a balance operation.
// OperationType is resolved by domain.ParseOperationKind so unknown values
// produce an invalid-operation error rather than a binding error.
type OperationRequest struct {
	OperationType string           `json:"operation_type" binding:"required,max=32"`
	Amount        *decimal.Decimal `json:"amount" binding:"required,positive_money"`
}

// WalletResponse is the response body for wallet state.
type WalletResponse struct {
	WalletID string `json:"wallet_id"`
	Balance  string `json:"balance"`
}

// NewWalletResponse renders the balance with exactly two decimal places.
func NewWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID: w.ID,
		Balance:  w.Balance.StringFixed(domain.MoneyScale),
	}
}
