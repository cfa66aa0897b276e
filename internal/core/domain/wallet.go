package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balances and amounts are NUMERIC(12,2): two fractional digits, ten integer digits.
const MoneyScale int32 = 2

// MaxMoney is the largest representable balance or amount.
var MaxMoney = decimal.New(999999999999, -MoneyScale)

var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero with at most 2 decimal places")
	ErrInvalidBalance       = errors.New("balance must not be negative and have at most 2 decimal places")
	ErrAmountOutOfRange     = errors.New("amount exceeds the maximum balance of 9999999999.99")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrBelowMinimumAmount   = errors.New("amount is below the minimum operation amount")
	ErrInvalidOperationKind = errors.New("invalid operation kind")
)

// Wallet is a monetary balance identified by an opaque ID.
// Credit and Debit never modify the receiver; they return the replacement value.
type Wallet struct {
	ID        string          `json:"wallet_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewWallet builds an unsaved wallet with a fresh ID.
func NewWallet(initialBalance decimal.Decimal) (Wallet, error) {
	if err := ValidateBalance(initialBalance); err != nil {
		return Wallet{}, err
	}
	return Wallet{
		ID:      uuid.NewString(),
		Balance: initialBalance.Round(MoneyScale),
	}, nil
}

// Credit returns w with amount added to its balance.
func (w Wallet) Credit(amount decimal.Decimal) (Wallet, error) {
	if err := ValidateAmount(amount); err != nil {
		return w, err
	}
	next := w.Balance.Add(amount)
	if next.GreaterThan(MaxMoney) {
		return w, ErrAmountOutOfRange
	}
	w.Balance = next
	return w, nil
}

// Debit returns w with amount subtracted from its balance.
func (w Wallet) Debit(amount decimal.Decimal) (Wallet, error) {
	if err := ValidateAmount(amount); err != nil {
		return w, err
	}
	if amount.GreaterThan(w.Balance) {
		return w, ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(amount)
	return w, nil
}

// ValidateAmount checks an operation amount: strictly positive, two decimal
// places at most, within MaxMoney.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !hasMoneyScale(amount) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(MaxMoney) {
		return ErrAmountOutOfRange
	}
	return nil
}

// ValidateBalance is ValidateAmount that also admits zero.
func ValidateBalance(balance decimal.Decimal) error {
	if balance.IsNegative() || !hasMoneyScale(balance) {
		return ErrInvalidBalance
	}
	if balance.GreaterThan(MaxMoney) {
		return ErrAmountOutOfRange
	}
	return nil
}

func hasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}
