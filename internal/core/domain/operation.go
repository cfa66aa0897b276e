package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OperationKind selects the balance mutation rule.
type OperationKind string

const (
	OperationCredit OperationKind = "CREDIT"
	OperationDebit  OperationKind = "DEBIT"
)

// Wire names accepted alongside CREDIT and DEBIT.
const (
	aliasDeposit  = "DEPOSIT"
	aliasWithdraw = "WITHDRAW"
)

// DefaultMinOperationAmount is the smallest amount a strategy accepts.
var DefaultMinOperationAmount = decimal.New(100, -MoneyScale)

// ParseOperationKind maps a wire value to an OperationKind.
func ParseOperationKind(s string) (OperationKind, error) {
	switch s {
	case string(OperationCredit), aliasDeposit:
		return OperationCredit, nil
	case string(OperationDebit), aliasWithdraw:
		return OperationDebit, nil
	default:
		return "", ErrInvalidOperationKind
	}
}

func (k OperationKind) String() string {
	return string(k)
}

// OperationStrategy applies one kind of balance mutation.
// Implementations are stateless and safe for concurrent use.
type OperationStrategy interface {
	Kind() OperationKind
	Apply(w Wallet, amount decimal.Decimal) (Wallet, error)
}

type creditStrategy struct {
	minAmount decimal.Decimal
}

func (s creditStrategy) Kind() OperationKind { return OperationCredit }

func (s creditStrategy) Apply(w Wallet, amount decimal.Decimal) (Wallet, error) {
	if amount.LessThan(s.minAmount) {
		return w, belowMinimum(s.minAmount)
	}
	return w.Credit(amount)
}

type debitStrategy struct {
	minAmount decimal.Decimal
}

func (s debitStrategy) Kind() OperationKind { return OperationDebit }

func (s debitStrategy) Apply(w Wallet, amount decimal.Decimal) (Wallet, error) {
	if amount.LessThan(s.minAmount) {
		return w, belowMinimum(s.minAmount)
	}
	return w.Debit(amount)
}

func belowMinimum(minAmount decimal.Decimal) error {
	return fmt.Errorf("%w of %s", ErrBelowMinimumAmount, minAmount.StringFixed(MoneyScale))
}

// StrategySet resolves the strategy for each OperationKind.
type StrategySet struct {
	credit OperationStrategy
	debit  OperationStrategy
}

// NewStrategySet builds the credit and debit strategies with a shared minimum amount.
func NewStrategySet(minAmount decimal.Decimal) StrategySet {
	return StrategySet{
		credit: creditStrategy{minAmount: minAmount},
		debit:  debitStrategy{minAmount: minAmount},
	}
}

// For returns the strategy for kind, or ErrInvalidOperationKind.
func (s StrategySet) For(kind OperationKind) (OperationStrategy, error) {
	switch kind {
	case OperationCredit:
		return s.credit, nil
	case OperationDebit:
		return s.debit, nil
	default:
		return nil, ErrInvalidOperationKind
	}
}
