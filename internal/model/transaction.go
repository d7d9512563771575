package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of money relative to the association.
type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// PaymentMethod is how money was paid.
type PaymentMethod string

const (
	MethodSEPA       PaymentMethod = "SEPA"
	MethodTransfer   PaymentMethod = "OVERSCHRIJVING"
	MethodBancontact PaymentMethod = "BANCONTACT"
	MethodCash       PaymentMethod = "CASH"
)

// ParsePaymentMethod accepts a method name case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case MethodSEPA, MethodTransfer, MethodBancontact, MethodCash:
		return m, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", s)
	}
}

// ParseTransactionType accepts a type name case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	switch tt := TransactionType(strings.ToUpper(strings.TrimSpace(s))); tt {
	case Income, Expense:
		return tt, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction is a canonical financial transaction, whatever file it came from.
type Transaction struct {
	ID           string
	Date         time.Time
	Type         TransactionType
	Category     string
	Amount       decimal.Decimal // always >= 0, direction is in Type
	Method       PaymentMethod
	Description  string
	Counterparty string
	Reference    string
	Source       string // import file name, empty for manual entries
}

// Signed returns the amount with expenses negative.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}
