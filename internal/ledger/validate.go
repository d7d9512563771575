package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledenadmin/ledenadmin/internal/model"
	"github.com/ledenadmin/ledenadmin/internal/period"
)

// Validation rule names.
const (
	RuleDate     = "date"
	RuleMonth    = "month"
	RuleAmount   = "amount"
	RuleDecimals = "decimals"
	RuleType     = "type"
	RuleMethod   = "method"
	RuleCategory = "category"
	RuleUniqueID = "unique-id"
)

// ValidationError describes a single rule violation.
type ValidationError struct {
	Rule        string
	TxID        string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Rule, e.TxID, e.Description)
}

// CategoryChecker tests whether a category may be used for a transaction type.
type CategoryChecker interface {
	Allows(name string, t model.TransactionType) bool
}

var hundred = decimal.NewFromInt(100)

// ValidateMonth checks every transaction of one month file.
func ValidateMonth(txs []model.Transaction, categories CategoryChecker, year int, month int) []ValidationError {
	var errs []ValidationError
	add := func(rule, id, format string, args ...any) {
		errs = append(errs, ValidationError{Rule: rule, TxID: id, Description: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if tx.ID == "" || seen[tx.ID] {
			add(RuleUniqueID, tx.ID, "transaction ID missing or repeated")
		}
		seen[tx.ID] = true

		if tx.Date.IsZero() {
			add(RuleDate, tx.ID, "date is missing")
		} else if tx.Date.Year() != year || int(tx.Date.Month()) != month {
			add(RuleMonth, tx.ID, "date %s not in %04d-%02d", period.ToISO(tx.Date), year, month)
		}

		if !tx.Amount.IsPositive() {
			add(RuleAmount, tx.ID, "amount %s must be positive", tx.Amount.StringFixed(2))
		} else if !tx.Amount.Mul(hundred).Equal(tx.Amount.Mul(hundred).Floor()) {
			add(RuleDecimals, tx.ID, "amount %s has more than 2 decimal places", tx.Amount)
		}

		if _, err := model.ParseTransactionType(string(tx.Type)); err != nil {
			add(RuleType, tx.ID, "%v", err)
		}
		if tx.Method != "" {
			if _, err := model.ParsePaymentMethod(string(tx.Method)); err != nil {
				add(RuleMethod, tx.ID, "%v", err)
			}
		}
		if categories != nil && !categories.Allows(tx.Category, tx.Type) {
			add(RuleCategory, tx.ID, "category %q not allowed for %s", tx.Category, tx.Type)
		}
	}
	return errs
}
