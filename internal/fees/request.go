package fees

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledenadmin/ledenadmin/internal/model"
	"github.com/ledenadmin/ledenadmin/internal/money"
	"github.com/ledenadmin/ledenadmin/internal/period"
)

// CreateFeeRequest asks for a new fee. End is derived from Start and Term
// unless set.
type CreateFeeRequest struct {
	MemberID string
	Amount   decimal.Decimal
	Term     period.Term
	Start    time.Time
	End      time.Time // optional override
	Method   model.PaymentMethod
	Notes    string
	// Force creates the fee even when it overlaps an existing one.
	Force bool
}

// Validate checks the fields that need no repository lookup.
func (r CreateFeeRequest) Validate() error {
	verr := &ValidationError{}
	if r.MemberID == "" {
		verr.add("member", "is required")
	}
	validateAmount(verr, r.Amount)
	if !r.Term.Valid() {
		verr.add("term", "must be %s or %s", period.Monthly, period.Yearly)
	}
	if r.Start.IsZero() {
		verr.add("start", "is required")
	}
	if !r.End.IsZero() && !r.Start.IsZero() && period.DateOnly(r.End).Before(period.DateOnly(r.Start)) {
		verr.add("end", "must not be before start")
	}
	validateMethod(verr, r.Method)
	return verr.orNil()
}

// coverage returns the covered range, deriving the end when not overridden.
func (r CreateFeeRequest) coverage() period.Period {
	p := period.New(r.Start, r.Term)
	if !r.End.IsZero() {
		p.End = period.DateOnly(r.End)
	}
	return p
}

// UpdateFeeRequest changes an existing fee. Nil fields are left unchanged.
// Changing Start or Term derives a new end date unless End is also set.
type UpdateFeeRequest struct {
	ID     string
	Amount *decimal.Decimal
	Term   *period.Term
	Start  *time.Time
	End    *time.Time
	Method *model.PaymentMethod
	Notes  *string
	Force  bool
}

// Validate checks the fields that are set.
func (r UpdateFeeRequest) Validate() error {
	verr := &ValidationError{}
	if r.ID == "" {
		verr.add("id", "is required")
	}
	if r.Amount != nil {
		validateAmount(verr, *r.Amount)
	}
	if r.Term != nil && !r.Term.Valid() {
		verr.add("term", "must be %s or %s", period.Monthly, period.Yearly)
	}
	if r.Start != nil && r.Start.IsZero() {
		verr.add("start", "must be a valid date")
	}
	if r.End != nil && r.End.IsZero() {
		verr.add("end", "must be a valid date")
	}
	if r.Method != nil {
		validateMethod(verr, *r.Method)
	}
	return verr.orNil()
}

// apply returns fee with the request's changes.
func (r UpdateFeeRequest) apply(fee model.Fee) model.Fee {
	if r.Amount != nil {
		fee.Amount = *r.Amount
	}
	if r.Method != nil {
		fee.Method = *r.Method
	}
	if r.Notes != nil {
		fee.Notes = *r.Notes
	}
	rederive := false
	if r.Term != nil {
		fee.Term = *r.Term
		rederive = true
	}
	if r.Start != nil {
		fee.Start = period.DateOnly(*r.Start)
		rederive = true
	}
	if rederive {
		fee.End = period.CalculateEndDate(fee.Start, fee.Term)
	}
	if r.End != nil {
		fee.End = period.DateOnly(*r.End)
	}
	return fee
}

func validateAmount(verr *ValidationError, amount decimal.Decimal) {
	switch {
	case !amount.IsPositive():
		verr.add("amount", "must be greater than %s", money.FormatCurrencyBE(decimal.Zero))
	case !amount.Equal(amount.Truncate(2)):
		verr.add("amount", "must have at most 2 decimals")
	}
}

func validateMethod(verr *ValidationError, m model.PaymentMethod) {
	if _, err := model.ParsePaymentMethod(string(m)); err != nil {
		verr.add("method", "%v", err)
	}
}

// validateSEPA checks that member can be collected by direct debit.
func validateSEPA(verr *ValidationError, member model.Member) {
	if !money.ValidIBAN(member.IBAN) {
		verr.add("method", "SEPA needs a valid IBAN for member %s", member.ID)
	}
	if !member.HasMandate() {
		verr.add("method", "SEPA needs a signed mandate for member %s", member.ID)
	}
}
