package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledenadmin/ledenadmin/internal/model"
	"github.com/ledenadmin/ledenadmin/internal/period"
)

// DateStatus says how confidently a date string was read.
type DateStatus int

const (
	DateOK DateStatus = iota
	// DateAmbiguous means more than one reading was possible and one was guessed.
	DateAmbiguous
	// DateInvalid means no reading was possible.
	DateInvalid
)

var (
	dmyRe = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2}|\d{4})$`)
	ymdRe = regexp.MustCompile(`^(\d{4})[/.\-](\d{1,2})[/.\-](\d{1,2})$`)
	d8Re  = regexp.MustCompile(`^\d{8}$`)
)

// NormalizeDate reads DD/MM/YYYY (also with - or . and two-digit years),
// YYYY-MM-DD, and the eight-digit forms YYYYMMDD and DDMMYYYY.
//
// An eight-digit string is read both ways. When exactly one reading is a
// real date in 1900-2099 it is used. Otherwise a string starting with "20"
// is read as YYYYMMDD and anything else as DDMMYYYY, and the result is
// reported as DateAmbiguous.
func NormalizeDate(raw string) (time.Time, DateStatus) {
	s := strings.TrimSpace(raw)
	if len(s) > 10 && s[10] == 'T' {
		s = s[:10]
	}

	if m := dmyRe.FindStringSubmatch(s); m != nil {
		year := atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		if t, ok := calendarDate(year, atoi(m[2]), atoi(m[1])); ok {
			return t, DateOK
		}
		return time.Time{}, DateInvalid
	}
	if m := ymdRe.FindStringSubmatch(s); m != nil {
		if t, ok := calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			return t, DateOK
		}
		return time.Time{}, DateInvalid
	}
	if !d8Re.MatchString(s) {
		return time.Time{}, DateInvalid
	}

	ymd, ymdOK := calendarDate(atoi(s[0:4]), atoi(s[4:6]), atoi(s[6:8]))
	dmy, dmyOK := calendarDate(atoi(s[4:8]), atoi(s[2:4]), atoi(s[0:2]))
	ymdPlausible := ymdOK && plausibleYear(ymd.Year())
	dmyPlausible := dmyOK && plausibleYear(dmy.Year())

	switch {
	case ymdPlausible && !dmyPlausible:
		return ymd, DateOK
	case dmyPlausible && !ymdPlausible:
		return dmy, DateOK
	case !ymdOK && !dmyOK:
		return time.Time{}, DateInvalid
	}

	if strings.HasPrefix(s, "20") && ymdOK {
		return ymd, DateAmbiguous
	}
	if dmyOK {
		return dmy, DateAmbiguous
	}
	return ymd, DateAmbiguous
}

func plausibleYear(y int) bool {
	return y >= 1900 && y <= 2099
}

func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

var thousandsDotRe = regexp.MustCompile(`^[1-9]\d{0,2}\.\d{3}$`)

// NormalizeAmount reads an amount written with Belgian or English
// separators and returns its absolute value, whether it
// carried a minus sign, and whether it could be read at all. A minus sign
// may lead or trail; parentheses also mark a negative amount.
//
// When both separators appear, the last one is the decimal separator.
// A lone comma is a decimal separator. A lone dot is a decimal separator
// unless it is followed by exactly three digits ("1.234"), in which case it
// groups thousands.
func NormalizeAmount(raw string) (amount decimal.Decimal, negative bool, ok bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			b.WriteRune(r)
		case r == '-':
			negative = true
		}
	}
	num := b.String()
	if num == "" {
		return decimal.Zero, negative, false
	}

	lastComma := strings.LastIndex(num, ",")
	lastDot := strings.LastIndex(num, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			num = strings.ReplaceAll(num, ".", "")
			num = strings.Replace(num, ",", ".", 1)
		} else {
			num = strings.ReplaceAll(num, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(num, ",") > 1 {
			num = strings.ReplaceAll(num, ",", "")
		} else {
			num = strings.Replace(num, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(num, ".") > 1 || thousandsDotRe.MatchString(num) {
			num = strings.ReplaceAll(num, ".", "")
		}
	}

	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, negative, false
	}
	return d.Abs(), negative, true
}

// ParseDebitFlag reads a debit/credit indicator column.
// known is false for empty or unrecognised values.
func ParseDebitFlag(raw string) (debit bool, known bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "D", "DEBET", "DEBIT", "DT", "DR", "AF", "-":
		return true, true
	case "C", "CREDIT", "CT", "CR", "BIJ", "+":
		return false, true
	default:
		return false, false
	}
}

// RowStatus classifies a normalized row.
type RowStatus string

const (
	// RowOK means every value was read as written.
	RowOK RowStatus = "OK"
	// RowDefaulted means at least one value was guessed or replaced by a default.
	RowDefaulted RowStatus = "DEFAULTED"
	// RowRejected means the row has no usable date and cannot be committed.
	RowRejected RowStatus = "REJECTED"
)

// RowResult is the normalization outcome of one imported row.
type RowResult struct {
	Line    int // 1-based data row number
	Tx      model.Transaction
	Status  RowStatus
	Reasons []string
}

// Committable reports whether the row can be handed to the ledger.
func (r RowResult) Committable() bool {
	return r.Status != RowRejected && r.Tx.Amount.IsPositive()
}

// CategoryChecker tests whether a category exists and may be used for a
// transaction type.
type CategoryChecker interface {
	Allows(name string, t model.TransactionType) bool
}

// NormalizeOptions configures Normalize.
type NormalizeOptions struct {
	Method          model.PaymentMethod
	DefaultCategory string
	Categories      CategoryChecker // optional
	Source          string
	NewID           func() string // defaults to uuid.NewString
}

func (o NormalizeOptions) defaultCategory() string {
	if o.DefaultCategory == "" {
		return "Overige"
	}
	return o.DefaultCategory
}

// Validate checks that the default category can stand in for rows of
// either type.
func (o NormalizeOptions) Validate() error {
	if o.Categories == nil {
		return nil
	}
	name := o.defaultCategory()
	for _, t := range []model.TransactionType{model.Income, model.Expense} {
		if !o.Categories.Allows(name, t) {
			return fmt.Errorf("default category %q cannot be used for %s", name, t)
		}
	}
	return nil
}

// Normalize converts mapped rows into transactions. Rows are never dropped:
// values that cannot be read are defaulted and the row is flagged so a
// preview can highlight it.
func Normalize(rows []Row, m Mapping, opts NormalizeOptions) []RowResult {
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	defaultCategory := opts.defaultCategory()

	results := make([]RowResult, 0, len(rows))
	for i, row := range rows {
		res := RowResult{Line: i + 1, Status: RowOK}
		flag := func(status RowStatus, format string, args ...any) {
			res.Reasons = append(res.Reasons, fmt.Sprintf(format, args...))
			if status == RowRejected || res.Status == RowOK {
				res.Status = status
			}
		}

		rawDate := row[m.Date]
		date, ds := NormalizeDate(rawDate)
		switch ds {
		case DateAmbiguous:
			flag(RowDefaulted, "date %q is ambiguous, read as %s", rawDate, period.ToISO(date))
		case DateInvalid:
			flag(RowRejected, "date %q not recognised", rawDate)
		}

		rawAmount := row[m.Amount]
		amount, negative, ok := NormalizeAmount(rawAmount)
		if !ok {
			flag(RowDefaulted, "amount %q not recognised, using 0", rawAmount)
		} else if rounded := amount.Round(2); !rounded.Equal(amount) {
			flag(RowDefaulted, "amount %q rounded to %s", rawAmount, rounded.StringFixed(2))
			amount = rounded
		}

		debit := negative
		if m.DebitCredit != "" {
			if d, known := ParseDebitFlag(row[m.DebitCredit]); known {
				debit = d
			} else if strings.TrimSpace(row[m.DebitCredit]) != "" {
				flag(RowDefaulted, "debit/credit flag %q not recognised, using amount sign", row[m.DebitCredit])
			}
		}
		typ := model.Income
		if debit {
			typ = model.Expense
		}

		category := ""
		if m.Category != "" {
			category = strings.TrimSpace(row[m.Category])
		}
		if category == "" {
			category = defaultCategory
		} else if opts.Categories != nil && !opts.Categories.Allows(category, typ) {
			flag(RowDefaulted, "category %q not allowed for %s, using %s", category, typ, defaultCategory)
			category = defaultCategory
		}

		res.Tx = model.Transaction{
			ID:           newID(),
			Date:         date,
			Type:         typ,
			Category:     category,
			Amount:       amount,
			Method:       opts.Method,
			Description:  column(row, m.Description),
			Counterparty: column(row, m.Counterparty),
			Reference:    column(row, m.Reference),
			Source:       opts.Source,
		}
		results = append(results, res)
	}
	return results
}

func column(row Row, name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimSpace(row[name])
}
