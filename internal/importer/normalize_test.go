package importer

import (
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledenadmin/ledenadmin/internal/model"
	"github.com/ledenadmin/ledenadmin/internal/period"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		status DateStatus
	}{
		{"01/03/2025", "2025-03-01", DateOK},
		{"1-3-2025", "2025-03-01", DateOK},
		{"01.03.25", "2025-03-01", DateOK},
		{"2025-03-01", "2025-03-01", DateOK},
		{"2025/3/1", "2025-03-01", DateOK},
		{"2025-03-01T10:15:00Z", "2025-03-01", DateOK},
		{"20250301", "2025-03-01", DateOK},
		{"01032025", "2025-03-01", DateOK},
		{" 29/02/2024 ", "2024-02-29", DateOK},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, status := NormalizeDate(tt.in)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.want, period.ToISO(got))
		})
	}
}

func TestNormalizeDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "garbage", "31/02/2025", "29/02/2025", "2025-13-01", "99999999", "1/3"} {
		t.Run(in, func(t *testing.T) {
			got, status := NormalizeDate(in)
			assert.Equal(t, DateInvalid, status)
			assert.True(t, got.IsZero())
		})
	}
}

func TestNormalizeDate_Ambiguous(t *testing.T) {
	// Both readings are real dates and neither falls in 1900-2099.
	got, status := NormalizeDate("01010101")
	assert.Equal(t, DateAmbiguous, status)
	assert.Equal(t, 101, got.Year())
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in       string
		want     string
		negative bool
	}{
		{"25.50", "25.50", false},
		{"25,50", "25.50", false},
		{"-25,50", "25.50", true},
		{"25,50-", "25.50", true},
		{"(12,00)", "12.00", true},
		{"1.234,56", "1234.56", false},
		{"1,234.56", "1234.56", false},
		{"1.234", "1234.00", false},
		{"12.5", "12.50", false},
		{"0.500", "0.50", false},
		{"1.234.567", "1234567.00", false},
		{"1,234,567", "1234567.00", false},
		{"€ 1 234,50", "1234.50", false},
		{"EUR -7", "7.00", true},
		{"1,235", "1.235", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, negative, ok := NormalizeAmount(tt.in)
			require.True(t, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
			assert.Equal(t, tt.negative, negative)
			assert.False(t, got.IsNegative())
		})
	}

	for _, in := range []string{"", "abc", "-", ",", "1.2.3,4,5"} {
		t.Run("invalid "+in, func(t *testing.T) {
			got, _, ok := NormalizeAmount(in)
			assert.False(t, ok)
			assert.True(t, got.IsZero())
		})
	}
}

func TestParseDebitFlag(t *testing.T) {
	for _, in := range []string{"D", "debet", "Debit", "AF", "-", "DR"} {
		debit, known := ParseDebitFlag(in)
		assert.True(t, known, in)
		assert.True(t, debit, in)
	}
	for _, in := range []string{"C", "credit", "Bij", "+", "CR"} {
		debit, known := ParseDebitFlag(in)
		assert.True(t, known, in)
		assert.False(t, debit, in)
	}
	_, known := ParseDebitFlag("?")
	assert.False(t, known)
	_, known = ParseDebitFlag("")
	assert.False(t, known)
}

// fixedCategories maps a category name to its type; "" allows both.
type fixedCategories map[string]model.TransactionType

func (f fixedCategories) Allows(name string, t model.TransactionType) bool {
	typ, ok := f[name]
	return ok && (typ == "" || typ == t)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "tx-" + strconv.Itoa(n)
	}
}

func TestNormalize_NegativeAmountBecomesExpense(t *testing.T) {
	rows := []Row{{"datum": "01032025", "bedrag": "-25,50", "omschrijving": "Terugbetaling"}}
	m := Mapping{Date: "datum", Amount: "bedrag", Description: "omschrijving"}

	res := Normalize(rows, m, NormalizeOptions{Method: model.MethodTransfer, NewID: sequentialIDs()})
	require.Len(t, res, 1)

	r := res[0]
	assert.Equal(t, RowOK, r.Status)
	assert.Empty(t, r.Reasons)
	assert.Equal(t, "tx-1", r.Tx.ID)
	assert.Equal(t, "25.5", r.Tx.Amount.String())
	assert.Equal(t, model.Expense, r.Tx.Type)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local), r.Tx.Date)
	assert.Equal(t, "Terugbetaling", r.Tx.Description)
	assert.Equal(t, "Overige", r.Tx.Category)
	assert.Equal(t, model.MethodTransfer, r.Tx.Method)
}

func TestNormalize_DebitFlagWinsOverSign(t *testing.T) {
	rows := []Row{
		{"d": "01/03/2025", "a": "25,00", "dc": "D"},
		{"d": "01/03/2025", "a": "-25,00", "dc": "C"},
		{"d": "01/03/2025", "a": "-25,00", "dc": "?"},
	}
	m := Mapping{Date: "d", Amount: "a", DebitCredit: "dc"}

	res := Normalize(rows, m, NormalizeOptions{})
	require.Len(t, res, 3)
	assert.Equal(t, model.Expense, res[0].Tx.Type)
	assert.Equal(t, model.Income, res[1].Tx.Type)
	assert.Equal(t, model.Expense, res[2].Tx.Type)
	assert.Equal(t, RowDefaulted, res[2].Status)
}

func TestNormalize_FlagsProblemRows(t *testing.T) {
	rows := []Row{
		{"d": "01/03/2025", "a": "10", "c": "Lidgeld"},
		{"d": "01/03/2025", "a": "10", "c": "Onbekend"},
		{"d": "01/03/2025", "a": "tien", "c": ""},
		{"d": "", "a": "10", "c": "Lidgeld"},
		{"d": "01010101", "a": "10", "c": "Lidgeld"},
	}
	m := Mapping{Date: "d", Amount: "a", Category: "c"}
	opts := NormalizeOptions{
		DefaultCategory: "Diversen",
		Categories:      fixedCategories{"Lidgeld": model.Income, "Diversen": ""},
		Source:          "maart.csv",
	}

	res := Normalize(rows, m, opts)
	require.Len(t, res, 5)

	assert.Equal(t, RowOK, res[0].Status)
	assert.Equal(t, "Lidgeld", res[0].Tx.Category)
	assert.Equal(t, "maart.csv", res[0].Tx.Source)
	assert.NotEmpty(t, res[0].Tx.ID)

	assert.Equal(t, RowDefaulted, res[1].Status)
	assert.Equal(t, "Diversen", res[1].Tx.Category)
	assert.Contains(t, res[1].Reasons[0], "Onbekend")

	assert.Equal(t, RowDefaulted, res[2].Status)
	assert.True(t, res[2].Tx.Amount.IsZero())
	assert.False(t, res[2].Committable())

	assert.Equal(t, RowRejected, res[3].Status)
	assert.False(t, res[3].Committable())

	assert.Equal(t, RowDefaulted, res[4].Status)
	assert.True(t, res[4].Committable())

	for i, r := range res {
		assert.Equal(t, i+1, r.Line)
	}
}

func TestNormalize_RejectedStaysRejected(t *testing.T) {
	rows := []Row{{"d": "nope", "a": "x"}}
	res := Normalize(rows, Mapping{Date: "d", Amount: "a"}, NormalizeOptions{})
	require.Len(t, res, 1)
	assert.Equal(t, RowRejected, res[0].Status)
	assert.Len(t, res[0].Reasons, 2)
}

func TestNormalize_CategoryMustFitType(t *testing.T) {
	rows := []Row{
		{"d": "01/03/2025", "a": "25,50", "c": "Huur"},
		{"d": "02/03/2025", "a": "-40,00", "c": "Lidgeld"},
		{"d": "03/03/2025", "a": "-40,00", "c": "Huur"},
		{"d": "04/03/2025", "a": "12,00", "c": "Overige"},
	}
	m := Mapping{Date: "d", Amount: "a", Category: "c"}
	cats := fixedCategories{"Lidgeld": model.Income, "Huur": model.Expense, "Overige": ""}

	res := Normalize(rows, m, NormalizeOptions{Categories: cats})
	require.Len(t, res, 4)

	assert.Equal(t, RowDefaulted, res[0].Status)
	assert.Equal(t, "Overige", res[0].Tx.Category)
	assert.Equal(t, model.Income, res[0].Tx.Type)
	require.Len(t, res[0].Reasons, 1)
	assert.Contains(t, res[0].Reasons[0], `"Huur" not allowed for INCOME`)
	assert.True(t, res[0].Committable())

	assert.Equal(t, RowDefaulted, res[1].Status)
	assert.Equal(t, "Overige", res[1].Tx.Category)

	assert.Equal(t, RowOK, res[2].Status)
	assert.Equal(t, "Huur", res[2].Tx.Category)
	assert.Equal(t, RowOK, res[3].Status)

	for _, r := range res {
		assert.True(t, cats.Allows(r.Tx.Category, r.Tx.Type))
	}
}

func TestNormalizeOptions_Validate(t *testing.T) {
	cats := fixedCategories{"Lidgeld": model.Income, "Huur": model.Expense, "Overige": ""}

	assert.NoError(t, NormalizeOptions{}.Validate())
	assert.NoError(t, NormalizeOptions{Categories: cats}.Validate())
	assert.NoError(t, NormalizeOptions{Categories: cats, DefaultCategory: "Overige"}.Validate())
	assert.ErrorContains(t, NormalizeOptions{Categories: cats, DefaultCategory: "Lidgeld"}.Validate(),
		`default category "Lidgeld" cannot be used for EXPENSE`)
	assert.ErrorContains(t, NormalizeOptions{Categories: cats, DefaultCategory: "Huur"}.Validate(),
		"cannot be used for INCOME")
	assert.Error(t, NormalizeOptions{Categories: cats, DefaultCategory: "Bestaat niet"}.Validate())

	_, err := NewSession(nil, NormalizeOptions{Categories: cats, DefaultCategory: "Lidgeld"})
	assert.ErrorContains(t, err, "default category")
}

func TestNormalize_FlagsRoundedAmounts(t *testing.T) {
	rows := []Row{
		{"d": "01/03/2025", "a": "1,235"},
		{"d": "01/03/2025", "a": "-10,004"},
		{"d": "01/03/2025", "a": "1.235"},
		{"d": "01/03/2025", "a": "0,001"},
		{"d": "01/03/2025", "a": "7,50"},
	}
	m := Mapping{Date: "d", Amount: "a"}

	res := Normalize(rows, m, NormalizeOptions{})
	require.Len(t, res, 5)

	assert.Equal(t, RowDefaulted, res[0].Status)
	assert.Equal(t, "1.24", res[0].Tx.Amount.StringFixed(2))
	assert.True(t, res[0].Tx.Amount.Equal(res[0].Tx.Amount.Round(2)))
	require.Len(t, res[0].Reasons, 1)
	assert.Equal(t, `amount "1,235" rounded to 1.24`, res[0].Reasons[0])
	assert.True(t, res[0].Committable())

	assert.Equal(t, RowDefaulted, res[1].Status)
	assert.Equal(t, "10.00", res[1].Tx.Amount.StringFixed(2))
	assert.Equal(t, model.Expense, res[1].Tx.Type)

	assert.Equal(t, RowOK, res[2].Status, "a dot before three digits groups thousands")
	assert.Equal(t, "1235.00", res[2].Tx.Amount.StringFixed(2))

	assert.Equal(t, RowDefaulted, res[3].Status)
	assert.False(t, res[3].Committable())

	assert.Equal(t, RowOK, res[4].Status)
	assert.Empty(t, res[4].Reasons)
}
