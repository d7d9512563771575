package importer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// ErrMappingIncomplete is returned when a required field has no column.
var ErrMappingIncomplete = errors.New("mapping incomplete")

// Mapping names the source column for each transaction field. Empty means unmapped.
type Mapping struct {
	Date         string `yaml:"date"`
	Amount       string `yaml:"amount"`
	DebitCredit  string `yaml:"debit_credit"`
	Description  string `yaml:"description"`
	Category     string `yaml:"category"`
	Counterparty string `yaml:"counterparty"`
	Reference    string `yaml:"reference"`
}

// Validate checks that date and amount are mapped and that every mapped
// column exists in headers.
func (m Mapping) Validate(headers []string) error {
	var missing []string
	if m.Date == "" {
		missing = append(missing, "date")
	}
	if m.Amount == "" {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s not mapped", ErrMappingIncomplete, strings.Join(missing, ", "))
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}
	for _, f := range m.fields() {
		if *f.column != "" && !known[*f.column] {
			return fmt.Errorf("%s mapped to unknown column %q", f.name, *f.column)
		}
	}
	return nil
}

type mappingField struct {
	name    string
	column  *string
	aliases []string
}

// fields lists mapping targets in suggestion priority order.
func (m *Mapping) fields() []mappingField {
	return []mappingField{
		{"date", &m.Date, []string{"datum", "date", "boekingsdatum", "uitvoeringsdatum", "transactiedatum", "bookingdate", "dateopération"}},
		{"amount", &m.Amount, []string{"bedrag", "amount", "montant", "betrag", "som"}},
		{"debit_credit", &m.DebitCredit, []string{"debetcredit", "debitcredit", "afbij", "dc", "creditdebet", "sens"}},
		{"description", &m.Description, []string{"omschrijving", "description", "mededeling", "communicatie", "details", "libelle", "communication"}},
		{"counterparty", &m.Counterparty, []string{"tegenpartij", "naamtegenpartij", "counterparty", "naam", "name", "contrepartie"}},
		{"category", &m.Category, []string{"categorie", "category", "rubriek"}},
		{"reference", &m.Reference, []string{"referentie", "reference", "ref", "bankreferentie"}},
	}
}

// minSimilarity is the lowest header/alias similarity a suggestion accepts.
const minSimilarity = 0.8

// SuggestMapping proposes a column for each field by comparing normalized
// headers to known aliases. Each header is used at most once.
func SuggestMapping(headers []string) Mapping {
	var m Mapping
	used := make(map[string]bool, len(headers))
	for _, f := range m.fields() {
		best, bestScore := "", 0.0
		for _, h := range headers {
			if used[h] {
				continue
			}
			key := normalizeHeader(h)
			for _, alias := range f.aliases {
				if s := similarity(key, alias); s > bestScore {
					best, bestScore = h, s
				}
			}
		}
		if bestScore >= minSimilarity {
			*f.column = best
			used[best] = true
		}
	}
	return m
}

func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
