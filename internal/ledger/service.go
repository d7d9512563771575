// Package ledger stores the association's transactions in one CSV file per
// month under <root>/YYYY/MM/transactions.csv.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledenadmin/ledenadmin/internal/logging"
	"github.com/ledenadmin/ledenadmin/internal/model"
	"github.com/ledenadmin/ledenadmin/internal/period"
)

const fileName = "transactions.csv"

// Service provides business logic for the transaction ledger.
type Service struct {
	root       string
	categories CategoryChecker
}

// NewService creates a ledger Service. categories may be nil to accept any category.
func NewService(root string, categories CategoryChecker) *Service {
	return &Service{root: root, categories: categories}
}

// AppendOptions controls Append.
type AppendOptions struct {
	// SkipDuplicates drops transactions that match one already in the
	// ledger on date, type, amount and reference or description.
	SkipDuplicates bool
}

// AppendResult reports what Append wrote.
type AppendResult struct {
	Appended   int
	Duplicates int
}

// Append validates txs together with the months they fall in and appends
// them. Nothing is written when any month fails validation.
func (s *Service) Append(ctx context.Context, txs []model.Transaction, opts AppendOptions) (AppendResult, error) {
	log := logging.FromContext(ctx)
	var res AppendResult

	type monthKey struct{ year, month int }
	byMonth := make(map[monthKey][]model.Transaction)
	var order []monthKey
	for _, tx := range txs {
		k := monthKey{tx.Date.Year(), int(tx.Date.Month())}
		if _, ok := byMonth[k]; !ok {
			order = append(order, k)
		}
		byMonth[k] = append(byMonth[k], tx)
	}

	pending := make(map[monthKey][]model.Transaction, len(order))
	var verrs []ValidationError
	for _, k := range order {
		existing, err := s.ReadMonth(k.year, k.month)
		if err != nil {
			return AppendResult{}, err
		}

		fresh := byMonth[k]
		if opts.SkipDuplicates {
			seen := make(map[string]bool, len(existing))
			for _, tx := range existing {
				seen[duplicateKey(tx)] = true
			}
			fresh = fresh[:0:0]
			for _, tx := range byMonth[k] {
				key := duplicateKey(tx)
				if seen[key] {
					res.Duplicates++
					continue
				}
				seen[key] = true
				fresh = append(fresh, tx)
			}
		}

		all := append(append([]model.Transaction(nil), existing...), fresh...)
		verrs = append(verrs, ValidateMonth(all, s.categories, k.year, k.month)...)
		pending[k] = fresh
	}

	if len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return AppendResult{}, fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	for _, k := range order {
		if len(pending[k]) == 0 {
			continue
		}
		if err := s.appendMonth(k.year, k.month, pending[k]); err != nil {
			return res, err
		}
		res.Appended += len(pending[k])
	}

	log.Info().
		Int("appended", res.Appended).
		Int("duplicates", res.Duplicates).
		Msg("ledger transactions appended")
	return res, nil
}

func (s *Service) appendMonth(year, month int, txs []model.Transaction) error {
	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendTransactions(f, txs); err != nil {
		return fmt.Errorf("appending transactions: %w", err)
	}
	return nil
}

func duplicateKey(tx model.Transaction) string {
	ref := tx.Reference
	if ref == "" {
		ref = strings.ToLower(strings.TrimSpace(tx.Description))
	}
	return period.ToISO(tx.Date) + "|" + string(tx.Type) + "|" + tx.Amount.StringFixed(2) + "|" + ref
}

// ReadMonth reads all transactions for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.Transaction, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	txs, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return txs, nil
}

// Months lists the months that have a ledger file, oldest first, as "YYYY-MM".
func (s *Service) Months() ([]string, error) {
	years, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading ledger root: %w", err)
	}

	var months []string
	for _, y := range years {
		if !y.IsDir() || len(y.Name()) != 4 {
			continue
		}
		if _, err := strconv.Atoi(y.Name()); err != nil {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(s.root, y.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", y.Name(), err)
		}
		for _, m := range entries {
			if !m.IsDir() || len(m.Name()) != 2 {
				continue
			}
			if _, err := os.Stat(filepath.Join(s.root, y.Name(), m.Name(), fileName)); err == nil {
				months = append(months, y.Name()+"-"+m.Name())
			}
		}
	}
	sort.Strings(months)
	return months, nil
}

// Totals summarizes one month.
type Totals struct {
	Income     decimal.Decimal
	Expense    decimal.Decimal
	ByCategory map[string]decimal.Decimal // signed, expenses negative
}

// Balance returns income minus expense.
func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// MonthTotals adds up income and expense for a month.
func (s *Service) MonthTotals(year, month int) (Totals, error) {
	txs, err := s.ReadMonth(year, month)
	if err != nil {
		return Totals{}, err
	}
	t := Totals{ByCategory: make(map[string]decimal.Decimal)}
	for _, tx := range txs {
		if tx.Type == model.Expense {
			t.Expense = t.Expense.Add(tx.Amount)
		} else {
			t.Income = t.Income.Add(tx.Amount)
		}
		t.ByCategory[tx.Category] = t.ByCategory[tx.Category].Add(tx.Signed())
	}
	return t, nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.root, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), fileName)
}
