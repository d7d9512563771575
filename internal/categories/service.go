// Package categories holds the transaction categories of a workspace.
package categories

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledenadmin/ledenadmin/internal/model"
)

// Category labels transactions. An empty Type means the category applies
// to both income and expenses.
type Category struct {
	Name        string
	Type        model.TransactionType
	Description string
}

// Placeholder is the category given to imported rows without one.
const Placeholder = "Overige"

const fileName = "categories.csv"

// Service provides in-memory lookup over the categories.
type Service struct {
	categories []Category
	byName     map[string]Category
}

// NewService creates a Service from a slice of categories.
func NewService(cats []Category) *Service {
	byName := make(map[string]Category, len(cats))
	for _, c := range cats {
		byName[strings.ToLower(c.Name)] = c
	}
	return &Service{categories: cats, byName: byName}
}

// Load reads categories/categories.csv from a workspace root.
func Load(root string) (*Service, error) {
	path := filepath.Join(root, "categories", fileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening categories: %w", err)
	}
	defer f.Close()

	cats, err := ReadCategories(f)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	return NewService(cats), nil
}

// All returns all categories.
func (s *Service) All() []Category {
	return s.categories
}

// Get returns a category by name, case-insensitively.
func (s *Service) Get(name string) (Category, bool) {
	c, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Exists reports whether a category name exists.
func (s *Service) Exists(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Allows reports whether the named category may be used for type t.
func (s *Service) Allows(name string, t model.TransactionType) bool {
	c, ok := s.Get(name)
	return ok && (c.Type == "" || c.Type == t)
}

// ByType returns the categories usable for t.
func (s *Service) ByType(t model.TransactionType) []Category {
	var result []Category
	for _, c := range s.categories {
		if c.Type == "" || c.Type == t {
			result = append(result, c)
		}
	}
	return result
}

// Save writes the categories to categories/categories.csv.
func (s *Service) Save(root string) error {
	dir := filepath.Join(root, "categories")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating categories dir: %w", err)
	}

	path := filepath.Join(dir, fileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating categories file: %w", err)
	}
	defer f.Close()

	if err := WriteCategories(f, s.categories); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}
	return nil
}
