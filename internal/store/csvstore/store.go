// Package csvstore keeps members and fees as CSV files in a workspace:
// members/members.csv and fees/fees.csv.
package csvstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ledenadmin/ledenadmin/internal/fees"
	"github.com/ledenadmin/ledenadmin/internal/model"
)

const (
	membersFile = "members/members.csv"
	feesFile    = "fees/fees.csv"
)

// Store reads and rewrites whole files on every call.
type Store struct {
	root string
	mu   sync.Mutex
}

var (
	_ fees.FeeRepository    = (*Store)(nil)
	_ fees.MemberRepository = (*Store)(nil)
)

// New returns a Store for the workspace at root.
func New(root string) *Store {
	return &Store{root: root}
}

// Init creates empty member and fee files if they do not exist.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for file, header := range map[string]string{membersFile: MemberHeader, feesFile: FeeHeader} {
		path := filepath.Join(s.root, file)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := s.writeFile(file, header, nil); err != nil {
			return err
		}
	}
	return nil
}

// SaveMember inserts or replaces a member.
func (s *Store) SaveMember(ctx context.Context, m model.Member) error {
	if m.ID == "" {
		return fmt.Errorf("member ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.readMembers()
	if err != nil {
		return err
	}
	replaced := false
	for i := range members {
		if members[i].ID == m.ID {
			members[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		members = append(members, m)
	}

	rows := make([][]string, len(members))
	for i, mm := range members {
		rows[i] = MarshalMember(mm)
	}
	return s.writeFile(membersFile, MemberHeader, rows)
}

// GetMember returns a member by ID.
func (s *Store) GetMember(ctx context.Context, id string) (model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.readMembers()
	if err != nil {
		return model.Member{}, err
	}
	for _, m := range members {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Member{}, fmt.Errorf("member %s: %w", id, fees.ErrNotFound)
}

// ListMembers returns all members ordered by ID.
func (s *Store) ListMembers(ctx context.Context) ([]model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.readMembers()
	if err != nil {
		return nil, err
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

// SaveFee inserts or replaces a fee.
func (s *Store) SaveFee(ctx context.Context, f model.Fee) error {
	if f.ID == "" {
		return fmt.Errorf("fee ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readFees()
	if err != nil {
		return err
	}
	replaced := false
	for i := range all {
		if all[i].ID == f.ID {
			all[i] = f
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	rows := make([][]string, len(all))
	for i, ff := range all {
		rows[i] = MarshalFee(ff)
	}
	return s.writeFile(feesFile, FeeHeader, rows)
}

// GetFee returns a fee by ID.
func (s *Store) GetFee(ctx context.Context, id string) (model.Fee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readFees()
	if err != nil {
		return model.Fee{}, err
	}
	for _, f := range all {
		if f.ID == id {
			return f, nil
		}
	}
	return model.Fee{}, fmt.Errorf("fee %s: %w", id, fees.ErrNotFound)
}

// ListFees returns the fees matching filter ordered by ID.
func (s *Store) ListFees(ctx context.Context, filter fees.FeeFilter) ([]model.Fee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readFees()
	if err != nil {
		return nil, err
	}
	var out []model.Fee
	for _, f := range all {
		if filter.MemberID != "" && f.MemberID != filter.MemberID {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) readMembers() ([]model.Member, error) {
	records, err := s.readFile(membersFile, memberFields)
	if err != nil {
		return nil, err
	}
	members := make([]model.Member, 0, len(records))
	for i, rec := range records {
		m, err := UnmarshalMember(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", membersFile, i+2, err)
		}
		members = append(members, m)
	}
	return members, nil
}

func (s *Store) readFees() ([]model.Fee, error) {
	records, err := s.readFile(feesFile, feeFields)
	if err != nil {
		return nil, err
	}
	all := make([]model.Fee, 0, len(records))
	for i, rec := range records {
		f, err := UnmarshalFee(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", feesFile, i+2, err)
		}
		all = append(all, f)
	}
	return all, nil
}

func (s *Store) readFile(file string, fields int) ([][]string, error) {
	f, err := os.Open(filepath.Join(s.root, file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	records, err := readRecords(f, fields)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	return records, nil
}

// writeFile replaces file through a temporary file and rename.
func (s *Store) writeFile(file, header string, rows [][]string) error {
	path := filepath.Join(s.root, file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s dir: %w", filepath.Dir(file), err)
	}

	var buf bytes.Buffer
	if err := writeRecords(&buf, header, rows); err != nil {
		return fmt.Errorf("encoding %s: %w", file, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", file, err)
	}
	return nil
}
