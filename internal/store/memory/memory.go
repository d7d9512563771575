// Package memory is an in-memory implementation of the fee and member
// repositories. It is safe for concurrent use and keeps nothing across
// restarts.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ledenadmin/ledenadmin/internal/fees"
	"github.com/ledenadmin/ledenadmin/internal/model"
)

// Store holds members and fees in maps.
type Store struct {
	mu      sync.RWMutex
	members map[string]model.Member
	fees    map[string]model.Fee
}

var (
	_ fees.FeeRepository    = (*Store)(nil)
	_ fees.MemberRepository = (*Store)(nil)
)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		members: make(map[string]model.Member),
		fees:    make(map[string]model.Fee),
	}
}

// SaveMember inserts or replaces a member.
func (s *Store) SaveMember(ctx context.Context, m model.Member) error {
	if m.ID == "" {
		return fmt.Errorf("member ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = m
	return nil
}

// GetMember returns a member by ID.
func (s *Store) GetMember(ctx context.Context, id string) (model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return model.Member{}, fmt.Errorf("member %s: %w", id, fees.ErrNotFound)
	}
	return m, nil
}

// ListMembers returns all members ordered by ID.
func (s *Store) ListMembers(ctx context.Context) ([]model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveFee inserts or replaces a fee.
func (s *Store) SaveFee(ctx context.Context, f model.Fee) error {
	if f.ID == "" {
		return fmt.Errorf("fee ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fees[f.ID] = f
	return nil
}

// GetFee returns a fee by ID.
func (s *Store) GetFee(ctx context.Context, id string) (model.Fee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fees[id]
	if !ok {
		return model.Fee{}, fmt.Errorf("fee %s: %w", id, fees.ErrNotFound)
	}
	return f, nil
}

// ListFees returns the fees matching filter ordered by ID.
func (s *Store) ListFees(ctx context.Context, filter fees.FeeFilter) ([]model.Fee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Fee
	for _, f := range s.fees {
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
