package fees

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ledenadmin/ledenadmin/internal/model"
	"github.com/ledenadmin/ledenadmin/internal/money"
	"github.com/ledenadmin/ledenadmin/internal/period"
)

// AddMemberRequest registers a member.
type AddMemberRequest struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	IBAN          string
	MandateID     string
	MandateSigned time.Time
	JoinedOn      time.Time
}

// Validate checks the request fields.
func (r AddMemberRequest) Validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(r.FirstName) == "" && strings.TrimSpace(r.LastName) == "" {
		verr.add("name", "is required")
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			verr.add("email", "%q is not a valid address", r.Email)
		}
	}
	if r.IBAN != "" && !money.ValidIBAN(r.IBAN) {
		verr.add("iban", "%q is not a valid IBAN", r.IBAN)
	}
	if r.MandateID != "" && r.MandateSigned.IsZero() {
		verr.add("mandate", "signature date is required")
	}
	return verr.orNil()
}

// AddMember stores a new active member with the next free ID ("M001", "M002", ...).
func (s *Service) AddMember(ctx context.Context, req AddMemberRequest) (model.Member, error) {
	if err := req.Validate(); err != nil {
		return model.Member{}, err
	}
	existing, err := s.members.ListMembers(ctx)
	if err != nil {
		return model.Member{}, fmt.Errorf("listing members: %w", err)
	}
	maxSeq := 0
	for _, m := range existing {
		if n, err := strconv.Atoi(strings.TrimPrefix(m.ID, "M")); err == nil {
			maxSeq = max(maxSeq, n)
		}
	}

	joined := req.JoinedOn
	if joined.IsZero() {
		joined = s.now()
	}
	member := model.Member{
		ID:        fmt.Sprintf("M%03d", maxSeq+1),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		IBAN:      money.NormalizeIBAN(req.IBAN),
		MandateID: strings.TrimSpace(req.MandateID),
		JoinedOn:  period.DateOnly(joined),
		Active:    true,
	}
	if !req.MandateSigned.IsZero() {
		member.MandateSigned = period.DateOnly(req.MandateSigned)
	}
	if err := s.members.SaveMember(ctx, member); err != nil {
		return model.Member{}, fmt.Errorf("saving member: %w", err)
	}
	return member, nil
}

// Members returns all members ordered by last name, then first name.
func (s *Service) Members(ctx context.Context) ([]model.Member, error) {
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if !strings.EqualFold(a.LastName, b.LastName) {
			return strings.ToLower(a.LastName) < strings.ToLower(b.LastName)
		}
		return strings.ToLower(a.FirstName) < strings.ToLower(b.FirstName)
	})
	return members, nil
}

// Member returns one member.
func (s *Service) Member(ctx context.Context, memberID string) (model.Member, error) {
	m, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		return model.Member{}, fmt.Errorf("loading member %s: %w", memberID, err)
	}
	return m, nil
}
