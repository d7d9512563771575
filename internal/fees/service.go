package fees

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ledenadmin/ledenadmin/internal/id"
	"github.com/ledenadmin/ledenadmin/internal/logging"
	"github.com/ledenadmin/ledenadmin/internal/model"
	"github.com/ledenadmin/ledenadmin/internal/overlap"
	"github.com/ledenadmin/ledenadmin/internal/period"
)

// Service provides business logic for members and their fees.
type Service struct {
	fees    FeeRepository
	members MemberRepository
	now     func() time.Time
}

// NewService creates a fee Service.
func NewService(fees FeeRepository, members MemberRepository) *Service {
	return &Service{fees: fees, members: members, now: time.Now}
}

// Draft is a fee that has been computed but not stored.
type Draft struct {
	Fee       model.Fee
	Conflicts []model.Fee
}

// Draft validates req, derives the period and reports overlapping fees
// of the same member without storing anything.
func (s *Service) Draft(ctx context.Context, req CreateFeeRequest) (Draft, error) {
	if err := req.Validate(); err != nil {
		return Draft{}, err
	}
	member, err := s.members.GetMember(ctx, req.MemberID)
	if err != nil {
		return Draft{}, fmt.Errorf("loading member %s: %w", req.MemberID, err)
	}
	if req.Method == model.MethodSEPA {
		verr := &ValidationError{}
		validateSEPA(verr, member)
		if err := verr.orNil(); err != nil {
			return Draft{}, err
		}
	}

	p := req.coverage()
	fee := model.Fee{
		MemberID: member.ID,
		Amount:   req.Amount,
		Term:     req.Term,
		Start:    p.Start,
		End:      p.End,
		Method:   req.Method,
		Status:   model.FeeOpen,
		Notes:    req.Notes,
	}

	conflicts, err := s.conflicts(ctx, fee)
	if err != nil {
		return Draft{}, err
	}
	return Draft{Fee: fee, Conflicts: conflicts}, nil
}

// Create stores a new fee. An overlapping period fails with an
// *OverlapError unless req.Force is set.
func (s *Service) Create(ctx context.Context, req CreateFeeRequest) (model.Fee, error) {
	log := logging.FromContext(ctx)

	draft, err := s.Draft(ctx, req)
	if err != nil {
		return model.Fee{}, err
	}
	if len(draft.Conflicts) > 0 {
		if !req.Force {
			return model.Fee{}, &OverlapError{Conflicts: draft.Conflicts}
		}
		log.Warn().
			Str("member", req.MemberID).
			Int("conflicts", len(draft.Conflicts)).
			Msg("creating overlapping fee")
	}

	fee := draft.Fee
	fee.ID, err = s.nextID(ctx, fee.Start)
	if err != nil {
		return model.Fee{}, err
	}
	if fee.Reference, err = id.FeeReference(fee.ID); err != nil {
		return model.Fee{}, err
	}
	if err := s.fees.SaveFee(ctx, fee); err != nil {
		return model.Fee{}, fmt.Errorf("saving fee: %w", err)
	}

	log.Info().
		Str("fee", fee.ID).
		Str("member", fee.MemberID).
		Stringer("period", fee.Period()).
		Str("amount", fee.Amount.StringFixed(2)).
		Msg("fee created")
	return fee, nil
}

// Update changes an open fee. Paid and cancelled fees are read-only.
func (s *Service) Update(ctx context.Context, req UpdateFeeRequest) (model.Fee, error) {
	if err := req.Validate(); err != nil {
		return model.Fee{}, err
	}
	current, err := s.fees.GetFee(ctx, req.ID)
	if err != nil {
		return model.Fee{}, fmt.Errorf("loading fee %s: %w", req.ID, err)
	}
	if current.Status != model.FeeOpen {
		return model.Fee{}, fmt.Errorf("%w: fee %s is %s", ErrInvalidState, current.ID, current.Status)
	}

	fee := req.apply(current)
	if fee.End.Before(fee.Start) {
		return model.Fee{}, &ValidationError{Fields: []FieldError{{Field: "end", Message: "must not be before start"}}}
	}
	if fee.Method == model.MethodSEPA {
		member, err := s.members.GetMember(ctx, fee.MemberID)
		if err != nil {
			return model.Fee{}, fmt.Errorf("loading member %s: %w", fee.MemberID, err)
		}
		verr := &ValidationError{}
		validateSEPA(verr, member)
		if err := verr.orNil(); err != nil {
			return model.Fee{}, err
		}
	}

	conflicts, err := s.conflicts(ctx, fee)
	if err != nil {
		return model.Fee{}, err
	}
	if len(conflicts) > 0 && !req.Force {
		return model.Fee{}, &OverlapError{Conflicts: conflicts}
	}

	if err := s.fees.SaveFee(ctx, fee); err != nil {
		return model.Fee{}, fmt.Errorf("saving fee: %w", err)
	}
	log := logging.FromContext(ctx)
	log.Info().Str("fee", fee.ID).Stringer("period", fee.Period()).Msg("fee updated")
	return fee, nil
}

// MarkPaid settles an open fee on paidOn.
func (s *Service) MarkPaid(ctx context.Context, feeID string, paidOn time.Time) (model.Fee, error) {
	fee, err := s.fees.GetFee(ctx, feeID)
	if err != nil {
		return model.Fee{}, fmt.Errorf("loading fee %s: %w", feeID, err)
	}
	if fee.Status != model.FeeOpen {
		return model.Fee{}, fmt.Errorf("%w: fee %s is %s", ErrInvalidState, fee.ID, fee.Status)
	}
	if paidOn.IsZero() {
		paidOn = s.now()
	}
	fee.Status = model.FeePaid
	fee.PaidOn = period.DateOnly(paidOn)
	if err := s.fees.SaveFee(ctx, fee); err != nil {
		return model.Fee{}, fmt.Errorf("saving fee: %w", err)
	}
	log := logging.FromContext(ctx)
	log.Info().Str("fee", fee.ID).Str("paid_on", period.ToISO(fee.PaidOn)).Msg("fee paid")
	return fee, nil
}

// Cancel marks an open fee as cancelled. Cancelled fees no longer count as coverage.
func (s *Service) Cancel(ctx context.Context, feeID string) (model.Fee, error) {
	fee, err := s.fees.GetFee(ctx, feeID)
	if err != nil {
		return model.Fee{}, fmt.Errorf("loading fee %s: %w", feeID, err)
	}
	if fee.Status != model.FeeOpen {
		return model.Fee{}, fmt.Errorf("%w: fee %s is %s", ErrInvalidState, fee.ID, fee.Status)
	}
	fee.Status = model.FeeCancelled
	if err := s.fees.SaveFee(ctx, fee); err != nil {
		return model.Fee{}, fmt.Errorf("saving fee: %w", err)
	}
	log := logging.FromContext(ctx)
	log.Info().Str("fee", fee.ID).Msg("fee cancelled")
	return fee, nil
}

// ListByMember returns a member's fees ordered by start date.
func (s *Service) ListByMember(ctx context.Context, memberID string) ([]model.Fee, error) {
	fees, err := s.fees.ListFees(ctx, FeeFilter{MemberID: memberID})
	if err != nil {
		return nil, fmt.Errorf("listing fees: %w", err)
	}
	sortFees(fees)
	return fees, nil
}

// Check returns the billable fees of memberID that overlap start..end.
func (s *Service) Check(ctx context.Context, memberID string, start, end time.Time) ([]model.Fee, error) {
	return s.conflicts(ctx, model.Fee{MemberID: memberID, Start: start, End: end})
}

func (s *Service) conflicts(ctx context.Context, candidate model.Fee) ([]model.Fee, error) {
	existing, err := s.fees.ListFees(ctx, FeeFilter{MemberID: candidate.MemberID})
	if err != nil {
		return nil, fmt.Errorf("listing fees: %w", err)
	}
	var billable []model.Fee
	for _, f := range existing {
		if f.Billable() && f.ID != candidate.ID {
			billable = append(billable, f)
		}
	}
	conflicts := overlap.Conflicts(candidate, billable)
	sortFees(conflicts)
	return conflicts, nil
}

// nextID returns the next free fee ID in start's month.
func (s *Service) nextID(ctx context.Context, start time.Time) (string, error) {
	all, err := s.fees.ListFees(ctx, FeeFilter{})
	if err != nil {
		return "", fmt.Errorf("listing fees: %w", err)
	}
	prefix := fmt.Sprintf("%04d-%02d-", start.Year(), int(start.Month()))
	maxSeq := 0
	for _, f := range all {
		if !strings.HasPrefix(f.ID, prefix) {
			continue
		}
		_, _, seq, err := id.ParseFeeID(f.ID)
		if err != nil {
			continue
		}
		maxSeq = max(maxSeq, seq)
	}
	return id.FormatFeeID(start.Year(), int(start.Month()), maxSeq+1), nil
}

func sortFees(fees []model.Fee) {
	sort.SliceStable(fees, func(i, j int) bool {
		if !fees[i].Start.Equal(fees[j].Start) {
			return fees[i].Start.Before(fees[j].Start)
		}
		return fees[i].ID < fees[j].ID
	})
}
