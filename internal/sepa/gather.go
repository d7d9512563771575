package sepa

import (
	"context"
	"errors"
	"fmt"

	"github.com/ledenadmin/ledenadmin/internal/fees"
	"github.com/ledenadmin/ledenadmin/internal/model"
)

// Repository is the subset of the fee and member stores Gather needs.
type Repository interface {
	ListFees(ctx context.Context, filter fees.FeeFilter) ([]model.Fee, error)
	GetMember(ctx context.Context, id string) (model.Member, error)
}

// Gather loads every open SEPA fee together with its member. Fees whose
// member no longer exists are returned as skipped.
func Gather(ctx context.Context, repo Repository) ([]Collection, []Skipped, error) {
	open, err := repo.ListFees(ctx, fees.FeeFilter{Status: model.FeeOpen})
	if err != nil {
		return nil, nil, fmt.Errorf("listing open fees: %w", err)
	}
	members := map[string]model.Member{}
	var out []Collection
	var skipped []Skipped
	for _, f := range open {
		if f.Method != model.MethodSEPA {
			continue
		}
		m, ok := members[f.MemberID]
		if !ok {
			m, err = repo.GetMember(ctx, f.MemberID)
			if errors.Is(err, fees.ErrNotFound) {
				skipped = append(skipped, Skipped{FeeID: f.ID, Reason: "member " + f.MemberID + " not found"})
				continue
			}
			if err != nil {
				return nil, nil, fmt.Errorf("loading member %s: %w", f.MemberID, err)
			}
			members[f.MemberID] = m
		}
		out = append(out, Collection{Fee: f, Member: m})
	}
	return out, skipped, nil
}
