package fees

import (
	"context"
	"fmt"
	"time"

	"github.com/ledenadmin/ledenadmin/internal/model"
)

// CellStatus is the payment state of one member in one month.
type CellStatus string

const (
	// CellNone means no billable fee covers the month.
	CellNone CellStatus = "-"
	CellOpen CellStatus = "OPEN"
	CellPaid CellStatus = "PAID"
)

// MatrixRow holds one member's twelve months, January first.
type MatrixRow struct {
	Member model.Member
	Months [12]CellStatus
}

// Matrix is the payment-status overview of all active members for a year.
type Matrix struct {
	Year int
	Rows []MatrixRow
}

// Paid counts the paid cells of month.
func (m Matrix) Paid(month time.Month) int {
	n := 0
	for _, r := range m.Rows {
		if r.Months[month-1] == CellPaid {
			n++
		}
	}
	return n
}

// Matrix builds the payment-status matrix for year. A month is PAID when a
// paid fee covers any day of it, OPEN when only open fees do.
func (s *Service) Matrix(ctx context.Context, year int) (Matrix, error) {
	members, err := s.Members(ctx)
	if err != nil {
		return Matrix{}, err
	}
	all, err := s.fees.ListFees(ctx, FeeFilter{})
	if err != nil {
		return Matrix{}, fmt.Errorf("listing fees: %w", err)
	}
	byMember := make(map[string][]model.Fee)
	for _, f := range all {
		if f.Billable() {
			byMember[f.MemberID] = append(byMember[f.MemberID], f)
		}
	}

	mx := Matrix{Year: year}
	for _, member := range members {
		if !member.Active {
			continue
		}
		row := MatrixRow{Member: member}
		for i := range row.Months {
			row.Months[i] = CellNone
			month := time.Month(i + 1)
			for _, f := range byMember[member.ID] {
				if !f.Period().CoversMonth(year, month) {
					continue
				}
				if f.Status == model.FeePaid {
					row.Months[i] = CellPaid
					break
				}
				row.Months[i] = CellOpen
			}
		}
		mx.Rows = append(mx.Rows, row)
	}
	return mx, nil
}
