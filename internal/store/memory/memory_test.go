package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledenadmin/ledenadmin/internal/fees"
	"github.com/ledenadmin/ledenadmin/internal/model"
)

func TestStore_Members(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.SaveMember(ctx, model.Member{ID: "M002", FirstName: "Sara"}))
	require.NoError(t, s.SaveMember(ctx, model.Member{ID: "M001", FirstName: "Jan"}))
	assert.Error(t, s.SaveMember(ctx, model.Member{}))

	m, err := s.GetMember(ctx, "M001")
	require.NoError(t, err)
	assert.Equal(t, "Jan", m.FirstName)

	_, err = s.GetMember(ctx, "M999")
	assert.ErrorIs(t, err, fees.ErrNotFound)

	all, err := s.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "M001", all[0].ID)
}

func TestStore_FeesFilterAndCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for _, f := range []model.Fee{
		{ID: "2025-01-001", MemberID: "M001", Status: model.FeePaid, Amount: decimal.NewFromInt(10)},
		{ID: "2025-02-001", MemberID: "M001", Status: model.FeeOpen},
		{ID: "2025-01-002", MemberID: "M002", Status: model.FeeOpen},
	} {
		require.NoError(t, s.SaveFee(ctx, f))
	}

	got, err := s.ListFees(ctx, fees.FeeFilter{MemberID: "M001"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ListFees(ctx, fees.FeeFilter{Status: model.FeeOpen})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-01-002", got[0].ID)

	// Changing a returned value does not change the store.
	got[0].Status = model.FeeCancelled
	f, err := s.GetFee(ctx, "2025-01-002")
	require.NoError(t, err)
	assert.Equal(t, model.FeeOpen, f.Status)

	_, err = s.GetFee(ctx, "nope")
	assert.ErrorIs(t, err, fees.ErrNotFound)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.SaveFee(ctx, model.Fee{ID: "F" + string(rune('A'+i%26)) + string(rune('a'+i/26)), MemberID: "M001"})
		}(i)
	}
	wg.Wait()

	got, err := s.ListFees(ctx, fees.FeeFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 50)
}
