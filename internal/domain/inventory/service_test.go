package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementation ---

type mockRepo struct {
	quantities map[int64]int
	movements  []Movement
}

func newMockRepo(quantities map[int64]int) *mockRepo {
	return &mockRepo{quantities: quantities}
}

func (m *mockRepo) ApplyAdjustment(_ context.Context, productID int64, t ChangeType, qty int, reason, actor string) (*Movement, error) {
	current, ok := m.quantities[productID]
	if !ok {
		return nil, ErrProductNotFound
	}

	next := current
	switch t {
	case ChangeSet:
		next = qty
	case ChangeAdd:
		next = current + qty
	case ChangeSubtract:
		next = max(0, current-qty)
	}
	m.quantities[productID] = next

	mv := Movement{
		ProductID:        productID,
		PreviousQuantity: current,
		NewQuantity:      next,
		ChangeAmount:     next - current,
		ChangeType:       t,
		Reason:           reason,
		Actor:            actor,
	}
	m.movements = append(m.movements, mv)
	return &mv, nil
}

func (m *mockRepo) SetReorderPoints(_ context.Context, ids []int64, _ int) (int64, error) {
	return int64(len(ids)), nil
}

func (m *mockRepo) History(_ context.Context, _ HistoryFilter) ([]Movement, error) {
	return m.movements, nil
}

func (m *mockRepo) Stats(_ context.Context) (*Stats, error) { return &Stats{}, nil }
func (m *mockRepo) Alerts(_ context.Context) ([]Alert, error) {
	return nil, nil
}

// --- Tests ---

func TestAdjust_SubtractFloorsAtZero(t *testing.T) {
	repo := newMockRepo(map[int64]int{1: 5})
	svc := NewService(repo)

	res, err := svc.Adjust(context.Background(), AdjustRequest{
		ProductIDs: []int64{1},
		Type:       ChangeSubtract,
		Quantity:   10,
		Reason:     "stocktake",
		Actor:      "alex",
	})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)

	mv := res.Results[0]
	assert.Equal(t, 5, mv.PreviousQuantity)
	assert.Equal(t, 0, mv.NewQuantity)
	assert.Equal(t, -5, mv.ChangeAmount)
}

func TestAdjust_ChangeAmountEqualsDelta(t *testing.T) {
	repo := newMockRepo(map[int64]int{1: 3})
	svc := NewService(repo)

	res, err := svc.Adjust(context.Background(), AdjustRequest{
		ProductIDs: []int64{1},
		Type:       ChangeSet,
		Quantity:   20,
	})
	require.NoError(t, err)

	mv := res.Results[0]
	assert.Equal(t, mv.NewQuantity-mv.PreviousQuantity, mv.ChangeAmount)
	assert.Equal(t, 17, mv.ChangeAmount)
}

func TestAdjust_BestEffortBatch(t *testing.T) {
	repo := newMockRepo(map[int64]int{1: 10, 3: 4})
	svc := NewService(repo)

	res, err := svc.Adjust(context.Background(), AdjustRequest{
		ProductIDs: []int64{1, 2, 3},
		Type:       ChangeAdd,
		Quantity:   5,
	})
	require.NoError(t, err)

	// Product 2 is unknown; 1 and 3 must still be adjusted.
	require.Len(t, res.Results, 2)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, int64(2), res.Errors[0].ProductID)
	assert.ErrorIs(t, res.Errors[0].Err, ErrProductNotFound)
	assert.Equal(t, 15, repo.quantities[1])
	assert.Equal(t, 9, repo.quantities[3])
}

func TestAdjust_OneMovementPerProduct(t *testing.T) {
	repo := newMockRepo(map[int64]int{1: 10, 2: 10})
	svc := NewService(repo)

	_, err := svc.Adjust(context.Background(), AdjustRequest{
		ProductIDs: []int64{1, 2},
		Type:       ChangeSubtract,
		Quantity:   1,
	})
	require.NoError(t, err)
	assert.Len(t, repo.movements, 2)
}

func TestAdjust_Validation(t *testing.T) {
	svc := NewService(newMockRepo(nil))
	ctx := context.Background()

	_, err := svc.Adjust(ctx, AdjustRequest{ProductIDs: []int64{1}, Type: "bogus", Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidChangeType)

	_, err = svc.Adjust(ctx, AdjustRequest{ProductIDs: []int64{1}, Type: ChangeAdd, Quantity: -1})
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = svc.Adjust(ctx, AdjustRequest{Type: ChangeAdd, Quantity: 1})
	assert.ErrorIs(t, err, ErrEmptyBatch)

	ids := make([]int64, MaxBatchSize+1)
	_, err = svc.Adjust(ctx, AdjustRequest{ProductIDs: ids, Type: ChangeAdd, Quantity: 1})
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		reorder  int
		want     StockStatus
	}{
		{"above reorder point", 10, 3, StatusInStock},
		{"at reorder point", 3, 3, StatusLowStock},
		{"below reorder point", 2, 3, StatusLowStock},
		{"zero", 0, 3, StatusOutOfStock},
		{"zero with zero reorder", 0, 0, StatusOutOfStock},
		{"positive with zero reorder", 1, 0, StatusInStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.quantity, tt.reorder))
		})
	}
}
