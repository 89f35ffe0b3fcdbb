package stock

import (
	"testing"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStock(t *testing.T) *Stock {
	t.Helper()
	s, err := NewStock(uuid.New(), uuid.New())
	require.NoError(t, err)
	return s
}

func TestNewStock(t *testing.T) {
	tests := []struct {
		name      string
		branchID  uuid.UUID
		productID uuid.UUID
		wantErr   bool
		errCode   string
	}{
		{
			name:      "valid stock position",
			branchID:  uuid.New(),
			productID: uuid.New(),
			wantErr:   false,
		},
		{
			name:      "empty branch",
			branchID:  uuid.Nil,
			productID: uuid.New(),
			wantErr:   true,
			errCode:   "INVALID_BRANCH",
		},
		{
			name:      "empty product",
			branchID:  uuid.New(),
			productID: uuid.Nil,
			wantErr:   true,
			errCode:   "INVALID_PRODUCT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStock(tt.branchID, tt.productID)
			if tt.wantErr {
				require.Error(t, err)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.errCode, domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.branchID, s.BranchID)
			assert.Equal(t, tt.productID, s.ProductID)
			assert.Equal(t, int64(0), s.Quantity)
			assert.True(t, s.AvgUnitCost.IsZero())
		})
	}
}

func TestStock_IncreaseDecrease(t *testing.T) {
	s := newTestStock(t)

	require.NoError(t, s.Increase(100))
	assert.Equal(t, int64(100), s.Quantity)

	require.NoError(t, s.Decrease(30))
	assert.Equal(t, int64(70), s.Quantity)

	err := s.Decrease(71)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, int64(70), s.Quantity, "failed decrease must not change balance")

	err = s.Increase(0)
	require.Error(t, err)

	err = s.Decrease(-5)
	require.Error(t, err)
}

func TestStock_DecreaseEmitsLowStockEvent(t *testing.T) {
	s := newTestStock(t)
	require.NoError(t, s.SetReorderLevel(10))
	require.NoError(t, s.Increase(20))
	s.ClearDomainEvents()

	require.NoError(t, s.Decrease(5))
	assert.Empty(t, s.GetDomainEvents(), "above reorder level, no event")

	require.NoError(t, s.Decrease(5))
	events := s.GetDomainEvents()
	require.Len(t, events, 1)
	low, ok := events[0].(*StockBelowReorderLevelEvent)
	require.True(t, ok)
	assert.Equal(t, int64(10), low.Quantity)
	assert.Equal(t, int64(10), low.ReorderLevel)
}

func TestStock_ReceiveWeightedAverage(t *testing.T) {
	s := newTestStock(t)

	// 10 units at $5.00
	require.NoError(t, s.Receive(10, valueobject.NewMoneyUSD(decimal.NewFromFloat(5.00))))
	assert.Equal(t, int64(10), s.Quantity)
	assert.True(t, s.AvgUnitCost.Equal(decimal.NewFromFloat(5.00)), "got %s", s.AvgUnitCost)

	// 10 units at $7.00 -> average $6.00
	require.NoError(t, s.Receive(10, valueobject.NewMoneyUSD(decimal.NewFromFloat(7.00))))
	assert.Equal(t, int64(20), s.Quantity)
	assert.True(t, s.AvgUnitCost.Equal(decimal.NewFromFloat(6.00)), "got %s", s.AvgUnitCost)
}

func TestStock_ReceiveZeroQuantityResetsCostBasis(t *testing.T) {
	s := newTestStock(t)

	require.NoError(t, s.Receive(10, valueobject.NewMoneyUSD(decimal.NewFromFloat(5.00))))
	require.NoError(t, s.Decrease(10))
	require.Equal(t, int64(0), s.Quantity)

	// A receipt into an empty position takes the incoming price outright
	require.NoError(t, s.Receive(4, valueobject.NewMoneyUSD(decimal.NewFromFloat(9.50))))
	assert.True(t, s.AvgUnitCost.Equal(decimal.NewFromFloat(9.50)), "got %s", s.AvgUnitCost)
}

func TestStock_ReceiveRoundsAverage(t *testing.T) {
	s := newTestStock(t)

	require.NoError(t, s.Receive(3, valueobject.NewMoneyUSD(decimal.NewFromFloat(1.00))))
	require.NoError(t, s.Receive(3, valueobject.NewMoneyUSD(decimal.NewFromFloat(2.00))))
	// (3*1 + 3*2) / 6 = 1.5
	assert.True(t, s.AvgUnitCost.Equal(decimal.NewFromFloat(1.5)), "got %s", s.AvgUnitCost)

	require.NoError(t, s.Receive(1, valueobject.NewMoneyUSD(decimal.NewFromFloat(1.00))))
	// (6*1.5 + 1*1) / 7 = 1.428571... -> 1.4286 at 4 decimal places
	assert.True(t, s.AvgUnitCost.Equal(decimal.NewFromFloat(1.4286)), "got %s", s.AvgUnitCost)
}

func TestStock_ReceiveEmitsEvents(t *testing.T) {
	s := newTestStock(t)

	require.NoError(t, s.Receive(10, valueobject.NewMoneyUSD(decimal.NewFromFloat(5.00))))
	events := s.GetDomainEvents()
	require.Len(t, events, 2)

	received, ok := events[0].(*StockReceivedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(10), received.Quantity)
	assert.True(t, received.UnitCost.Equal(decimal.NewFromFloat(5.00)))

	costChanged, ok := events[1].(*StockCostChangedEvent)
	require.True(t, ok)
	assert.True(t, costChanged.OldCost.IsZero())
	assert.True(t, costChanged.NewCost.Equal(decimal.NewFromFloat(5.00)))

	s.ClearDomainEvents()

	// Receiving at the current average changes nothing, so no cost event
	require.NoError(t, s.Receive(5, valueobject.NewMoneyUSD(decimal.NewFromFloat(5.00))))
	events = s.GetDomainEvents()
	require.Len(t, events, 1)
	_, ok = events[0].(*StockReceivedEvent)
	assert.True(t, ok)
}

func TestStock_AdjustBy(t *testing.T) {
	s := newTestStock(t)
	require.NoError(t, s.Increase(50))
	s.ClearDomainEvents()

	require.NoError(t, s.AdjustBy(-8, "shrinkage after count"))
	assert.Equal(t, int64(42), s.Quantity)

	events := s.GetDomainEvents()
	require.NotEmpty(t, events)
	adjusted, ok := events[0].(*StockAdjustedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(50), adjusted.OldQuantity)
	assert.Equal(t, int64(42), adjusted.NewQuantity)
	assert.Equal(t, int64(-8), adjusted.Delta)
	assert.Equal(t, "shrinkage after count", adjusted.Reason)

	err := s.AdjustBy(-100, "bad count")
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, int64(42), s.Quantity)

	err = s.AdjustBy(0, "noop")
	require.Error(t, err)

	err = s.AdjustBy(-1, "")
	require.Error(t, err)
}

func TestStock_TotalValue(t *testing.T) {
	s := newTestStock(t)
	require.NoError(t, s.Receive(10, valueobject.NewMoneyUSD(decimal.NewFromFloat(2.50))))

	assert.True(t, s.TotalValue().Amount().Equal(decimal.NewFromFloat(25.00)))
}

func TestStock_CanFulfill(t *testing.T) {
	s := newTestStock(t)
	require.NoError(t, s.Increase(10))

	assert.True(t, s.CanFulfill(10))
	assert.False(t, s.CanFulfill(11))
}
