package order

import (
	"testing"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("ORD-2026-00001", uuid.New(), "Acme Distribution Ltd")
	require.NoError(t, err)
	return o
}

func price(v float64) valueobject.Money {
	return valueobject.NewMoneyUSD(decimal.NewFromFloat(v))
}

func TestNewOrder(t *testing.T) {
	o := newDraftOrder(t)
	assert.Equal(t, OrderStatusDraft, o.Status)
	assert.Empty(t, o.Lines)
	assert.Nil(t, o.PlacedAt)

	_, err := NewOrder("", uuid.New(), "Acme")
	require.Error(t, err)

	_, err = NewOrder("ORD-2026-00002", uuid.Nil, "Acme")
	require.Error(t, err)

	_, err = NewOrder("ORD-2026-00003", uuid.New(), "  ")
	require.Error(t, err)
}

func TestOrder_AddLine(t *testing.T) {
	o := newDraftOrder(t)
	productID := uuid.New()

	require.NoError(t, o.AddLine(productID, "SKU-001", "Maize Flour 2kg", 100, price(10.00)))
	require.Len(t, o.Lines, 1)
	assert.Equal(t, int64(100), o.Lines[0].QuantityOrdered)

	err := o.AddLine(productID, "SKU-001", "Maize Flour 2kg", 5, price(10.00))
	require.Error(t, err, "same product twice is rejected")
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_LINE", domainErr.Code)

	err = o.AddLine(uuid.New(), "SKU-002", "Rice 5kg", 0, price(20.00))
	require.Error(t, err)

	err = o.AddLine(uuid.New(), "SKU-003", "Sugar 1kg", -2, price(3.00))
	require.Error(t, err)
}

func TestOrder_PlaceFreezesLines(t *testing.T) {
	o := newDraftOrder(t)
	require.NoError(t, o.AddLine(uuid.New(), "SKU-001", "Maize Flour 2kg", 100, price(10.00)))

	require.NoError(t, o.Place())
	assert.Equal(t, OrderStatusPlaced, o.Status)
	require.NotNil(t, o.PlacedAt)

	err := o.AddLine(uuid.New(), "SKU-002", "Rice 5kg", 10, price(20.00))
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	err = o.RemoveLine(o.Lines[0].ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	err = o.Place()
	assert.ErrorIs(t, err, shared.ErrInvalidState, "cannot place twice")
}

func TestOrder_PlaceEmptyOrder(t *testing.T) {
	o := newDraftOrder(t)

	err := o.Place()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EMPTY_ORDER", domainErr.Code)
}

func TestOrder_PlaceEmitsEvent(t *testing.T) {
	o := newDraftOrder(t)
	require.NoError(t, o.AddLine(uuid.New(), "SKU-001", "Maize Flour 2kg", 100, price(10.00)))
	require.NoError(t, o.AddLine(uuid.New(), "SKU-002", "Rice 5kg", 50, price(20.00)))

	require.NoError(t, o.Place())

	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	placed, ok := events[0].(*OrderPlacedEvent)
	require.True(t, ok)
	assert.Equal(t, "ORD-2026-00001", placed.OrderNumber)
	assert.Equal(t, 2, placed.LineCount)
	assert.True(t, placed.TotalAmount.Equal(decimal.NewFromFloat(2000.00)))
}

func TestOrder_RemoveLine(t *testing.T) {
	o := newDraftOrder(t)
	require.NoError(t, o.AddLine(uuid.New(), "SKU-001", "Maize Flour 2kg", 100, price(10.00)))
	require.NoError(t, o.AddLine(uuid.New(), "SKU-002", "Rice 5kg", 50, price(20.00)))

	require.NoError(t, o.RemoveLine(o.Lines[0].ID))
	require.Len(t, o.Lines, 1)
	assert.Equal(t, "SKU-002", o.Lines[0].ProductSKU)

	err := o.RemoveLine(uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrder_Cancel(t *testing.T) {
	o := newDraftOrder(t)
	require.NoError(t, o.AddLine(uuid.New(), "SKU-001", "Maize Flour 2kg", 10, price(10.00)))
	require.NoError(t, o.Place())
	o.ClearDomainEvents()

	require.NoError(t, o.Cancel("customer withdrew"))
	assert.Equal(t, OrderStatusCancelled, o.Status)

	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	cancelled, ok := events[0].(*OrderCancelledEvent)
	require.True(t, ok)
	assert.Equal(t, "customer withdrew", cancelled.Reason)

	err := o.Cancel("again")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestOrder_Totals(t *testing.T) {
	o := newDraftOrder(t)
	require.NoError(t, o.AddLine(uuid.New(), "SKU-001", "Maize Flour 2kg", 100, price(10.00)))
	require.NoError(t, o.AddLine(uuid.New(), "SKU-002", "Rice 5kg", 50, price(20.50)))

	assert.Equal(t, int64(150), o.TotalQuantity())
	assert.True(t, o.TotalAmount().Equal(decimal.NewFromFloat(2025.00)))
}
