package fulfillment

import (
	"context"
	"testing"

	domfulfillment "github.com/distroerp/backend/internal/domain/fulfillment"
	"github.com/distroerp/backend/internal/domain/order"
	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc          *FulfillmentService
	orderRepo    *memOrderRepo
	stockRepo    *memStockRepo
	movementRepo *memMovementRepo
	order        *order.Order
	originBranch uuid.UUID
	destBranch   uuid.UUID
}

// newFixture builds a service over in-memory repositories with one placed
// order of 100 units at $10.
func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	fulfillmentRepo := newMemFulfillmentRepo()
	shipmentRepo := newMemShipmentRepo()
	paymentRepo := newMemPaymentRepo()
	orderRepo := newMemOrderRepo()
	stockRepo := newMemStockRepo()
	movementRepo := newMemMovementRepo()

	scope := NewNoOpTransactionScope(fulfillmentRepo, shipmentRepo, paymentRepo, orderRepo, stockRepo, movementRepo)
	svc := NewFulfillmentService(fulfillmentRepo, shipmentRepo, paymentRepo, orderRepo, scope)

	o, err := order.NewOrder("ORD-2026-00001", uuid.New(), "Mwanza Traders")
	require.NoError(t, err)
	require.NoError(t, o.AddLine(uuid.New(), "SKU-001", "Maize Flour 2kg", 100, valueobject.NewMoneyUSD(decimal.NewFromInt(10))))
	require.NoError(t, o.Place())
	require.NoError(t, orderRepo.Save(context.Background(), o))

	return &serviceFixture{
		svc:          svc,
		orderRepo:    orderRepo,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		order:        o,
		originBranch: uuid.New(),
		destBranch:   uuid.New(),
	}
}

func (fx *serviceFixture) createFulfillment(t *testing.T) *FulfillmentResponse {
	t.Helper()
	resp, err := fx.svc.CreateFulfillment(context.Background(), CreateFulfillmentRequest{
		OrderID:             fx.order.ID,
		OriginBranchID:      fx.originBranch,
		DestinationBranchID: fx.destBranch,
	})
	require.NoError(t, err)
	return resp
}

func (fx *serviceFixture) allocate(t *testing.T, fulfillmentID uuid.UUID, capacity, qty int64) *ShipmentResponse {
	t.Helper()
	resp, err := fx.svc.AllocateShipment(context.Background(), AllocateShipmentRequest{
		FulfillmentID:   fulfillmentID,
		VehicleCapacity: capacity,
		Lines: []AllocationLineRequest{
			{OrderLineID: fx.order.Lines[0].ID, Quantity: qty},
		},
	})
	require.NoError(t, err)
	return resp
}

func (fx *serviceFixture) deliver(t *testing.T, shipmentID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	for _, status := range []string{"LOADING", "IN_TRANSIT", "DELIVERED"} {
		_, err := fx.svc.TransitionShipmentStatus(ctx, TransitionShipmentRequest{
			ShipmentID: shipmentID,
			NewStatus:  status,
		})
		require.NoError(t, err)
	}
}

func TestFulfillmentService_CreateIsOncePerOrder(t *testing.T) {
	fx := newFixture(t)

	first := fx.createFulfillment(t)
	assert.Equal(t, "PENDING", first.Status)
	assert.Equal(t, int64(100), first.TotalItemsOrdered)

	second := fx.createFulfillment(t)
	assert.Equal(t, first.ID, second.ID, "asking again returns the existing fulfillment")
}

func TestFulfillmentService_CreateRequiresPlacedOrder(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	draft, err := order.NewOrder("ORD-2026-00002", uuid.New(), "Acme")
	require.NoError(t, err)
	require.NoError(t, fx.orderRepo.Save(ctx, draft))

	_, err = fx.svc.CreateFulfillment(ctx, CreateFulfillmentRequest{
		OrderID:             draft.ID,
		OriginBranchID:      fx.originBranch,
		DestinationBranchID: fx.destBranch,
	})
	require.Error(t, err)
}

// Full flow from the order through two shipments to full payment: 60 then 40
// units delivered, then $1000 collected.
func TestFulfillmentService_ProgressiveFulfillmentFlow(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.createFulfillment(t)

	shipA := fx.allocate(t, f.ID, 80, 60)
	assert.Equal(t, int64(60), shipA.ItemsLoaded)
	fx.deliver(t, shipA.ID)
	_, err := fx.svc.FinalizeDelivery(ctx, shipA.ID)
	require.NoError(t, err)

	state, err := fx.svc.GetFulfillment(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "PARTIALLY_FULFILLED", state.Status)
	assert.Equal(t, int64(40), state.TotalItemsRemaining)
	assert.True(t, state.FulfillmentPercentage.Equal(decimal.NewFromInt(60)))

	shipB := fx.allocate(t, f.ID, 50, 40)
	fx.deliver(t, shipB.ID)
	_, err = fx.svc.FinalizeDelivery(ctx, shipB.ID)
	require.NoError(t, err)

	state, err = fx.svc.GetFulfillment(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "FULLY_FULFILLED", state.Status)
	assert.Equal(t, int64(0), state.TotalItemsRemaining)

	// Destination branch received all 100 units
	position, err := fx.stockRepo.FindByBranchAndProduct(ctx, fx.destBranch, fx.order.Lines[0].ProductID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), position.Quantity)

	payment, err := fx.svc.RecordPayment(ctx, RecordPaymentRequest{
		FulfillmentID: f.ID,
		Amount:        "1000",
		Method:        "CASH",
	})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", payment.Status)

	_, err = fx.svc.ConfirmPayment(ctx, payment.ID)
	require.NoError(t, err)

	state, err = fx.svc.GetFulfillment(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, state.TotalCollected.Equal(decimal.NewFromInt(1000)))
	assert.True(t, state.TotalRemaining.IsZero())
	assert.True(t, state.PaymentPercentage.Equal(decimal.NewFromInt(100)))
}

func TestFulfillmentService_FinalizeDeliveryIsIdempotent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.createFulfillment(t)

	ship := fx.allocate(t, f.ID, 80, 60)
	fx.deliver(t, ship.ID)

	_, err := fx.svc.FinalizeDelivery(ctx, ship.ID)
	require.NoError(t, err)

	position, err := fx.stockRepo.FindByBranchAndProduct(ctx, fx.destBranch, fx.order.Lines[0].ProductID)
	require.NoError(t, err)
	require.Equal(t, int64(60), position.Quantity)

	_, err = fx.svc.FinalizeDelivery(ctx, ship.ID)
	assert.ErrorIs(t, err, shared.ErrDuplicateApplication)

	position, err = fx.stockRepo.FindByBranchAndProduct(ctx, fx.destBranch, fx.order.Lines[0].ProductID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), position.Quantity, "re-finalizing must not double-apply stock")

	movements, err := fx.movementRepo.FindByStock(ctx, position.ID, shared.Filter{})
	require.NoError(t, err)
	assert.Len(t, movements, 1, "exactly one movement per shipment line")
}

func TestFulfillmentService_FinalizeDeliveryRequiresDeliveredShipment(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.createFulfillment(t)

	ship := fx.allocate(t, f.ID, 80, 60)

	_, err := fx.svc.FinalizeDelivery(ctx, ship.ID)
	require.Error(t, err)

	_, err = fx.stockRepo.FindByBranchAndProduct(ctx, fx.destBranch, fx.order.Lines[0].ProductID)
	assert.ErrorIs(t, err, shared.ErrNotFound, "no stock is touched before delivery")
}

func TestFulfillmentService_AllocationRespectsCapacityAndRemaining(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.createFulfillment(t)

	_, err := fx.svc.AllocateShipment(ctx, AllocateShipmentRequest{
		FulfillmentID:   f.ID,
		VehicleCapacity: 50,
		Lines: []AllocationLineRequest{
			{OrderLineID: fx.order.Lines[0].ID, Quantity: 70},
		},
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CAPACITY_EXCEEDED", domainErr.Code)

	fx.allocate(t, f.ID, 80, 60)

	_, err = fx.svc.AllocateShipment(ctx, AllocateShipmentRequest{
		FulfillmentID:   f.ID,
		VehicleCapacity: 80,
		Lines: []AllocationLineRequest{
			{OrderLineID: fx.order.Lines[0].ID, Quantity: 41},
		},
	})
	require.Error(t, err)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OVER_ALLOCATION", domainErr.Code)
}

func TestFulfillmentService_CancellingShipmentRecalculates(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.createFulfillment(t)

	ship := fx.allocate(t, f.ID, 80, 60)

	state, err := fx.svc.GetFulfillment(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), state.TotalItemsFulfilled, "planned load counts until the shipment is cancelled")

	_, err = fx.svc.TransitionShipmentStatus(ctx, TransitionShipmentRequest{
		ShipmentID: ship.ID,
		NewStatus:  "CANCELLED",
	})
	require.NoError(t, err)

	state, err = fx.svc.GetFulfillment(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.TotalItemsFulfilled)
	assert.Equal(t, "PENDING", state.Status)
}

func TestFulfillmentService_InvalidTransitionIsRejected(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.createFulfillment(t)

	ship := fx.allocate(t, f.ID, 80, 60)

	_, err := fx.svc.TransitionShipmentStatus(ctx, TransitionShipmentRequest{
		ShipmentID: ship.ID,
		NewStatus:  "DELIVERED",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestFulfillmentService_OutstandingPayments(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.createFulfillment(t)
	branchID := uuid.New()

	first, err := fx.svc.RecordPayment(ctx, RecordPaymentRequest{
		FulfillmentID: f.ID, Amount: "400", Method: "CASH",
	})
	require.NoError(t, err)
	second, err := fx.svc.RecordPayment(ctx, RecordPaymentRequest{
		FulfillmentID: f.ID, Amount: "250", Method: "MOBILE_MONEY", Reference: "MPESA-AB12",
	})
	require.NoError(t, err)
	third, err := fx.svc.RecordPayment(ctx, RecordPaymentRequest{
		FulfillmentID: f.ID, Amount: "99", Method: "CASH",
	})
	require.NoError(t, err)

	_, err = fx.svc.ConfirmPayment(ctx, first.ID)
	require.NoError(t, err)
	_, err = fx.svc.ConfirmPayment(ctx, second.ID)
	require.NoError(t, err)
	// third stays pending and must not appear

	outstanding, err := fx.svc.ListOutstandingPayments(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Len(t, outstanding.Payments, 2)
	assert.True(t, outstanding.Total.Equal(decimal.NewFromInt(650)), "got %s", outstanding.Total)

	_, err = fx.svc.MarkDeposited(ctx, first.ID, branchID)
	require.NoError(t, err)

	outstanding, err = fx.svc.ListOutstandingPayments(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Len(t, outstanding.Payments, 1)
	assert.True(t, outstanding.Total.Equal(decimal.NewFromInt(250)))

	// Deposit does not change collected totals
	state, err := fx.svc.GetFulfillment(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, state.TotalCollected.Equal(decimal.NewFromInt(650)))

	_, err = fx.svc.MarkDeposited(ctx, third.ID, branchID)
	require.Error(t, err, "pending money cannot be deposited")
}

func TestFulfillmentService_RefundTakesMoneyBackOut(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.createFulfillment(t)

	payment, err := fx.svc.RecordPayment(ctx, RecordPaymentRequest{
		FulfillmentID: f.ID, Amount: "300", Method: "CARD",
	})
	require.NoError(t, err)
	_, err = fx.svc.ConfirmPayment(ctx, payment.ID)
	require.NoError(t, err)

	state, err := fx.svc.GetFulfillment(ctx, f.ID)
	require.NoError(t, err)
	require.True(t, state.TotalCollected.Equal(decimal.NewFromInt(300)))

	_, err = fx.svc.RefundPayment(ctx, payment.ID)
	require.NoError(t, err)

	state, err = fx.svc.GetFulfillment(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, state.TotalCollected.IsZero())
	assert.True(t, state.TotalRemaining.Equal(decimal.NewFromInt(1000)))
}

func TestFulfillmentService_RecalculateConverges(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.createFulfillment(t)

	ship := fx.allocate(t, f.ID, 80, 25)
	_ = ship

	first, err := fx.svc.Recalculate(ctx, f.ID)
	require.NoError(t, err)
	second, err := fx.svc.Recalculate(ctx, f.ID)
	require.NoError(t, err)

	assert.Equal(t, first.TotalItemsFulfilled, second.TotalItemsFulfilled)
	assert.Equal(t, first.TotalItemsRemaining, second.TotalItemsRemaining)
	assert.True(t, first.TotalCollected.Equal(second.TotalCollected))
	assert.Equal(t, first.Status, second.Status)
}

// A run planned at 60 comes back with only 40 delivered: stock must not be
// credited until the actual quantities are on record, and then only with
// what arrived.
func TestFulfillmentService_PartialDeliveryCreditsOnlyActuals(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.createFulfillment(t)

	ship := fx.allocate(t, f.ID, 80, 60)
	for _, status := range []string{"LOADING", "IN_TRANSIT", "PARTIALLY_DELIVERED"} {
		_, err := fx.svc.TransitionShipmentStatus(ctx, TransitionShipmentRequest{
			ShipmentID: ship.ID,
			NewStatus:  status,
		})
		require.NoError(t, err)
	}

	_, err := fx.svc.FinalizeDelivery(ctx, ship.ID)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACTUALS_NOT_RECORDED", domainErr.Code)
	_, err = fx.stockRepo.FindByBranchAndProduct(ctx, fx.destBranch, fx.order.Lines[0].ProductID)
	assert.ErrorIs(t, err, shared.ErrNotFound, "the planned load must not be credited")

	updated, err := fx.svc.RecordActualDelivery(ctx, RecordActualDeliveryRequest{
		ShipmentID: ship.ID,
		Lines:      []ActualDeliveryLine{{ShipmentLineID: ship.Lines[0].ID, Quantity: 40}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(40), updated.ItemsLoaded)

	_, err = fx.svc.FinalizeDelivery(ctx, ship.ID)
	require.NoError(t, err)

	position, err := fx.stockRepo.FindByBranchAndProduct(ctx, fx.destBranch, fx.order.Lines[0].ProductID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), position.Quantity, "only goods that arrived are credited")

	state, err := fx.svc.GetFulfillment(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), state.TotalItemsFulfilled)
	assert.Equal(t, int64(60), state.TotalItemsRemaining)
	assert.Equal(t, "PARTIALLY_FULFILLED", state.Status)

	// The 20 undelivered units are free to go on the next run
	fx.allocate(t, f.ID, 80, 60)
}

func TestFulfillmentService_CancelFulfillmentBlocksAllocation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.createFulfillment(t)

	_, err := fx.svc.CancelFulfillment(ctx, f.ID, "customer refused")
	require.NoError(t, err)

	_, err = fx.svc.AllocateShipment(ctx, AllocateShipmentRequest{
		FulfillmentID:   f.ID,
		VehicleCapacity: 50,
		Lines: []AllocationLineRequest{
			{OrderLineID: fx.order.Lines[0].ID, Quantity: 10},
		},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

// Keep the compiler honest about the fixture types
var _ domfulfillment.FulfillmentRepository = (*memFulfillmentRepo)(nil)
var _ domfulfillment.ShipmentRepository = (*memShipmentRepo)(nil)
var _ domfulfillment.PaymentRepository = (*memPaymentRepo)(nil)
