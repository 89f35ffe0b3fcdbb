package fulfillment

import (
	"context"
	"errors"

	"github.com/distroerp/backend/internal/domain/fulfillment"
	"github.com/distroerp/backend/internal/domain/order"
	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FulfillmentService orchestrates the fulfillment flow: creating the
// tracking record for an order, carving shipments out of it, applying
// delivered goods to the stock ledger and reconciling payments. Every
// mutation recalculates the fulfillment's derived totals in the same
// transaction as the child write.
type FulfillmentService struct {
	fulfillmentRepo fulfillment.FulfillmentRepository
	shipmentRepo    fulfillment.ShipmentRepository
	paymentRepo     fulfillment.PaymentRepository
	orderRepo       order.OrderRepository
	txScope         TransactionScope
	allocator       *fulfillment.Allocator
	ledger          *stock.Ledger
	eventPublisher  shared.EventPublisher
}

// NewFulfillmentService creates a new FulfillmentService
func NewFulfillmentService(
	fulfillmentRepo fulfillment.FulfillmentRepository,
	shipmentRepo fulfillment.ShipmentRepository,
	paymentRepo fulfillment.PaymentRepository,
	orderRepo order.OrderRepository,
	txScope TransactionScope,
) *FulfillmentService {
	return &FulfillmentService{
		fulfillmentRepo: fulfillmentRepo,
		shipmentRepo:    shipmentRepo,
		paymentRepo:     paymentRepo,
		orderRepo:       orderRepo,
		txScope:         txScope,
		allocator:       fulfillment.NewAllocator(),
		ledger:          stock.NewLedger(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *FulfillmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateFulfillment starts fulfillment tracking for a placed order. There is
// exactly one fulfillment per order; asking again returns the existing one.
func (s *FulfillmentService) CreateFulfillment(ctx context.Context, req CreateFulfillmentRequest) (*FulfillmentResponse, error) {
	existing, err := s.fulfillmentRepo.FindByOrderID(ctx, req.OrderID)
	if err == nil && existing != nil {
		resp := ToFulfillmentResponse(existing)
		return &resp, nil
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	number, err := s.fulfillmentRepo.GenerateFulfillmentNumber(ctx)
	if err != nil {
		return nil, err
	}

	f, err := fulfillment.NewFulfillment(number, o, req.OriginBranchID, req.DestinationBranchID)
	if err != nil {
		return nil, err
	}
	if err := s.fulfillmentRepo.Save(ctx, f); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, f)

	resp := ToFulfillmentResponse(f)
	return &resp, nil
}

// AllocateShipment carves a new shipment out of a fulfillment's undelivered
// quantities under the vehicle-capacity constraint, then recalculates the
// fulfillment's totals in the same transaction.
func (s *FulfillmentService) AllocateShipment(ctx context.Context, req AllocateShipmentRequest) (*ShipmentResponse, error) {
	requests := make([]fulfillment.AllocationRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		requests = append(requests, fulfillment.AllocationRequest{
			OrderLineID: line.OrderLineID,
			Quantity:    line.Quantity,
		})
	}

	var f *fulfillment.Fulfillment
	var ship *fulfillment.Shipment
	var o *order.Order
	var shipments []fulfillment.Shipment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		f, err = repos.FulfillmentRepo().FindByIDForUpdate(ctx, req.FulfillmentID)
		if err != nil {
			return err
		}
		o, err = repos.OrderRepo().FindByID(ctx, f.OrderID)
		if err != nil {
			return err
		}
		existing, err := repos.ShipmentRepo().FindByFulfillment(ctx, f.ID)
		if err != nil {
			return err
		}

		number, err := repos.ShipmentRepo().GenerateShipmentNumber(ctx)
		if err != nil {
			return err
		}

		ship, err = s.allocator.Allocate(number, f, o.Lines, existing, req.VehicleCapacity, requests)
		if err != nil {
			return err
		}
		if req.ScheduledAt != nil {
			if err := ship.Schedule(*req.ScheduledAt); err != nil {
				return err
			}
		}
		if req.TripID != nil {
			if err := ship.AttachTrip(*req.TripID); err != nil {
				return err
			}
		}

		if err := repos.ShipmentRepo().Save(ctx, ship); err != nil {
			return err
		}

		shipments = append(existing, *ship)
		return s.recalculate(ctx, repos, f, o, shipments)
	})
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, fulfillment.NewShipmentAllocatedEvent(f, ship))
	}

	resp := s.toShipmentResponse(ship, o.Lines, shipments)
	return &resp, nil
}

// TransitionShipmentStatus moves a shipment through its status machine and
// recalculates the fulfillment, since cancelling a shipment frees its
// quantities. Transitioning to DELIVERED does not touch stock by itself;
// FinalizeDelivery is the explicit bridge into the ledger.
func (s *FulfillmentService) TransitionShipmentStatus(ctx context.Context, req TransitionShipmentRequest) (*ShipmentResponse, error) {
	target := fulfillment.ShipmentStatus(req.NewStatus)

	var ship *fulfillment.Shipment
	var o *order.Order
	var shipments []fulfillment.Shipment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		ship, err = repos.ShipmentRepo().FindByIDForUpdate(ctx, req.ShipmentID)
		if err != nil {
			return err
		}
		if err := ship.TransitionTo(target); err != nil {
			return err
		}
		if err := repos.ShipmentRepo().Save(ctx, ship); err != nil {
			return err
		}

		f, err := repos.FulfillmentRepo().FindByIDForUpdate(ctx, ship.FulfillmentID)
		if err != nil {
			return err
		}
		o, err = repos.OrderRepo().FindByID(ctx, f.OrderID)
		if err != nil {
			return err
		}
		shipments, err = repos.ShipmentRepo().FindByFulfillment(ctx, f.ID)
		if err != nil {
			return err
		}
		return s.recalculate(ctx, repos, f, o, shipments)
	})
	if err != nil {
		return nil, err
	}

	resp := s.toShipmentResponse(ship, o.Lines, shipments)
	return &resp, nil
}

// RecordActualDelivery corrects a partially delivered shipment's line
// quantities to what the customer actually received, then recalculates
// the fulfillment so the confirmed figures flow into its totals and the
// undelivered portion becomes available for reallocation.
func (s *FulfillmentService) RecordActualDelivery(ctx context.Context, req RecordActualDeliveryRequest) (*ShipmentResponse, error) {
	actuals := make(map[uuid.UUID]int64, len(req.Lines))
	for _, line := range req.Lines {
		actuals[line.ShipmentLineID] = line.Quantity
	}

	var ship *fulfillment.Shipment
	var o *order.Order
	var shipments []fulfillment.Shipment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		ship, err = repos.ShipmentRepo().FindByIDForUpdate(ctx, req.ShipmentID)
		if err != nil {
			return err
		}
		if err := ship.RecordActualDelivery(actuals); err != nil {
			return err
		}
		if err := repos.ShipmentRepo().Save(ctx, ship); err != nil {
			return err
		}

		f, err := repos.FulfillmentRepo().FindByIDForUpdate(ctx, ship.FulfillmentID)
		if err != nil {
			return err
		}
		o, err = repos.OrderRepo().FindByID(ctx, f.OrderID)
		if err != nil {
			return err
		}
		shipments, err = repos.ShipmentRepo().FindByFulfillment(ctx, f.ID)
		if err != nil {
			return err
		}
		return s.recalculate(ctx, repos, f, o, shipments)
	})
	if err != nil {
		return nil, err
	}

	resp := s.toShipmentResponse(ship, o.Lines, shipments)
	return &resp, nil
}

// FinalizeDelivery applies a delivered shipment's quantities to the stock
// ledger: one IN movement per line against the fulfillment's destination
// branch, tagged with the origin branch. The shipment's stock-assigned
// marker makes the whole operation idempotent; a re-run fails with
// DUPLICATE_APPLICATION and changes nothing.
func (s *FulfillmentService) FinalizeDelivery(ctx context.Context, shipmentID uuid.UUID) (*FulfillmentResponse, error) {
	var f *fulfillment.Fulfillment
	var ship *fulfillment.Shipment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		ship, err = repos.ShipmentRepo().FindByIDForUpdate(ctx, shipmentID)
		if err != nil {
			return err
		}
		if err := ship.MarkStockAssigned(); err != nil {
			return err
		}

		f, err = repos.FulfillmentRepo().FindByIDForUpdate(ctx, ship.FulfillmentID)
		if err != nil {
			return err
		}

		for _, line := range ship.Lines {
			if line.QuantityDelivered == 0 {
				continue
			}
			position, err := repos.StockRepo().GetOrCreateForUpdate(ctx, f.DestinationBranchID, line.ProductID)
			if err != nil {
				return err
			}

			movement, err := stock.NewStockMovement(position.ID, f.DestinationBranchID, line.ProductID, stock.MovementTypeIn, line.QuantityDelivered)
			if err != nil {
				return err
			}
			movement.WithBranches(&f.OriginBranchID, &f.DestinationBranchID).
				WithReference(ship.ShipmentNumber)

			if err := s.ledger.Apply(movement, position, nil); err != nil {
				return err
			}
			if err := repos.MovementRepo().Create(ctx, movement); err != nil {
				return err
			}
			if err := repos.StockRepo().SaveWithLock(ctx, position); err != nil {
				return err
			}
		}

		if err := repos.ShipmentRepo().Save(ctx, ship); err != nil {
			return err
		}

		o, err := repos.OrderRepo().FindByID(ctx, f.OrderID)
		if err != nil {
			return err
		}
		shipments, err := repos.ShipmentRepo().FindByFulfillment(ctx, f.ID)
		if err != nil {
			return err
		}
		return s.recalculate(ctx, repos, f, o, shipments)
	})
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, fulfillment.NewShipmentDeliveredEvent(f, ship))
	}

	resp := ToFulfillmentResponse(f)
	return &resp, nil
}

// RecordPayment records a pending collection against a fulfillment. Pending
// money does not count toward totals, so no recalculation happens yet.
func (s *FulfillmentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be a valid decimal")
	}
	method := fulfillment.PaymentMethod(req.Method)

	if _, err := s.fulfillmentRepo.FindByID(ctx, req.FulfillmentID); err != nil {
		return nil, err
	}

	number, err := s.paymentRepo.GeneratePaymentNumber(ctx)
	if err != nil {
		return nil, err
	}

	p, err := fulfillment.NewPaymentCollection(number, req.FulfillmentID, amount, method)
	if err != nil {
		return nil, err
	}
	if req.ShipmentID != nil {
		p.WithShipment(*req.ShipmentID)
	}
	if req.CollectedByID != nil {
		p.WithCollectedBy(*req.CollectedByID)
	}
	p.WithReference(req.Reference).WithReceipt(req.ReceiptNumber)

	if err := s.paymentRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	resp := ToPaymentResponse(p)
	return &resp, nil
}

// ConfirmPayment completes a pending collection and folds it into the
// fulfillment's collected totals in the same transaction.
func (s *FulfillmentService) ConfirmPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	var f *fulfillment.Fulfillment
	var p *fulfillment.PaymentCollection
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		p, err = repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := p.Confirm(); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, p); err != nil {
			return err
		}

		f, err = repos.FulfillmentRepo().FindByIDForUpdate(ctx, p.FulfillmentID)
		if err != nil {
			return err
		}
		o, err := repos.OrderRepo().FindByID(ctx, f.OrderID)
		if err != nil {
			return err
		}
		shipments, err := repos.ShipmentRepo().FindByFulfillment(ctx, f.ID)
		if err != nil {
			return err
		}
		return s.recalculate(ctx, repos, f, o, shipments)
	})
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, fulfillment.NewPaymentConfirmedEvent(f, p))
	}

	resp := ToPaymentResponse(p)
	return &resp, nil
}

// FailPayment marks a pending collection as failed
func (s *FulfillmentService) FailPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := p.Fail(); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	resp := ToPaymentResponse(p)
	return &resp, nil
}

// RefundPayment returns a completed collection to the customer and takes it
// back out of the collected totals.
func (s *FulfillmentService) RefundPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	var p *fulfillment.PaymentCollection
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		p, err = repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := p.Refund(); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, p); err != nil {
			return err
		}

		f, err := repos.FulfillmentRepo().FindByIDForUpdate(ctx, p.FulfillmentID)
		if err != nil {
			return err
		}
		o, err := repos.OrderRepo().FindByID(ctx, f.OrderID)
		if err != nil {
			return err
		}
		shipments, err := repos.ShipmentRepo().FindByFulfillment(ctx, f.ID)
		if err != nil {
			return err
		}
		return s.recalculate(ctx, repos, f, o, shipments)
	})
	if err != nil {
		return nil, err
	}

	resp := ToPaymentResponse(p)
	return &resp, nil
}

// MarkDeposited records that collected cash reached a branch account.
// Independent of the collected totals; it only clears the outstanding
// custody signal.
func (s *FulfillmentService) MarkDeposited(ctx context.Context, paymentID, branchID uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := p.MarkDeposited(branchID); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		if f, err := s.fulfillmentRepo.FindByID(ctx, p.FulfillmentID); err == nil {
			_ = s.eventPublisher.Publish(ctx, fulfillment.NewPaymentDepositedEvent(f, p, branchID))
		}
	}

	resp := ToPaymentResponse(p)
	return &resp, nil
}

// Recalculate recomputes a fulfillment's derived totals from its persisted
// children. Safe to call at any time; concurrent runs converge.
func (s *FulfillmentService) Recalculate(ctx context.Context, fulfillmentID uuid.UUID) (*FulfillmentResponse, error) {
	var f *fulfillment.Fulfillment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		f, err = repos.FulfillmentRepo().FindByIDForUpdate(ctx, fulfillmentID)
		if err != nil {
			return err
		}
		o, err := repos.OrderRepo().FindByID(ctx, f.OrderID)
		if err != nil {
			return err
		}
		shipments, err := repos.ShipmentRepo().FindByFulfillment(ctx, f.ID)
		if err != nil {
			return err
		}
		return s.recalculate(ctx, repos, f, o, shipments)
	})
	if err != nil {
		return nil, err
	}

	resp := ToFulfillmentResponse(f)
	return &resp, nil
}

// CancelFulfillment cancels a fulfillment; the status is sticky from then on
func (s *FulfillmentService) CancelFulfillment(ctx context.Context, fulfillmentID uuid.UUID, reason string) (*FulfillmentResponse, error) {
	f, err := s.fulfillmentRepo.FindByID(ctx, fulfillmentID)
	if err != nil {
		return nil, err
	}
	if err := f.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.fulfillmentRepo.Save(ctx, f); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, f)

	resp := ToFulfillmentResponse(f)
	return &resp, nil
}

// GetFulfillment returns one fulfillment
func (s *FulfillmentService) GetFulfillment(ctx context.Context, fulfillmentID uuid.UUID) (*FulfillmentResponse, error) {
	f, err := s.fulfillmentRepo.FindByID(ctx, fulfillmentID)
	if err != nil {
		return nil, err
	}
	resp := ToFulfillmentResponse(f)
	return &resp, nil
}

// GetFulfillmentByOrder returns the fulfillment tracking an order
func (s *FulfillmentService) GetFulfillmentByOrder(ctx context.Context, orderID uuid.UUID) (*FulfillmentResponse, error) {
	f, err := s.fulfillmentRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToFulfillmentResponse(f)
	return &resp, nil
}

// GetShipment returns one shipment with derived remaining quantities
func (s *FulfillmentService) GetShipment(ctx context.Context, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	ship, err := s.shipmentRepo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	f, err := s.fulfillmentRepo.FindByID(ctx, ship.FulfillmentID)
	if err != nil {
		return nil, err
	}
	o, err := s.orderRepo.FindByID(ctx, f.OrderID)
	if err != nil {
		return nil, err
	}
	shipments, err := s.shipmentRepo.FindByFulfillment(ctx, f.ID)
	if err != nil {
		return nil, err
	}

	resp := s.toShipmentResponse(ship, o.Lines, shipments)
	return &resp, nil
}

// ListUnpaidFulfillments returns fulfillments with money still owed
func (s *FulfillmentService) ListUnpaidFulfillments(ctx context.Context, filter shared.Filter) ([]FulfillmentResponse, error) {
	fulfillments, err := s.fulfillmentRepo.FindWithOutstandingBalance(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]FulfillmentResponse, 0, len(fulfillments))
	for i := range fulfillments {
		responses = append(responses, ToFulfillmentResponse(&fulfillments[i]))
	}
	return responses, nil
}

// ListInTransitShipments returns shipments currently on the road
func (s *FulfillmentService) ListInTransitShipments(ctx context.Context, filter shared.Filter) ([]ShipmentResponse, error) {
	shipments, err := s.shipmentRepo.FindInTransit(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]ShipmentResponse, 0, len(shipments))
	for i := range shipments {
		responses = append(responses, s.toShipmentResponse(&shipments[i], nil, nil))
	}
	return responses, nil
}

// ListOutstandingPayments returns completed-but-undeposited collections with
// their running total for branch cash reconciliation.
func (s *FulfillmentService) ListOutstandingPayments(ctx context.Context, filter shared.Filter) (*OutstandingPaymentsResponse, error) {
	payments, err := s.paymentRepo.FindOutstanding(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	total := decimal.Zero
	for i := range payments {
		responses = append(responses, ToPaymentResponse(&payments[i]))
		total = total.Add(payments[i].Amount)
	}

	return &OutstandingPaymentsResponse{
		Payments: responses,
		Total:    total,
	}, nil
}

// recalculate loads the payments and reruns the derivation, persisting the
// fulfillment. Runs inside the caller's transaction.
func (s *FulfillmentService) recalculate(
	ctx context.Context,
	repos TransactionalRepositories,
	f *fulfillment.Fulfillment,
	o *order.Order,
	shipments []fulfillment.Shipment,
) error {
	payments, err := repos.PaymentRepo().FindByFulfillment(ctx, f.ID)
	if err != nil {
		return err
	}
	f.Recalculate(o.Lines, shipments, payments)
	return repos.FulfillmentRepo().Save(ctx, f)
}

// toShipmentResponse derives per-line ordered and remaining quantities from
// the order lines and the sibling shipments. When those are not at hand
// (pure shipment listings) the derived fields stay zero.
func (s *FulfillmentService) toShipmentResponse(ship *fulfillment.Shipment, orderLines []order.OrderLine, allShipments []fulfillment.Shipment) ShipmentResponse {
	orderedByLine := make(map[uuid.UUID]int64, len(orderLines))
	for _, line := range orderLines {
		orderedByLine[line.ID] = line.QuantityOrdered
	}
	delivered := fulfillment.DeliveredByOrderLine(allShipments)

	lines := make([]ShipmentLineResponse, 0, len(ship.Lines))
	for i := range ship.Lines {
		line := &ship.Lines[i]
		ordered := orderedByLine[line.OrderLineID]
		var remaining int64
		if ordered > 0 {
			remaining = ordered - delivered[line.OrderLineID]
		}
		lines = append(lines, ShipmentLineResponse{
			ID:                line.ID,
			OrderLineID:       line.OrderLineID,
			ProductID:         line.ProductID,
			ProductName:       line.ProductName,
			QuantityOrdered:   ordered,
			QuantityDelivered: line.QuantityDelivered,
			QuantityRemaining: remaining,
			UnitPrice:         line.UnitPrice,
		})
	}

	return ShipmentResponse{
		ID:              ship.ID,
		FulfillmentID:   ship.FulfillmentID,
		ShipmentNumber:  ship.ShipmentNumber,
		Status:          ship.Status.String(),
		VehicleCapacity: ship.VehicleCapacity,
		ItemsLoaded:     ship.ItemsLoaded(),
		TotalValue:      ship.TotalValue(),
		TripID:          ship.TripID,
		ScheduledAt:     ship.ScheduledAt,
		DeliveredAt:     ship.DeliveredAt,
		ActualsRecorded: ship.ActualsRecorded,
		StockAssigned:   ship.StockAssigned,
		Lines:           lines,
	}
}

func (s *FulfillmentService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	aggregate.ClearDomainEvents()
}
