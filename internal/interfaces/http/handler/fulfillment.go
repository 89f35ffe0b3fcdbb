package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appfulfillment "github.com/distroerp/backend/internal/application/fulfillment"
	"github.com/distroerp/backend/internal/interfaces/http/dto"
)

// FulfillmentHandler exposes fulfillment tracking, shipment allocation and
// payment collection over HTTP
type FulfillmentHandler struct {
	BaseHandler
	service *appfulfillment.FulfillmentService
}

// NewFulfillmentHandler creates a new FulfillmentHandler
func NewFulfillmentHandler(service *appfulfillment.FulfillmentService) *FulfillmentHandler {
	return &FulfillmentHandler{service: service}
}

// RegisterRoutes registers fulfillment routes on the given group
func (h *FulfillmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	fulfillments := rg.Group("/fulfillments")
	{
		fulfillments.POST("", h.CreateFulfillment)
		fulfillments.GET("/unpaid", h.ListUnpaid)
		fulfillments.GET("/by-order/:id", h.GetFulfillmentByOrder)
		fulfillments.GET("/:id", h.GetFulfillment)
		fulfillments.POST("/:id/recalculate", h.Recalculate)
		fulfillments.POST("/:id/cancel", h.CancelFulfillment)
	}

	shipments := rg.Group("/shipments")
	{
		shipments.POST("", h.AllocateShipment)
		shipments.GET("/in-transit", h.ListInTransit)
		shipments.GET("/:id", h.GetShipment)
		shipments.POST("/:id/transition", h.TransitionShipment)
		shipments.POST("/:id/actual-delivery", h.RecordActualDelivery)
		shipments.POST("/:id/finalize-delivery", h.FinalizeDelivery)
	}

	payments := rg.Group("/payments")
	{
		payments.POST("", h.RecordPayment)
		payments.GET("/outstanding", h.ListOutstandingPayments)
		payments.POST("/:id/confirm", h.ConfirmPayment)
		payments.POST("/:id/fail", h.FailPayment)
		payments.POST("/:id/refund", h.RefundPayment)
		payments.POST("/:id/deposit", h.MarkDeposited)
	}
}

// CreateFulfillment handles POST /fulfillments
func (h *FulfillmentHandler) CreateFulfillment(c *gin.Context) {
	var req appfulfillment.CreateFulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.CreateFulfillment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetFulfillment handles GET /fulfillments/:id
func (h *FulfillmentHandler) GetFulfillment(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	resp, err := h.service.GetFulfillment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetFulfillmentByOrder handles GET /fulfillments/by-order/:id
func (h *FulfillmentHandler) GetFulfillmentByOrder(c *gin.Context) {
	orderID, ok := h.idParam(c)
	if !ok {
		return
	}

	resp, err := h.service.GetFulfillmentByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListUnpaid handles GET /fulfillments/unpaid
func (h *FulfillmentHandler) ListUnpaid(c *gin.Context) {
	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ListUnpaidFulfillments(c.Request.Context(), list.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Recalculate handles POST /fulfillments/:id/recalculate
func (h *FulfillmentHandler) Recalculate(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	resp, err := h.service.Recalculate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CancelFulfillment handles POST /fulfillments/:id/cancel
func (h *FulfillmentHandler) CancelFulfillment(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// Body is optional; cancelling without a reason is allowed.
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.CancelFulfillment(c.Request.Context(), id, body.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AllocateShipment handles POST /shipments
func (h *FulfillmentHandler) AllocateShipment(c *gin.Context) {
	var req appfulfillment.AllocateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.AllocateShipment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetShipment handles GET /shipments/:id
func (h *FulfillmentHandler) GetShipment(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	resp, err := h.service.GetShipment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListInTransit handles GET /shipments/in-transit
func (h *FulfillmentHandler) ListInTransit(c *gin.Context) {
	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ListInTransitShipments(c.Request.Context(), list.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// TransitionShipment handles POST /shipments/:id/transition
func (h *FulfillmentHandler) TransitionShipment(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	var body struct {
		NewStatus string `json:"new_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.TransitionShipmentStatus(c.Request.Context(), appfulfillment.TransitionShipmentRequest{
		ShipmentID: id,
		NewStatus:  body.NewStatus,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordActualDelivery handles POST /shipments/:id/actual-delivery
func (h *FulfillmentHandler) RecordActualDelivery(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	var body struct {
		Lines []appfulfillment.ActualDeliveryLine `json:"lines" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.RecordActualDelivery(c.Request.Context(), appfulfillment.RecordActualDeliveryRequest{
		ShipmentID: id,
		Lines:      body.Lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// FinalizeDelivery handles POST /shipments/:id/finalize-delivery
func (h *FulfillmentHandler) FinalizeDelivery(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	resp, err := h.service.FinalizeDelivery(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordPayment handles POST /payments
func (h *FulfillmentHandler) RecordPayment(c *gin.Context) {
	var req appfulfillment.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.RecordPayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ConfirmPayment handles POST /payments/:id/confirm
func (h *FulfillmentHandler) ConfirmPayment(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	resp, err := h.service.ConfirmPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// FailPayment handles POST /payments/:id/fail
func (h *FulfillmentHandler) FailPayment(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	resp, err := h.service.FailPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RefundPayment handles POST /payments/:id/refund
func (h *FulfillmentHandler) RefundPayment(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	resp, err := h.service.RefundPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkDeposited handles POST /payments/:id/deposit
func (h *FulfillmentHandler) MarkDeposited(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	var body struct {
		BranchID uuid.UUID `json:"branch_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.MarkDeposited(c.Request.Context(), id, body.BranchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListOutstandingPayments handles GET /payments/outstanding
func (h *FulfillmentHandler) ListOutstandingPayments(c *gin.Context) {
	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ListOutstandingPayments(c.Request.Context(), list.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *FulfillmentHandler) idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid ID")
		return uuid.Nil, false
	}
	return id, true
}
