package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appstock "github.com/distroerp/backend/internal/application/stock"
	"github.com/distroerp/backend/internal/interfaces/http/dto"
)

// StockHandler exposes the stock ledger over HTTP
type StockHandler struct {
	BaseHandler
	service *appstock.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(service *appstock.StockService) *StockHandler {
	return &StockHandler{service: service}
}

// RegisterRoutes registers stock routes on the given group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.POST("/receive", h.Receive)
		stock.POST("/issue", h.Issue)
		stock.POST("/transfer", h.Transfer)
		stock.POST("/adjust", h.Adjust)
		stock.GET("/low", h.ListLowStock)
	}

	branches := rg.Group("/branches/:branchID/stock")
	{
		branches.GET("", h.ListByBranch)
		branches.GET("/:productID", h.GetPosition)
		branches.PUT("/:productID/reorder-level", h.SetReorderLevel)
		branches.GET("/:productID/movements", h.ListMovements)
	}
}

// Receive handles POST /stock/receive
func (h *StockHandler) Receive(c *gin.Context) {
	var req appstock.ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.Receive(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Issue handles POST /stock/issue
func (h *StockHandler) Issue(c *gin.Context) {
	var req appstock.IssueStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.Issue(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Transfer handles POST /stock/transfer
func (h *StockHandler) Transfer(c *gin.Context) {
	var req appstock.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.Transfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Adjust handles POST /stock/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	var req appstock.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.Adjust(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetPosition handles GET /branches/:branchID/stock/:productID
func (h *StockHandler) GetPosition(c *gin.Context) {
	branchID, productID, ok := h.branchProductParams(c)
	if !ok {
		return
	}

	resp, err := h.service.GetPosition(c.Request.Context(), branchID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetReorderLevel handles PUT /branches/:branchID/stock/:productID/reorder-level
func (h *StockHandler) SetReorderLevel(c *gin.Context) {
	branchID, productID, ok := h.branchProductParams(c)
	if !ok {
		return
	}

	var body struct {
		Level int64 `json:"level" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.SetReorderLevel(c.Request.Context(), branchID, productID, body.Level)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByBranch handles GET /branches/:branchID/stock
func (h *StockHandler) ListByBranch(c *gin.Context) {
	branchID, err := uuid.Parse(c.Param("branchID"))
	if err != nil {
		h.BadRequest(c, "invalid branch ID")
		return
	}

	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ListByBranch(c.Request.Context(), branchID, list.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListLowStock handles GET /stock/low
func (h *StockHandler) ListLowStock(c *gin.Context) {
	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ListLowStock(c.Request.Context(), list.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListMovements handles GET /branches/:branchID/stock/:productID/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	branchID, productID, ok := h.branchProductParams(c)
	if !ok {
		return
	}

	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ListMovements(c.Request.Context(), branchID, productID, list.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *StockHandler) branchProductParams(c *gin.Context) (branchID, productID uuid.UUID, ok bool) {
	branchID, err := uuid.Parse(c.Param("branchID"))
	if err != nil {
		h.BadRequest(c, "invalid branch ID")
		return uuid.Nil, uuid.Nil, false
	}
	productID, err = uuid.Parse(c.Param("productID"))
	if err != nil {
		h.BadRequest(c, "invalid product ID")
		return uuid.Nil, uuid.Nil, false
	}
	return branchID, productID, true
}
