package handler

import (
	"net/http"
	"strconv"

	"bhms-backend/internal/middleware"
	"bhms-backend/internal/service"
	"bhms-backend/pkg/pagination"
	"bhms-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// markStatusRequest moves an invoice to PAID or OVERDUE outside of payment
// reconciliation.
type markStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PAID OVERDUE"`
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices", middleware.RequireStaff())
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.PUT("/:id", h.EditInvoice)
		invoices.PUT("/:id/status", h.MarkStatus)
	}
}

// ListInvoices returns a paginated list of invoices
// @Summary      List invoices
// @Description  Retrieves a paginated list of invoices, optionally filtered by room, status and period
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        room_id  query     string  false  "Filter by room ID"
// @Param        status   query     string  false  "Filter by status (PENDING, PAID, OVERDUE)"
// @Param        month    query     int     false  "Filter by billing month"
// @Param        year     query     int     false  "Filter by billing year"
// @Param        page     query     int     false  "Page number (default 1)"
// @Param        limit    query     int     false  "Number of items per page (default 20)"
// @Success      200      {object}  response.Response{data=object}
// @Failure      500      {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	p := pagination.Parse(c)
	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))

	filter := service.InvoiceFilter{
		RoomID: c.Query("room_id"),
		Status: c.Query("status"),
		Month:  month,
		Year:   year,
		Page:   p.Page,
		Limit:  p.Limit,
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"total":    total,
		"page":     p.Page,
		"limit":    p.Limit,
	}))
}

// GetInvoice returns a single invoice with its payments
// @Summary      Get invoice by ID
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// EditInvoice recomputes an unresolved invoice from corrected inputs
// @Summary      Edit invoice
// @Description  Updates an unresolved invoice. New readings are validated against the invoice's period-start baselines and costs are recomputed. Paid invoices are locked.
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Invoice ID"
// @Param        payload  body      service.EditInvoiceRequest  true  "Edit Invoice Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceMutationResult}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) EditInvoice(c *gin.Context) {
	var req service.EditInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	actorID, _ := userID.(string)

	result, err := h.invoiceService.Edit(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// MarkStatus transitions an invoice's status
// @Summary      Mark invoice status
// @Description  Transitions an invoice to PAID or OVERDUE. PAID is terminal and cannot be left.
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Invoice ID"
// @Param        payload  body      markStatusRequest  true  "Target status"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/invoices/{id}/status [put]
func (h *InvoiceHandler) MarkStatus(c *gin.Context) {
	var req markStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	actorID, _ := userID.(string)

	invoice, err := h.invoiceService.MarkStatus(c.Request.Context(), actorID, c.Param("id"), req.Status)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}
