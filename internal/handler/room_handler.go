package handler

import (
	"net/http"

	"bhms-backend/internal/middleware"
	"bhms-backend/internal/service"
	"bhms-backend/pkg/pagination"
	"bhms-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	roomService    service.RoomService
	previewService service.PreviewService
	invoiceService service.InvoiceService
}

func NewRoomHandler(roomService service.RoomService, previewService service.PreviewService, invoiceService service.InvoiceService) *RoomHandler {
	return &RoomHandler{
		roomService:    roomService,
		previewService: previewService,
		invoiceService: invoiceService,
	}
}

func (h *RoomHandler) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/api/rooms", middleware.RequireStaff())
	{
		rooms.POST("", h.CreateRoom)
		rooms.GET("", h.ListRooms)
		rooms.GET("/:id", h.GetRoom)
		rooms.PUT("/:id", h.UpdateRoom)
		rooms.DELETE("/:id", h.DeleteRoom)

		rooms.POST("/:id/services", h.AttachService)
		rooms.PUT("/:id/services/:serviceId", h.UpdateRoomService)
		rooms.DELETE("/:id/services/:serviceId", h.DetachService)

		rooms.POST("/:id/invoice-preview", h.PreviewInvoice)
		rooms.POST("/:id/invoices", h.CreateInvoice)
	}
}

// CreateRoom registers a new room with its base rent and meter state
// @Summary      Create room
// @Description  Creates a new room with rent price, utility rates and initial meter readings
// @Tags         rooms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRoomRequest  true  "Create Room Payload"
// @Success      201      {object}  response.Response{data=service.RoomResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/rooms [post]
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req service.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	actorID, _ := userID.(string)

	room, err := h.roomService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, room))
}

// ListRooms returns a paginated list of rooms
// @Summary      List rooms
// @Description  Retrieves a paginated list of rooms, optionally filtered by status or name search
// @Tags         rooms
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (EMPTY, OCCUPIED, LOCKED)"
// @Param        search  query     string  false  "Search by room name"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	p := pagination.Parse(c)

	rooms, total, err := h.roomService.List(c.Request.Context(), c.Query("status"), c.Query("search"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"rooms": rooms,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// GetRoom returns a single room with its attached services
// @Summary      Get room by ID
// @Tags         rooms
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Room ID"
// @Success      200  {object}  response.Response{data=service.RoomResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/rooms/{id} [get]
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, room))
}

// UpdateRoom updates room details, status, or corrects meter baselines
// @Summary      Update room
// @Description  Updates room details. Meter corrections are applied to the next-baseline columns.
// @Tags         rooms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Room ID"
// @Param        payload  body      service.UpdateRoomRequest  true  "Update Room Payload"
// @Success      200      {object}  response.Response{data=service.RoomResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/rooms/{id} [put]
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	var req service.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	actorID, _ := userID.(string)

	room, err := h.roomService.Update(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, room))
}

// DeleteRoom removes a room
// @Summary      Delete room
// @Tags         rooms
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Room ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/rooms/{id} [delete]
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	userID, _ := c.Get("userID")
	actorID, _ := userID.(string)

	if err := h.roomService.Delete(c.Request.Context(), actorID, c.Param("id")); err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Room deleted successfully"))
}

// AttachService attaches a catalog service to a room
// @Summary      Attach service to room
// @Description  Attaches a catalog service to a room with an optional price override and quantity
// @Tags         rooms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Room ID"
// @Param        payload  body      service.AttachServiceRequest  true  "Attach Service Payload"
// @Success      201      {object}  response.Response{data=service.RoomServiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/rooms/{id}/services [post]
func (h *RoomHandler) AttachService(c *gin.Context) {
	var req service.AttachServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rs, err := h.roomService.AttachService(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rs))
}

// UpdateRoomService updates the price or quantity of an attached service
// @Summary      Update room service
// @Tags         rooms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id         path      string                            true  "Room ID"
// @Param        serviceId  path      string                            true  "Service ID"
// @Param        payload    body      service.UpdateRoomServiceRequest  true  "Update Payload"
// @Success      200        {object}  response.Response{data=service.RoomServiceResponse}
// @Failure      400        {object}  response.Response
// @Router       /api/rooms/{id}/services/{serviceId} [put]
func (h *RoomHandler) UpdateRoomService(c *gin.Context) {
	var req service.UpdateRoomServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rs, err := h.roomService.UpdateService(c.Request.Context(), c.Param("id"), c.Param("serviceId"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rs))
}

// DetachService removes a service from a room
// @Summary      Detach service from room
// @Tags         rooms
// @Security     BearerAuth
// @Produce      json
// @Param        id         path      string  true  "Room ID"
// @Param        serviceId  path      string  true  "Service ID"
// @Success      200        {object}  response.Response
// @Failure      400        {object}  response.Response
// @Router       /api/rooms/{id}/services/{serviceId} [delete]
func (h *RoomHandler) DetachService(c *gin.Context) {
	if err := h.roomService.DetachService(c.Request.Context(), c.Param("id"), c.Param("serviceId")); err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Service detached successfully"))
}

// PreviewInvoice computes a would-be invoice without persisting anything
// @Summary      Preview invoice
// @Description  Computes utility and service costs for proposed meter readings and reports blocking issues. Nothing is persisted.
// @Tags         rooms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Room ID"
// @Param        payload  body      service.PreviewRequest  true  "Proposed readings"
// @Success      200      {object}  response.Response{data=service.PreviewResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/rooms/{id}/invoice-preview [post]
func (h *RoomHandler) PreviewInvoice(c *gin.Context) {
	var req service.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	preview, err := h.previewService.Preview(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, preview))
}

// CreateInvoice creates an invoice for a room from confirmed readings
// @Summary      Create invoice for room
// @Description  Validates readings, advances the room meters, persists the invoice and notifies the tenant. Returns 201 with notification outcome even when the e-mail fails.
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Room ID"
// @Param        payload  body      service.CreateInvoiceRequest  true  "Confirmed readings"
// @Success      201      {object}  response.Response{data=service.InvoiceMutationResult}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/rooms/{id}/invoices [post]
func (h *RoomHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	actorID, _ := userID.(string)

	result, err := h.invoiceService.Create(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}
