package handler

import (
	"net/http"

	"bhms-backend/internal/middleware"
	"bhms-backend/internal/service"
	"bhms-backend/pkg/pagination"
	"bhms-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TenantHandler struct {
	tenantService service.TenantService
}

func NewTenantHandler(tenantService service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

func (h *TenantHandler) RegisterRoutes(router *gin.RouterGroup) {
	tenants := router.Group("/api/tenants", middleware.RequireStaff())
	{
		tenants.POST("", h.CreateTenant)
		tenants.GET("", h.ListTenants)
		tenants.GET("/:id", h.GetTenant)
		tenants.PUT("/:id", h.UpdateTenant)
		tenants.DELETE("/:id", h.DeleteTenant)
	}

	contracts := router.Group("/api/contracts", middleware.RequireStaff())
	{
		contracts.POST("", h.CreateContract)
		contracts.PUT("/:id/end", h.EndContract)
	}

	// Contracts are also reachable per room
	router.GET("/api/rooms/:id/contracts", middleware.RequireStaff(), h.ListRoomContracts)
}

// CreateTenant registers a new tenant
// @Summary      Create tenant
// @Tags         tenants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTenantRequest  true  "Create Tenant Payload"
// @Success      201      {object}  response.Response{data=service.TenantResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tenants [post]
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	var req service.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	actorID, _ := userID.(string)

	tenant, err := h.tenantService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tenant))
}

// ListTenants returns a paginated list of tenants
// @Summary      List tenants
// @Tags         tenants
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Search by name, email or phone"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/tenants [get]
func (h *TenantHandler) ListTenants(c *gin.Context) {
	p := pagination.Parse(c)

	tenants, total, err := h.tenantService.List(c.Request.Context(), c.Query("search"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"total":   total,
		"page":    p.Page,
		"limit":   p.Limit,
	}))
}

// GetTenant returns a single tenant
// @Summary      Get tenant by ID
// @Tags         tenants
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Tenant ID"
// @Success      200  {object}  response.Response{data=service.TenantResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/tenants/{id} [get]
func (h *TenantHandler) GetTenant(c *gin.Context) {
	tenant, err := h.tenantService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tenant))
}

// UpdateTenant updates tenant details
// @Summary      Update tenant
// @Tags         tenants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Tenant ID"
// @Param        payload  body      service.UpdateTenantRequest  true  "Update Tenant Payload"
// @Success      200      {object}  response.Response{data=service.TenantResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tenants/{id} [put]
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	var req service.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	actorID, _ := userID.(string)

	tenant, err := h.tenantService.Update(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tenant))
}

// DeleteTenant removes a tenant
// @Summary      Delete tenant
// @Tags         tenants
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Tenant ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/tenants/{id} [delete]
func (h *TenantHandler) DeleteTenant(c *gin.Context) {
	if err := h.tenantService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Tenant deleted successfully"))
}

// CreateContract places a tenant in a room
// @Summary      Create contract
// @Description  Creates an active rental contract and marks the room OCCUPIED
// @Tags         contracts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateContractRequest  true  "Create Contract Payload"
// @Success      201      {object}  response.Response{data=service.ContractResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/contracts [post]
func (h *TenantHandler) CreateContract(c *gin.Context) {
	var req service.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	actorID, _ := userID.(string)

	contract, err := h.tenantService.CreateContract(c.Request.Context(), actorID, req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, contract))
}

// EndContract terminates an active contract
// @Summary      End contract
// @Description  Ends a contract and frees the room when no other active contracts remain
// @Tags         contracts
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Contract ID"
// @Success      200  {object}  response.Response{data=service.ContractResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/contracts/{id}/end [put]
func (h *TenantHandler) EndContract(c *gin.Context) {
	userID, _ := c.Get("userID")
	actorID, _ := userID.(string)

	contract, err := h.tenantService.EndContract(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// ListRoomContracts lists a room's contracts
// @Summary      List room contracts
// @Tags         contracts
// @Security     BearerAuth
// @Produce      json
// @Param        id      path      string  true   "Room ID"
// @Param        status  query     string  false  "Filter by contract status (ACTIVE, ENDED)"
// @Success      200     {object}  response.Response{data=[]service.ContractResponse}
// @Failure      500     {object}  response.Response
// @Router       /api/rooms/{id}/contracts [get]
func (h *TenantHandler) ListRoomContracts(c *gin.Context) {
	contracts, err := h.tenantService.ListContractsByRoom(c.Request.Context(), c.Param("id"), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contracts))
}
