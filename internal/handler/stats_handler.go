package handler

import (
	"net/http"
	"strconv"
	"time"

	"bhms-backend/internal/middleware"
	"bhms-backend/internal/service"
	"bhms-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService service.StatsService
}

func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) RegisterRoutes(router *gin.RouterGroup) {
	stats := router.Group("/api/statistics", middleware.RequireStaff())
	{
		stats.GET("/revenue", h.GetRevenue)
		stats.GET("/occupancy", h.GetOccupancy)
	}
}

// GetRevenue returns confirmed revenue per billing period
// @Summary      Get revenue statistics
// @Description  Returns paid invoice totals grouped by billing month over the requested range. Defaults to the last 12 months.
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Param        from_year   query     int  false  "Range start year"
// @Param        from_month  query     int  false  "Range start month (1-12)"
// @Param        to_year     query     int  false  "Range end year"
// @Param        to_month    query     int  false  "Range end month (1-12)"
// @Success      200         {object}  response.Response{data=[]service.RevenueDataPoint}
// @Failure      500         {object}  response.Response
// @Router       /api/statistics/revenue [get]
func (h *StatsHandler) GetRevenue(c *gin.Context) {
	now := time.Now()
	from := now.AddDate(-1, 1, 0)

	fromYear, _ := strconv.Atoi(c.DefaultQuery("from_year", strconv.Itoa(from.Year())))
	fromMonth, _ := strconv.Atoi(c.DefaultQuery("from_month", strconv.Itoa(int(from.Month()))))
	toYear, _ := strconv.Atoi(c.DefaultQuery("to_year", strconv.Itoa(now.Year())))
	toMonth, _ := strconv.Atoi(c.DefaultQuery("to_month", strconv.Itoa(int(now.Month()))))

	data, err := h.statsService.Revenue(c.Request.Context(), fromYear, fromMonth, toYear, toMonth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, data))
}

// GetOccupancy returns the current room occupancy snapshot
// @Summary      Get occupancy statistics
// @Description  Returns room counts by status and the occupancy rate over lettable rooms
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.OccupancyResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/statistics/occupancy [get]
func (h *StatsHandler) GetOccupancy(c *gin.Context) {
	data, err := h.statsService.Occupancy(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, data))
}
