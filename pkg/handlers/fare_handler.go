package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"fare-insight-api/pkg/logger"
	"fare-insight-api/pkg/models"
	"fare-insight-api/pkg/services"
)

const (
	defaultFlightLimit = 100
	maxFlightLimit     = 1000
)

// FareHandler 運賃データの集計APIハンドラ
type FareHandler struct {
	service *services.FareAnalyticsService
	logger  logger.Logger
}

// NewFareHandler 新しいFareHandlerを作成
func NewFareHandler(service *services.FareAnalyticsService, log logger.Logger) *FareHandler {
	return &FareHandler{service: service, logger: log}
}

// GetDashboard ダッシュボードの概要を返します。
func (h *FareHandler) GetDashboard(c *gin.Context) {
	overview, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": overview})
}

// GetChartData チャート用データを返します。
func (h *FareHandler) GetChartData(c *gin.Context) {
	chartType := c.Param("chartType")
	data, err := h.service.ChartData(c.Request.Context(), chartType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chart_type": chartType, "data": data})
}

// ListFlights 条件に一致するフライトを出発日の新しい順に返します。
func (h *FareHandler) ListFlights(c *gin.Context) {
	var filter models.FlightFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "invalid filter: "+err.Error())
		return
	}
	if filter.MinPrice < 0 || filter.MaxPrice < 0 {
		badRequest(c, "prices must not be negative")
		return
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultFlightLimit
	}
	if filter.Limit > maxFlightLimit {
		filter.Limit = maxFlightLimit
	}

	flights, err := h.service.Flights(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(flights), "data": flights})
}

// GetRouteStatistics 指定ルートの詳細統計を返します。
func (h *FareHandler) GetRouteStatistics(c *gin.Context) {
	route := c.Query("route")
	if route == "" {
		badRequest(c, "route is required")
		return
	}

	stats, found, err := h.service.RouteStatistics(c.Request.Context(), route)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No data found for route: " + route})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// GetPriceAlerts 価格変動アラートを返します。
func (h *FareHandler) GetPriceAlerts(c *gin.Context) {
	opts := h.service.AlertOptions()

	threshold, ok := queryFloat(c, "threshold", opts.ThresholdPct)
	if !ok || threshold < 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		badRequest(c, "threshold must be a non-negative number")
		return
	}
	recent, ok := queryInt(c, "recent_days", opts.RecentWindowDays)
	if !ok || recent <= 0 {
		badRequest(c, "recent_days must be a positive integer")
		return
	}
	prior, ok := queryInt(c, "prior_days", opts.PriorWindowDays)
	if !ok || prior <= 0 {
		badRequest(c, "prior_days must be a positive integer")
		return
	}
	opts.ThresholdPct = threshold
	opts.RecentWindowDays = recent
	opts.PriorWindowDays = prior

	alerts, err := h.service.PriceAlerts(c.Request.Context(), opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(alerts), "data": alerts})
}

// GetDemandSummary 需要サマリーを返します。
func (h *FareHandler) GetDemandSummary(c *gin.Context) {
	summary, err := h.service.DemandSummary(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}
