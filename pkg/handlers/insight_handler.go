package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fare-insight-api/pkg/logger"
	"fare-insight-api/pkg/services"
)

// InsightHandler 市場インサイトAPIハンドラ
type InsightHandler struct {
	service *services.InsightService
	logger  logger.Logger
}

// NewInsightHandler 新しいInsightHandlerを作成
func NewInsightHandler(service *services.InsightService, log logger.Logger) *InsightHandler {
	return &InsightHandler{service: service, logger: log}
}

// GenerateInsights 直近データからインサイトを生成して保存します。
func (h *InsightHandler) GenerateInsights(c *gin.Context) {
	insights, err := h.service.Generate(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(insights), "data": insights})
}

// GetInsights 種類ごとの最新インサイトを返します。
func (h *InsightHandler) GetInsights(c *gin.Context) {
	insights, err := h.service.LatestInsights(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": insights})
}
