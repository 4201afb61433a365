package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"fare-insight-api/pkg/logger"
	"fare-insight-api/pkg/services"
)

const maxUploadBytes = 10 << 20

// IngestHandler データ取得・取り込みAPIハンドラ
type IngestHandler struct {
	scraper  *services.ScrapeService
	importer *services.ImportService
	logger   logger.Logger
}

// NewIngestHandler 新しいIngestHandlerを作成
func NewIngestHandler(scraper *services.ScrapeService, importer *services.ImportService, log logger.Logger) *IngestHandler {
	return &IngestHandler{scraper: scraper, importer: importer, logger: log}
}

// ScrapeRequest は取得対象ソースの指定です。省略時はデフォルトソースを使用します。
type ScrapeRequest struct {
	Sources []string `json:"sources"`
}

// Scrape データ取得を実行します。
func (h *IngestHandler) Scrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.scraper.Run(c.Request.Context(), req.Sources)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// GetScrapingLogs 最近の取得ログを返します。
func (h *IngestHandler) GetScrapingLogs(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 20)
	if !ok || limit <= 0 {
		badRequest(c, "limit must be a positive integer")
		return
	}
	logs, err := h.scraper.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": logs})
}

// ImportFlights アップロードされた.xlsx/.csvファイルを取り込みます。
func (h *IngestHandler) ImportFlights(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   fmt.Sprintf("file exceeds the %d MB upload limit", maxUploadBytes>>20),
			})
			return
		}
		badRequest(c, "file is required")
		return
	}
	defer file.Close()

	result, err := h.importer.Import(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}
