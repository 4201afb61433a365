package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fare-insight-api/pkg/analytics"
	"fare-insight-api/pkg/logger"
	"fare-insight-api/pkg/services"
)

// errorStatus はサービス層のエラーをHTTPステータスに対応付けます。
func errorStatus(err error) int {
	var verr *analytics.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, analytics.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrUnknownChartType),
		errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, services.ErrMissingColumns),
		errors.Is(err, services.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNoRecentData):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError はエラーレスポンスを返します。5xxの場合はログに記録します。
func respondError(c *gin.Context, log logger.Logger, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

// queryInt は整数のクエリパラメータを読み取ります。未指定ならfallbackを返します。
func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// queryFloat は数値のクエリパラメータを読み取ります。未指定ならfallbackを返します。
func queryFloat(c *gin.Context, key string, fallback float64) (float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
