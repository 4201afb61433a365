package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fare-insight-api/pkg/handlers"
)

// authMiddleware はX-API-KEYヘッダーを検証します。apiKeyが空の場合は認証を行いません。
func authMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// NewRouter はすべてのエンドポイントを登録したGinエンジンを返します。
func NewRouter(app *App) *gin.Engine {
	if app.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := app.Services
	fareHandler := handlers.NewFareHandler(svc.Fares, app.Logger)
	insightHandler := handlers.NewInsightHandler(svc.Insights, app.Logger)
	ingestHandler := handlers.NewIngestHandler(svc.Scraper, svc.Importer, app.Logger)
	adminHandler := handlers.NewAdminHandler(app.Config, app.Logger)
	monitoringHandler := handlers.NewMonitoringHandler(svc.Monitoring)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(svc.Monitoring.LoggingMiddleware())
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders("X-API-KEY")
	r.Use(cors.New(corsConfig))
	r.Use(adminHandler.MaintenanceMiddleware())

	r.GET("/health", adminHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware(app.Config.APIKey))
	{
		v1.GET("/dashboard", fareHandler.GetDashboard)
		v1.GET("/chart-data/:chartType", fareHandler.GetChartData)
		v1.GET("/flights", fareHandler.ListFlights)
		v1.POST("/flights/import", ingestHandler.ImportFlights)
		v1.GET("/routes/statistics", fareHandler.GetRouteStatistics)
		v1.GET("/alerts", fareHandler.GetPriceAlerts)
		v1.GET("/demand/summary", fareHandler.GetDemandSummary)

		v1.POST("/scrape", ingestHandler.Scrape)
		v1.GET("/scrape/logs", ingestHandler.GetScrapingLogs)

		v1.POST("/insights/generate", insightHandler.GenerateInsights)
		v1.GET("/insights", insightHandler.GetInsights)

		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// モニタリングAPI
		v1.GET("/monitoring/logs", monitoringHandler.GetLogs)
	}

	return r
}
