package server

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	config "fare-insight-api/configs"
	"fare-insight-api/pkg/analytics"
	"fare-insight-api/pkg/azure"
	"fare-insight-api/pkg/logger"
	"fare-insight-api/pkg/metrics"
	"fare-insight-api/pkg/repository"
	"fare-insight-api/pkg/services"
)

const metricsNamespace = "fare_insight"

// Services はアプリケーションで使う全サービスをまとめたものです。
type Services struct {
	Flights    *repository.FlightRepository
	Fares      *services.FareAnalyticsService
	Insights   *services.InsightService
	Scraper    *services.ScrapeService
	Importer   *services.ImportService
	Sampler    *services.SampleDataService
	Monitoring *services.MonitoringService
}

// NewServices はdbの上に全サービスを組み立てます。
func NewServices(cfg *config.Config, db *sql.DB, log logger.Logger, m *metrics.Metrics) *Services {
	flights := repository.NewFlightRepository(db)
	insights := repository.NewInsightRepository(db)
	scrapingLogs := repository.NewScrapingLogRepository(db)

	alertOpts := analytics.AlertOptions{
		RecentWindowDays: cfg.RecentWindowDays,
		PriorWindowDays:  cfg.PriorWindowDays,
		ThresholdPct:     cfg.AlertThresholdPct,
	}

	client := azure.NewOpenAIClient(
		cfg.AzureOpenAIEndpoint,
		cfg.AzureOpenAIAPIKey,
		cfg.AzureOpenAIAPIVersion,
		cfg.AzureOpenAIDeploymentName,
		cfg.AzureOpenAIRequestsPerMinute,
	)
	if !client.IsConfigured() {
		log.Warn("Azure OpenAI is not configured; insight generation will store error documents")
	}

	sampler := services.NewSampleDataService(time.Now().UnixNano())

	return &Services{
		Flights:    flights,
		Fares:      services.NewFareAnalyticsService(flights, insights, cfg.TopRoutesLimit, alertOpts),
		Insights:   services.NewInsightService(flights, insights, services.NewAzureOpenAIService(client), log, m, cfg.InsightWindowDays),
		Scraper:    services.NewScrapeService(flights, scrapingLogs, sampler, log, m),
		Importer:   services.NewImportService(flights, log, m),
		Sampler:    sampler,
		Monitoring: services.NewMonitoringService(log, m),
	}
}

// App はHTTPサーバーに必要な依存関係一式です。
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Logger   logger.Logger
	Registry *prometheus.Registry
	Services *Services
}

// NewApp はデータベースを開き、メトリクスとサービスを初期化します。
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	db, err := repository.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DatabasePath, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(metricsNamespace, reg)

	return &App{
		Config:   cfg,
		DB:       db,
		Logger:   log,
		Registry: reg,
		Services: NewServices(cfg, db, log, m),
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}
