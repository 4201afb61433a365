package services

import (
	"context"
	"time"

	"fare-insight-api/pkg/models"
)

// FlightStore is the persistence the services need for flight records.
// *repository.FlightRepository satisfies it.
type FlightStore interface {
	InsertFlights(ctx context.Context, records []models.FlightRecord) (int, error)
	ListFlights(ctx context.Context, filter models.FlightFilter) ([]models.FlightRecord, error)
	CountFlights(ctx context.Context, since time.Time) (int, error)
}

// InsightStore persists generated market insights.
type InsightStore interface {
	SaveInsights(ctx context.Context, insights []models.MarketInsight) error
	LatestByType(ctx context.Context, kind models.InsightKind) (models.MarketInsight, bool, error)
	Latest(ctx context.Context, limit int) ([]models.MarketInsight, error)
}

// ScrapingLogStore persists acquisition runs.
type ScrapingLogStore interface {
	SaveLog(ctx context.Context, entry models.ScrapingLog) (int64, error)
	RecentLogs(ctx context.Context, limit int) ([]models.ScrapingLog, error)
}
