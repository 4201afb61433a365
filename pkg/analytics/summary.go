package analytics

import (
	"encoding/json"
	"fmt"

	"fare-insight-api/pkg/models"
)

// BuildRouteSummary returns the top DefaultTopRoutes routes for insight generation.
func BuildRouteSummary(records []models.FlightRecord) ([]models.RouteSummary, error) {
	return GroupByRoute(records, DefaultTopRoutes)
}

// BuildPriceSummary returns the per-route, per-month price series.
func BuildPriceSummary(records []models.FlightRecord) ([]models.PriceTrendPoint, error) {
	return GroupByRouteMonth(records)
}

// BuildDemandSummary returns the demand breakdown.
func BuildDemandSummary(records []models.FlightRecord) (models.DemandSummary, error) {
	return DemandSummary(records)
}

// BuildInsightPayload renders the summary for kind as compact JSON suitable for a prompt.
func BuildInsightPayload(kind models.InsightKind, records []models.FlightRecord) (string, error) {
	var (
		summary any
		err     error
	)
	switch kind {
	case models.InsightPopularRoutes:
		summary, err = BuildRouteSummary(records)
	case models.InsightPriceTrends:
		summary, err = BuildPriceSummary(records)
	case models.InsightDemandAnalysis:
		summary, err = BuildDemandSummary(records)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownInsightKind, kind)
	}
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("summary encoding failed: %w", err)
	}
	return string(payload), nil
}
