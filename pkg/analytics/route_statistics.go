package analytics

import (
	"fare-insight-api/pkg/models"
)

// RouteStatistics computes detailed statistics for records whose route equals route exactly.
// The boolean is false when no record matches; that is a normal result, not an error.
// Oldest and latest records are found by comparing ScrapedAt, never by input position.
func RouteStatistics(records []models.FlightRecord, route string) (models.RouteStatistics, bool, error) {
	if route == "" {
		return models.RouteStatistics{}, false, nil
	}

	var (
		prices   []float64
		acc      priceAccumulator
		airlines = stringSet{}
		oldest   models.FlightRecord
		latest   models.FlightRecord
	)

	for i, r := range records {
		if r.Route != route {
			continue
		}
		if err := requireString(i, "airline", r.Airline); err != nil {
			return models.RouteStatistics{}, false, err
		}
		if r.ScrapedAt.IsZero() {
			return models.RouteStatistics{}, false, &ValidationError{Index: i, Field: "scraped_at"}
		}

		if acc.count == 0 || r.ScrapedAt.Before(oldest.ScrapedAt) {
			oldest = r
		}
		if acc.count == 0 || r.ScrapedAt.After(latest.ScrapedAt) {
			latest = r
		}
		acc.add(r.Price)
		prices = append(prices, r.Price)
		airlines.add(r.Airline)
	}

	if acc.count == 0 {
		return models.RouteStatistics{}, false, nil
	}

	names := airlines.sorted()
	return models.RouteStatistics{
		Route:         route,
		TotalBookings: acc.count,
		AvgPrice:      round2(acc.mean()),
		MinPrice:      acc.min,
		MaxPrice:      acc.max,
		PriceStd:      round2(sampleStdDev(prices)),
		Airlines:      names,
		AirlineCount:  len(names),
		LatestPrice:   latest.Price,
		OldestRecord:  oldest.ScrapedAt.UTC().Format(dateLayout),
		LatestRecord:  latest.ScrapedAt.UTC().Format(dateLayout),
	}, true, nil
}
