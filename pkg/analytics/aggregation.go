// Package analytics turns flight records into ranked and grouped statistical summaries.
// Every function is pure: it reads only its arguments and returns freshly built values.
package analytics

import (
	"sort"
	"time"

	"fare-insight-api/pkg/models"
)

const (
	// DefaultTopRoutes bounds route summaries so they fit in a single prompt.
	DefaultTopRoutes = 20
	// DefaultTrendDays is the look-back used by PriceTrendsByDate.
	DefaultTrendDays = 30
)

type routeBucket struct {
	origin      string
	destination string
	prices      priceAccumulator
	airlines    stringSet
	months      stringSet
}

// GroupByRoute ranks routes by booking count and returns at most limit summaries.
// Ties are broken by route label ascending. limit <= 0 selects DefaultTopRoutes.
func GroupByRoute(records []models.FlightRecord, limit int) ([]models.RouteSummary, error) {
	if limit <= 0 {
		limit = DefaultTopRoutes
	}

	buckets := make(map[string]*routeBucket)
	for i, r := range records {
		if err := requireString(i, "route", r.Route); err != nil {
			return nil, err
		}
		b, ok := buckets[r.Route]
		if !ok {
			b = &routeBucket{airlines: stringSet{}, months: stringSet{}}
			buckets[r.Route] = b
		}
		if b.origin == "" {
			b.origin = r.Origin
		}
		if b.destination == "" {
			b.destination = r.Destination
		}
		b.prices.add(r.Price)
		b.airlines.add(r.Airline)
		if month, ok := monthKey(r.DepartureDate); ok {
			b.months.add(month)
		}
	}

	summaries := make([]models.RouteSummary, 0, len(buckets))
	for route, b := range buckets {
		airlines := b.airlines.sorted()
		summaries = append(summaries, models.RouteSummary{
			Route:        route,
			Origin:       b.origin,
			Destination:  b.destination,
			BookingCount: b.prices.count,
			AvgPrice:     round2(b.prices.mean()),
			MinPrice:     b.prices.min,
			MaxPrice:     b.prices.max,
			AirlineCount: len(airlines),
			Airlines:     airlines,
			Months:       b.months.sorted(),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].BookingCount != summaries[j].BookingCount {
			return summaries[i].BookingCount > summaries[j].BookingCount
		}
		return summaries[i].Route < summaries[j].Route
	})

	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

type routeMonthKey struct {
	route string
	month string
}

// GroupByRouteMonth returns price statistics for every observed (route, month) pair,
// ordered by route then month. Records whose departure date has no valid
// "YYYY-MM" prefix are skipped.
func GroupByRouteMonth(records []models.FlightRecord) ([]models.PriceTrendPoint, error) {
	buckets := make(map[routeMonthKey]*priceAccumulator)
	for i, r := range records {
		if err := requireString(i, "route", r.Route); err != nil {
			return nil, err
		}
		if err := requireString(i, "departure_date", r.DepartureDate); err != nil {
			return nil, err
		}
		month, ok := monthKey(r.DepartureDate)
		if !ok {
			continue
		}
		key := routeMonthKey{route: r.Route, month: month}
		acc, exists := buckets[key]
		if !exists {
			acc = &priceAccumulator{}
			buckets[key] = acc
		}
		acc.add(r.Price)
	}

	points := make([]models.PriceTrendPoint, 0, len(buckets))
	for key, acc := range buckets {
		points = append(points, models.PriceTrendPoint{
			Route:       key.route,
			Month:       key.month,
			AvgPrice:    round2(acc.mean()),
			MinPrice:    acc.min,
			MaxPrice:    acc.max,
			SampleCount: acc.count,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Route != points[j].Route {
			return points[i].Route < points[j].Route
		}
		return points[i].Month < points[j].Month
	})
	return points, nil
}

type airlineBucket struct {
	prices priceAccumulator
	routes stringSet
}

// airlineStats builds the sorted per-airline breakdown shared by GroupByAirline
// and DemandSummary. total is the booking count market share is measured against.
func airlineStats(buckets map[string]*airlineBucket, total int) []models.AirlineStats {
	stats := make([]models.AirlineStats, 0, len(buckets))
	for airline, b := range buckets {
		routes := b.routes.sorted()
		stats = append(stats, models.AirlineStats{
			Airline:      airline,
			BookingCount: b.prices.count,
			TotalRevenue: round2(b.prices.sum),
			AvgPrice:     round2(b.prices.mean()),
			MinPrice:     b.prices.min,
			MaxPrice:     b.prices.max,
			MarketShare:  round2(percentOf(b.prices.count, total)),
			RouteCount:   len(routes),
			Routes:       routes,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].BookingCount != stats[j].BookingCount {
			return stats[i].BookingCount > stats[j].BookingCount
		}
		return stats[i].Airline < stats[j].Airline
	})
	return stats
}

func addToAirline(buckets map[string]*airlineBucket, r models.FlightRecord) {
	b, ok := buckets[r.Airline]
	if !ok {
		b = &airlineBucket{routes: stringSet{}}
		buckets[r.Airline] = b
	}
	b.prices.add(r.Price)
	b.routes.add(r.Route)
}

// GroupByAirline returns booking, revenue and route coverage per airline,
// ordered by booking count descending then airline name.
func GroupByAirline(records []models.FlightRecord) ([]models.AirlineStats, error) {
	buckets := make(map[string]*airlineBucket)
	for i, r := range records {
		if err := requireString(i, "airline", r.Airline); err != nil {
			return nil, err
		}
		if err := requireString(i, "route", r.Route); err != nil {
			return nil, err
		}
		addToAirline(buckets, r)
	}
	return airlineStats(buckets, len(records)), nil
}

// GroupByMonth returns booking count and average price per departure month,
// ordered ascending by "YYYY-MM".
func GroupByMonth(records []models.FlightRecord) ([]models.MonthlyDemand, error) {
	buckets := make(map[string]*priceAccumulator)
	for i, r := range records {
		if err := requireString(i, "departure_date", r.DepartureDate); err != nil {
			return nil, err
		}
		month, ok := monthKey(r.DepartureDate)
		if !ok {
			continue
		}
		acc, exists := buckets[month]
		if !exists {
			acc = &priceAccumulator{}
			buckets[month] = acc
		}
		acc.add(r.Price)
	}

	months := make([]models.MonthlyDemand, 0, len(buckets))
	for month, acc := range buckets {
		months = append(months, models.MonthlyDemand{
			Month:        month,
			BookingCount: acc.count,
			AvgPrice:     round2(acc.mean()),
		})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months, nil
}

// PriceTrendsByDate returns a daily price series for departures on or after
// the UTC day that lies days before now. days <= 0 selects DefaultTrendDays.
func PriceTrendsByDate(records []models.FlightRecord, now time.Time, days int) ([]models.PriceTrendPoint, error) {
	if days <= 0 {
		days = DefaultTrendDays
	}
	cutoff := startOfDay(now).AddDate(0, 0, -days)

	buckets := make(map[string]*priceAccumulator)
	for i, r := range records {
		if err := requireString(i, "departure_date", r.DepartureDate); err != nil {
			return nil, err
		}
		day, ok := parseDate(r.DepartureDate)
		if !ok || day.Before(cutoff) {
			continue
		}
		key := day.Format(dateLayout)
		acc, exists := buckets[key]
		if !exists {
			acc = &priceAccumulator{}
			buckets[key] = acc
		}
		acc.add(r.Price)
	}

	points := make([]models.PriceTrendPoint, 0, len(buckets))
	for date, acc := range buckets {
		points = append(points, models.PriceTrendPoint{
			Date:        date,
			AvgPrice:    round2(acc.mean()),
			MinPrice:    acc.min,
			MaxPrice:    acc.max,
			SampleCount: acc.count,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}
