package analytics

import (
	"sort"

	"fare-insight-api/pkg/models"
)

type routeDemandBucket struct {
	count    int
	airlines stringSet
}

// DemandSummary builds the per-airline, per-route and per-month demand breakdown in one pass.
// Values are accumulated in full precision and rounded only when the summary is assembled.
func DemandSummary(records []models.FlightRecord) (models.DemandSummary, error) {
	airlines := make(map[string]*airlineBucket)
	routes := make(map[string]*routeDemandBucket)
	monthly := make(map[string]int)
	undated := 0

	for i, r := range records {
		if err := requireString(i, "airline", r.Airline); err != nil {
			return models.DemandSummary{}, err
		}
		if err := requireString(i, "route", r.Route); err != nil {
			return models.DemandSummary{}, err
		}
		if err := requireString(i, "departure_date", r.DepartureDate); err != nil {
			return models.DemandSummary{}, err
		}

		addToAirline(airlines, r)

		rb, ok := routes[r.Route]
		if !ok {
			rb = &routeDemandBucket{airlines: stringSet{}}
			routes[r.Route] = rb
		}
		rb.count++
		rb.airlines.add(r.Airline)

		if month, ok := monthKey(r.DepartureDate); ok {
			monthly[month]++
		} else {
			undated++
		}
	}

	total := len(records)

	routeDemand := make([]models.RouteDemand, 0, len(routes))
	for route, rb := range routes {
		routeDemand = append(routeDemand, models.RouteDemand{
			Route:        route,
			BookingCount: rb.count,
			MarketShare:  round2(percentOf(rb.count, total)),
			Airlines:     rb.airlines.sorted(),
		})
	}
	sort.Slice(routeDemand, func(i, j int) bool {
		if routeDemand[i].BookingCount != routeDemand[j].BookingCount {
			return routeDemand[i].BookingCount > routeDemand[j].BookingCount
		}
		return routeDemand[i].Route < routeDemand[j].Route
	})

	monthlyDemand := make([]models.MonthlyBookings, 0, len(monthly))
	for month, count := range monthly {
		monthlyDemand = append(monthlyDemand, models.MonthlyBookings{Month: month, BookingCount: count})
	}
	sort.Slice(monthlyDemand, func(i, j int) bool { return monthlyDemand[i].Month < monthlyDemand[j].Month })

	return models.DemandSummary{
		TotalBookings:   total,
		Airlines:        airlineStats(airlines, total),
		Routes:          routeDemand,
		MonthlyDemand:   monthlyDemand,
		UndatedBookings: undated,
	}, nil
}
