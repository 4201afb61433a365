package analytics

import (
	"math"
	"sort"
	"time"

	"fare-insight-api/pkg/models"
)

const (
	DefaultRecentWindowDays = 7
	DefaultPriorWindowDays  = 7
	DefaultThresholdPct     = 10.0
)

// AlertOptions configures PriceAlerts.
type AlertOptions struct {
	RecentWindowDays int     // 直近ウィンドウの日数
	PriorWindowDays  int     // 比較対象ウィンドウの日数
	ThresholdPct     float64 // アラートを出す変化率（%）の下限
}

// DefaultAlertOptions returns the week-over-week, 10% configuration.
func DefaultAlertOptions() AlertOptions {
	return AlertOptions{
		RecentWindowDays: DefaultRecentWindowDays,
		PriorWindowDays:  DefaultPriorWindowDays,
		ThresholdPct:     DefaultThresholdPct,
	}
}

// WithDefaults replaces non-positive windows and negative or NaN thresholds with the defaults.
func (o AlertOptions) WithDefaults() AlertOptions {
	if o.RecentWindowDays <= 0 {
		o.RecentWindowDays = DefaultRecentWindowDays
	}
	if o.PriorWindowDays <= 0 {
		o.PriorWindowDays = DefaultPriorWindowDays
	}
	if o.ThresholdPct < 0 || math.IsNaN(o.ThresholdPct) {
		o.ThresholdPct = DefaultThresholdPct
	}
	return o
}

// PriceAlerts compares average prices per route across two adjacent departure-date windows.
//
// Windows are whole UTC days counted back from the day of now:
// recent = [today-recent, today] and prior = [today-recent-prior, today-recent).
// A route produces an alert only when it appears in both windows, its prior average is
// positive, and the unrounded percentage change reaches the threshold.
// Alerts are ordered by absolute reported change descending, then route ascending.
func PriceAlerts(records []models.FlightRecord, now time.Time, opts AlertOptions) ([]models.PriceAlert, error) {
	opts = opts.WithDefaults()

	today := startOfDay(now)
	recentStart := today.AddDate(0, 0, -opts.RecentWindowDays)
	priorStart := recentStart.AddDate(0, 0, -opts.PriorWindowDays)

	recent := make(map[string]*priceAccumulator)
	prior := make(map[string]*priceAccumulator)

	for i, r := range records {
		if err := requireString(i, "route", r.Route); err != nil {
			return nil, err
		}
		if err := requireString(i, "departure_date", r.DepartureDate); err != nil {
			return nil, err
		}
		day, ok := parseDate(r.DepartureDate)
		if !ok {
			continue
		}

		var window map[string]*priceAccumulator
		switch {
		case !day.Before(recentStart) && !day.After(today):
			window = recent
		case !day.Before(priorStart) && day.Before(recentStart):
			window = prior
		default:
			continue
		}

		acc, exists := window[r.Route]
		if !exists {
			acc = &priceAccumulator{}
			window[r.Route] = acc
		}
		acc.add(r.Price)
	}

	alerts := make([]models.PriceAlert, 0)
	for route, recentAcc := range recent {
		priorAcc, ok := prior[route]
		if !ok {
			continue
		}
		priorAvg := priorAcc.mean()
		if priorAvg <= 0 {
			continue
		}
		recentAvg := recentAcc.mean()

		change := (recentAvg - priorAvg) / priorAvg * 100
		if math.Abs(change) < opts.ThresholdPct {
			continue
		}

		alertType := models.AlertPriceDecrease
		if change > 0 {
			alertType = models.AlertPriceIncrease
		}
		alerts = append(alerts, models.PriceAlert{
			Route:            route,
			PriorAvgPrice:    round2(priorAvg),
			RecentAvgPrice:   round2(recentAvg),
			PercentageChange: round2(change),
			AlertType:        alertType,
		})
	}

	sort.Slice(alerts, func(i, j int) bool {
		ai, aj := math.Abs(alerts[i].PercentageChange), math.Abs(alerts[j].PercentageChange)
		if ai != aj {
			return ai > aj
		}
		return alerts[i].Route < alerts[j].Route
	})
	return alerts, nil
}
