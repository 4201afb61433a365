package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// round2 rounds v to 2 decimal places using round-half-to-even on the shortest
// decimal representation of v, so 2.675 becomes 2.68 and 0.125 becomes 0.12.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).RoundBank(2).InexactFloat64()
}

// ratio returns num/den, or 0 when den is zero.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// percentOf returns part/total*100, or 0 when total is zero.
func percentOf(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// sampleStdDev returns the Bessel-corrected standard deviation, 0 for fewer than 2 values.
func sampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(n-1))
}

// monthKey extracts the "YYYY-MM" prefix of an ISO date.
func monthKey(date string) (string, bool) {
	if len(date) < 7 || date[4] != '-' {
		return "", false
	}
	for _, i := range []int{0, 1, 2, 3, 5, 6} {
		if date[i] < '0' || date[i] > '9' {
			return "", false
		}
	}
	month := int(date[5]-'0')*10 + int(date[6]-'0')
	if month < 1 || month > 12 {
		return "", false
	}
	return date[:7], true
}

// parseDate parses the "YYYY-MM-DD" prefix of date as a UTC calendar day.
func parseDate(date string) (time.Time, bool) {
	if len(date) < len(dateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, date[:len(dateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// startOfDay truncates t to midnight UTC of its UTC calendar day.
func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// priceAccumulator tracks count/sum/min/max in full precision.
type priceAccumulator struct {
	count int
	sum   float64
	min   float64
	max   float64
}

func (a *priceAccumulator) add(price float64) {
	if a.count == 0 || price < a.min {
		a.min = price
	}
	if a.count == 0 || price > a.max {
		a.max = price
	}
	a.count++
	a.sum += price
}

func (a *priceAccumulator) mean() float64 {
	return ratio(a.sum, float64(a.count))
}

// stringSet collects distinct strings and materializes them sorted.
type stringSet map[string]struct{}

func (s stringSet) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
