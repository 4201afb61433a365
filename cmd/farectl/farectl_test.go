package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fare-insight-api/pkg/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedAndSummaries(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := run(t, "seed", "--db", db, "--count", "120", "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted 120 sample records")

	out, err = run(t, "summary", "--db", db, "--kind", "popular_routes")
	require.NoError(t, err)
	var routes []models.RouteSummary
	require.NoError(t, json.Unmarshal([]byte(out), &routes))
	require.NotEmpty(t, routes)
	total := 0
	for _, r := range routes {
		total += r.BookingCount
	}
	assert.Equal(t, 120, total)

	out, err = run(t, "summary", "--db", db, "--kind", "demand_analysis")
	require.NoError(t, err)
	var demand models.DemandSummary
	require.NoError(t, json.Unmarshal([]byte(out), &demand))
	assert.Equal(t, 120, demand.TotalBookings)

	_, err = run(t, "summary", "--db", db, "--kind", "weather")
	assert.Error(t, err)

	out, err = run(t, "route-stats", "--db", db, "--route", routes[0].Route)
	require.NoError(t, err)
	var stats models.RouteStatistics
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, routes[0].BookingCount, stats.TotalBookings)

	_, err = run(t, "route-stats", "--db", db, "--route", "NRT → HND")
	assert.Error(t, err)

	_, err = run(t, "alerts", "--db", db, "--threshold", "0")
	require.NoError(t, err)
}

func TestSeedReset(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	_, err := run(t, "seed", "--db", db, "--count", "10")
	require.NoError(t, err)
	_, err = run(t, "seed", "--db", db, "--count", "5", "--reset")
	require.NoError(t, err)

	out, err := run(t, "summary", "--db", db)
	require.NoError(t, err)
	var routes []models.RouteSummary
	require.NoError(t, json.Unmarshal([]byte(out), &routes))
	total := 0
	for _, r := range routes {
		total += r.BookingCount
	}
	assert.Equal(t, 5, total)

	_, err = run(t, "seed", "--db", db, "--count", "0")
	assert.Error(t, err)
}
