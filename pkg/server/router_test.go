package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "fare-insight-api/configs"
	"fare-insight-api/pkg/logger"
	"fare-insight-api/pkg/models"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:              "0",
		Environment:       "test",
		AdminUsername:     "admin",
		AdminPassword:     "s3cret",
		DatabasePath:      filepath.Join(t.TempDir(), "api.db"),
		TopRoutesLimit:    20,
		AlertThresholdPct: 10,
		RecentWindowDays:  7,
		PriorWindowDays:   7,
		InsightWindowDays: 30,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) (*App, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app, err := NewApp(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app, NewRouter(app)
}

func seed(t *testing.T, app *App, n int) {
	t.Helper()
	records := app.Services.Sampler.Generate(n, time.Now())
	_, err := app.Services.Flights.InsertFlights(context.Background(), records)
	require.NoError(t, err)
}

func do(r *gin.Engine, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestHealthAndMetrics(t *testing.T) {
	_, r := newTestApp(t, testConfig(t))

	w := do(r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	do(r, http.MethodGet, "/api/v1/dashboard", nil, nil)
	w = do(r, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fare_insight_http_requests_total")
}

func TestAPIKeyAuthentication(t *testing.T) {
	cfg := testConfig(t)
	cfg.APIKey = "key-123"
	_, r := newTestApp(t, cfg)

	w := do(r, http.MethodGet, "/api/v1/dashboard", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/v1/dashboard", nil, map[string]string{"X-API-KEY": "key-123"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMaintenanceMode(t *testing.T) {
	_, r := newTestApp(t, testConfig(t))
	jsonHeader := map[string]string{"Content-Type": "application/json"}

	w := do(r, http.MethodPost, "/api/v1/admin/maintenance/start", []byte(`{"username":"admin","password":"wrong"}`), jsonHeader)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/v1/admin/maintenance/start", []byte(`{"username":"admin"}`), jsonHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/admin/maintenance/start", []byte(`{"username":"admin","password":"s3cret"}`), jsonHeader)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/health", nil, nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/api/v1/dashboard", nil, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/admin/health-status", nil, nil).Code)

	w = do(r, http.MethodPost, "/api/v1/admin/maintenance/stop", []byte(`{"username":"admin","password":"s3cret"}`), jsonHeader)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", nil, nil).Code)
}

func TestFareEndpoints(t *testing.T) {
	app, r := newTestApp(t, testConfig(t))
	seed(t, app, 200)

	w := do(r, http.MethodGet, "/api/v1/dashboard", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overview models.DashboardOverview
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &overview))
	assert.Equal(t, 200, overview.TotalRecords)
	assert.LessOrEqual(t, len(overview.PopularRoutes), 10)
	assert.NotEmpty(t, overview.PopularRoutes)

	for _, chart := range []string{"price_trends", "popular_routes", "demand_by_month", "airline_performance"} {
		w = do(r, http.MethodGet, "/api/v1/chart-data/"+chart, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code, chart)
	}
	w = do(r, http.MethodGet, "/api/v1/chart-data/pie", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decode(t, w).Success)

	w = do(r, http.MethodGet, "/api/v1/flights?limit=5", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decode(t, w).Count)

	w = do(r, http.MethodGet, "/api/v1/flights?min_price=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/routes/statistics?route="+url.QueryEscape(overview.PopularRoutes[0].Route), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.RouteStatistics
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &stats))
	assert.Equal(t, overview.PopularRoutes[0].BookingCount, stats.TotalBookings)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/routes/statistics", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/routes/statistics?route=NRT", nil, nil).Code)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/alerts?threshold=5&recent_days=14", nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/alerts?threshold=abc", nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/alerts?prior_days=0", nil, nil).Code)

	w = do(r, http.MethodGet, "/api/v1/demand/summary", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var demand models.DemandSummary
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &demand))
	assert.Equal(t, 200, demand.TotalBookings)
}

func TestAlertsWithNonPositiveConfiguredWindows(t *testing.T) {
	cfg := testConfig(t)
	cfg.RecentWindowDays = 0
	cfg.PriorWindowDays = -1
	app, r := newTestApp(t, cfg)
	seed(t, app, 50)

	w := do(r, http.MethodGet, "/api/v1/alerts", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode(t, w).Success)
}

func TestInvalidRecordsAnswer422(t *testing.T) {
	app, r := newTestApp(t, testConfig(t))
	_, err := app.Services.Flights.InsertFlights(context.Background(), []models.FlightRecord{
		{Route: "LAX → JFK", Origin: "LAX", Destination: "JFK", Price: 300, DepartureDate: "2024-06-01", ScrapedAt: time.Now()},
	})
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/api/v1/demand/summary", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w).Error, "airline")
}

func TestInsightEndpoints(t *testing.T) {
	app, r := newTestApp(t, testConfig(t))

	w := do(r, http.MethodPost, "/api/v1/insights/generate", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	seed(t, app, 100)
	w = do(r, http.MethodPost, "/api/v1/insights/generate", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode(t, w).Count)

	w = do(r, http.MethodGet, "/api/v1/insights", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var insights []models.MarketInsight
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &insights))
	require.Len(t, insights, 3)
	// Azure OpenAI未設定のためエラー文書が保存される
	assert.Contains(t, insights[0].Content, "Failed to analyze popular routes")
}

func TestIngestEndpoints(t *testing.T) {
	_, r := newTestApp(t, testConfig(t))

	w := do(r, http.MethodPost, "/api/v1/scrape", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		TotalRecords int                  `json:"total_records"`
		Logs         []models.ScrapingLog `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	assert.Len(t, result.Logs, 3)
	assert.Greater(t, result.TotalRecords, 0)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/scrape/logs", nil, nil).Code)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "fares.csv")
	require.NoError(t, err)
	part.Write([]byte("origin,destination,airline,price,departure_date\nLAX,JFK,Delta,420,2024-07-01\n"))
	require.NoError(t, mw.Close())

	w = do(r, http.MethodPost, "/api/v1/flights/import", body.Bytes(), map[string]string{"Content-Type": mw.FormDataContentType()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body.Reset()
	mw = multipart.NewWriter(&body)
	part, err = mw.CreateFormFile("file", "fares.txt")
	require.NoError(t, err)
	part.Write([]byte("hello"))
	require.NoError(t, mw.Close())
	w = do(r, http.MethodPost, "/api/v1/flights/import", body.Bytes(), map[string]string{"Content-Type": mw.FormDataContentType()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/v1/flights/import", nil, nil).Code)

	body.Reset()
	mw = multipart.NewWriter(&body)
	part, err = mw.CreateFormFile("file", "huge.csv")
	require.NoError(t, err)
	part.Write(bytes.Repeat([]byte("x"), 11<<20))
	require.NoError(t, mw.Close())
	w = do(r, http.MethodPost, "/api/v1/flights/import", body.Bytes(), map[string]string{"Content-Type": mw.FormDataContentType()})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, decode(t, w).Error, "upload limit")
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/monitoring/logs?period=1h", nil, nil).Code)
}
