package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fare-insight-api/pkg/analytics"
	"fare-insight-api/pkg/models"
)

const (
	dashboardRouteLimit   = 10
	dashboardInsightLimit = 3
	dashboardRecentDays   = 7
)

// Chart types served by ChartData.
const (
	ChartPriceTrends        = "price_trends"
	ChartPopularRoutes      = "popular_routes"
	ChartDemandByMonth      = "demand_by_month"
	ChartAirlinePerformance = "airline_performance"
)

// ErrUnknownChartType is returned by ChartData for an unsupported chart.
var ErrUnknownChartType = errors.New("unknown chart type")

// FareAnalyticsService 運賃データの集計サービス
// リクエストごとにストアからスナップショットを読み込み、analyticsパッケージで集計します。
type FareAnalyticsService struct {
	flights   FlightStore
	insights  InsightStore
	topRoutes int
	alertOpts analytics.AlertOptions
	now       func() time.Time
}

// NewFareAnalyticsService 新しい集計サービスを作成
func NewFareAnalyticsService(flights FlightStore, insights InsightStore, topRoutes int, alertOpts analytics.AlertOptions) *FareAnalyticsService {
	if topRoutes <= 0 {
		topRoutes = analytics.DefaultTopRoutes
	}
	return &FareAnalyticsService{
		flights:   flights,
		insights:  insights,
		topRoutes: topRoutes,
		alertOpts: alertOpts.WithDefaults(),
		now:       time.Now,
	}
}

// SetClock はテスト用に現在時刻の取得関数を差し替えます。
func (s *FareAnalyticsService) SetClock(now func() time.Time) {
	s.now = now
}

// AlertOptions returns the configured alert defaults.
func (s *FareAnalyticsService) AlertOptions() analytics.AlertOptions {
	return s.alertOpts
}

func (s *FareAnalyticsService) snapshot(ctx context.Context) ([]models.FlightRecord, error) {
	records, err := s.flights.ListFlights(ctx, models.FlightFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load flight snapshot: %w", err)
	}
	return records, nil
}

// Dashboard ダッシュボード用の概要データを返します。
func (s *FareAnalyticsService) Dashboard(ctx context.Context) (models.DashboardOverview, error) {
	total, err := s.flights.CountFlights(ctx, time.Time{})
	if err != nil {
		return models.DashboardOverview{}, err
	}
	recent, err := s.flights.CountFlights(ctx, s.now().AddDate(0, 0, -dashboardRecentDays))
	if err != nil {
		return models.DashboardOverview{}, err
	}
	latest, err := s.insights.Latest(ctx, dashboardInsightLimit)
	if err != nil {
		return models.DashboardOverview{}, err
	}

	records, err := s.snapshot(ctx)
	if err != nil {
		return models.DashboardOverview{}, err
	}
	routes, err := analytics.GroupByRoute(records, dashboardRouteLimit)
	if err != nil {
		return models.DashboardOverview{}, err
	}

	return models.DashboardOverview{
		TotalRecords:   total,
		RecentRecords:  recent,
		LatestInsights: latest,
		PopularRoutes:  routes,
	}, nil
}

// ChartData チャート種別ごとのデータを返します。
func (s *FareAnalyticsService) ChartData(ctx context.Context, chartType string) (interface{}, error) {
	switch chartType {
	case ChartPriceTrends, ChartPopularRoutes, ChartDemandByMonth, ChartAirlinePerformance:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownChartType, chartType)
	}

	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	switch chartType {
	case ChartPriceTrends:
		return analytics.PriceTrendsByDate(records, s.now(), analytics.DefaultTrendDays)
	case ChartPopularRoutes:
		return analytics.GroupByRoute(records, s.topRoutes)
	case ChartDemandByMonth:
		return analytics.GroupByMonth(records)
	default:
		return analytics.GroupByAirline(records)
	}
}

// PopularRoutes 予約数上位のルートを返します。
func (s *FareAnalyticsService) PopularRoutes(ctx context.Context, limit int) ([]models.RouteSummary, error) {
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.GroupByRoute(records, limit)
}

// Flights フィルタ条件に一致するフライトを返します。
func (s *FareAnalyticsService) Flights(ctx context.Context, filter models.FlightFilter) ([]models.FlightRecord, error) {
	return s.flights.ListFlights(ctx, filter)
}

// RouteStatistics 指定ルートの詳細統計を返します。該当なしの場合は false を返します。
func (s *FareAnalyticsService) RouteStatistics(ctx context.Context, route string) (models.RouteStatistics, bool, error) {
	records, err := s.snapshot(ctx)
	if err != nil {
		return models.RouteStatistics{}, false, err
	}
	return analytics.RouteStatistics(records, route)
}

// PriceAlerts 直近ウィンドウと比較ウィンドウの価格変動アラートを返します。
func (s *FareAnalyticsService) PriceAlerts(ctx context.Context, opts analytics.AlertOptions) ([]models.PriceAlert, error) {
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.PriceAlerts(records, s.now(), opts)
}

// DemandSummary 需要サマリーを返します。
func (s *FareAnalyticsService) DemandSummary(ctx context.Context) (models.DemandSummary, error) {
	records, err := s.snapshot(ctx)
	if err != nil {
		return models.DemandSummary{}, err
	}
	return analytics.DemandSummary(records)
}
