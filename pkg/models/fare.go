package models

import "time"

// FlightRecord represents a single fare quote collected for a route.
// Records are never mutated after creation; duplicates are valid.
type FlightRecord struct {
	ID            int64     `json:"id,omitempty"`
	Route         string    `json:"route"`          // 正規化済みのルートラベル（例: "LAX → JFK"）
	Origin        string    `json:"origin"`         // 出発空港コード
	Destination   string    `json:"destination"`    // 到着空港コード
	Price         float64   `json:"price"`          // 運賃
	Airline       string    `json:"airline"`        // 航空会社名
	DepartureDate string    `json:"departure_date"` // 出発日 (YYYY-MM-DD)
	ScrapedAt     time.Time `json:"scraped_at"`     // 取得日時
	SourceURL     string    `json:"source_url,omitempty"`
}

// RouteSummary represents aggregated booking statistics for one route.
type RouteSummary struct {
	Route        string   `json:"route"`
	Origin       string   `json:"origin"`
	Destination  string   `json:"destination"`
	BookingCount int      `json:"booking_count"`
	AvgPrice     float64  `json:"avg_price"`
	MinPrice     float64  `json:"min_price"`
	MaxPrice     float64  `json:"max_price"`
	AirlineCount int      `json:"airline_count"`
	Airlines     []string `json:"airlines"`
	Months       []string `json:"months"`
}

// PriceTrendPoint represents price statistics for a (route, month) or (date) key.
// Exactly one of Month or Date is set; Route is only set together with Month.
type PriceTrendPoint struct {
	Route       string  `json:"route,omitempty"`
	Month       string  `json:"month,omitempty"`
	Date        string  `json:"date,omitempty"`
	AvgPrice    float64 `json:"avg_price"`
	MinPrice    float64 `json:"min_price"`
	MaxPrice    float64 `json:"max_price"`
	SampleCount int     `json:"sample_count"`
}

// AirlineStats represents booking and revenue statistics for one airline.
type AirlineStats struct {
	Airline      string   `json:"airline"`
	BookingCount int      `json:"booking_count"`
	TotalRevenue float64  `json:"total_revenue"`
	AvgPrice     float64  `json:"avg_price"`
	MinPrice     float64  `json:"min_price"`
	MaxPrice     float64  `json:"max_price"`
	MarketShare  float64  `json:"market_share"` // 全予約数に対する割合（%）
	RouteCount   int      `json:"route_count"`
	Routes       []string `json:"routes"`
}

// MonthlyDemand represents booking volume and average price for one month.
type MonthlyDemand struct {
	Month        string  `json:"month"`
	BookingCount int     `json:"booking_count"`
	AvgPrice     float64 `json:"avg_price"`
}

// RouteStatistics represents detailed statistics for a single route.
type RouteStatistics struct {
	Route         string   `json:"route"`
	TotalBookings int      `json:"total_bookings"`
	AvgPrice      float64  `json:"avg_price"`
	MinPrice      float64  `json:"min_price"`
	MaxPrice      float64  `json:"max_price"`
	PriceStd      float64  `json:"price_std"` // 標本標準偏差（n-1）
	Airlines      []string `json:"airlines"`
	AirlineCount  int      `json:"airline_count"`
	LatestPrice   float64  `json:"latest_price"`
	OldestRecord  string   `json:"oldest_record"`
	LatestRecord  string   `json:"latest_record"`
}

// RouteDemand represents demand for one route inside a DemandSummary.
type RouteDemand struct {
	Route        string   `json:"route"`
	BookingCount int      `json:"booking_count"`
	MarketShare  float64  `json:"market_share"`
	Airlines     []string `json:"airlines"`
}

// MonthlyBookings represents booking volume for one month inside a DemandSummary.
type MonthlyBookings struct {
	Month        string `json:"month"`
	BookingCount int    `json:"booking_count"`
}

// DemandSummary represents the demand breakdown handed to insight generation.
// UndatedBookings counts records whose departure date has no valid month prefix,
// so MonthlyDemand counts plus UndatedBookings always equal TotalBookings.
type DemandSummary struct {
	TotalBookings   int               `json:"total_bookings"`
	Airlines        []AirlineStats    `json:"airlines"`
	Routes          []RouteDemand     `json:"routes"`
	MonthlyDemand   []MonthlyBookings `json:"monthly_demand"`
	UndatedBookings int               `json:"undated_bookings,omitempty"`
}

// AlertType classifies the direction of a price alert.
type AlertType string

const (
	AlertPriceIncrease AlertType = "price_increase"
	AlertPriceDecrease AlertType = "price_decrease"
)

// PriceAlert represents a significant change between two price windows for a route.
type PriceAlert struct {
	Route            string    `json:"route"`
	PriorAvgPrice    float64   `json:"old_price"`
	RecentAvgPrice   float64   `json:"new_price"`
	PercentageChange float64   `json:"percentage_change"`
	AlertType        AlertType `json:"alert_type"`
}

// InsightKind identifies which summary an insight was generated from.
type InsightKind string

const (
	InsightPopularRoutes  InsightKind = "popular_routes"
	InsightPriceTrends    InsightKind = "price_trends"
	InsightDemandAnalysis InsightKind = "demand_analysis"
)

// InsightKinds lists every kind in generation order.
var InsightKinds = []InsightKind{InsightPopularRoutes, InsightPriceTrends, InsightDemandAnalysis}

// MarketInsight represents a persisted narrative produced by the language model.
type MarketInsight struct {
	ID              string      `json:"id"`
	InsightType     InsightKind `json:"insight_type"`
	Content         string      `json:"content"`
	GeneratedAt     time.Time   `json:"generated_at"`
	DataPeriodStart time.Time   `json:"data_period_start"`
	DataPeriodEnd   time.Time   `json:"data_period_end"`
}

// ScrapingStatus is the outcome of one acquisition run.
type ScrapingStatus string

const (
	ScrapingSuccess ScrapingStatus = "success"
	ScrapingError   ScrapingStatus = "error"
	ScrapingPartial ScrapingStatus = "partial"
)

// ScrapingLog represents one acquisition run against a source.
type ScrapingLog struct {
	ID             int64          `json:"id"`
	Source         string         `json:"source"`
	Status         ScrapingStatus `json:"status"`
	RecordsScraped int            `json:"records_scraped"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	ScrapedAt      time.Time      `json:"scraped_at"`
}

// FlightFilter narrows a flight query. Zero values disable a condition.
type FlightFilter struct {
	Origin       string    `form:"origin"`
	Destination  string    `form:"destination"`
	Airline      string    `form:"airline"`
	MinPrice     float64   `form:"min_price"`
	MaxPrice     float64   `form:"max_price"`
	DateFrom     string    `form:"date_from"` // YYYY-MM-DD
	DateTo       string    `form:"date_to"`   // YYYY-MM-DD
	ScrapedSince time.Time `form:"-"`
	Limit        int       `form:"limit"`
}

// DashboardOverview represents the data shown on the dashboard landing page.
type DashboardOverview struct {
	TotalRecords   int             `json:"total_records"`
	RecentRecords  int             `json:"recent_records"`
	LatestInsights []MarketInsight `json:"latest_insights"`
	PopularRoutes  []RouteSummary  `json:"popular_routes"`
}
