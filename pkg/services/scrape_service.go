package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fare-insight-api/pkg/logger"
	"fare-insight-api/pkg/metrics"
	"fare-insight-api/pkg/models"
)

// DefaultSources 取得対象のデフォルトソース
var DefaultSources = []string{
	"https://www.kayak.com/flights",
	"https://www.expedia.com/Flights",
	"https://www.skyscanner.com/flights",
}

// ErrUnsupportedSource is recorded for sources the simulator does not know.
var ErrUnsupportedSource = errors.New("unsupported source")

// ScrapeResult は取得処理全体の結果です。
type ScrapeResult struct {
	TotalRecords int                  `json:"total_records"`
	Logs         []models.ScrapingLog `json:"logs"`
}

// ScrapeService はソースごとのデータ取得（シミュレーション）を実行し、結果をログに残します。
type ScrapeService struct {
	flights FlightStore
	logs    ScrapingLogStore
	sampler *SampleDataService
	logger  logger.Logger
	metrics *metrics.Metrics
	mu      sync.Mutex
	now     func() time.Time
}

// NewScrapeService 新しい取得サービスを作成
func NewScrapeService(flights FlightStore, logs ScrapingLogStore, sampler *SampleDataService, log logger.Logger, m *metrics.Metrics) *ScrapeService {
	return &ScrapeService{
		flights: flights,
		logs:    logs,
		sampler: sampler,
		logger:  log,
		metrics: m,
		now:     time.Now,
	}
}

// Run は各ソースを順に処理し、ソースごとにScrapingLogを1件保存します。
// 個々のソースの失敗は error ステータスとして記録され、処理は継続します。
func (s *ScrapeService) Run(ctx context.Context, sources []string) (ScrapeResult, error) {
	if len(sources) == 0 {
		sources = DefaultSources
	}

	// 乱数源は並行利用できないため直列化する
	s.mu.Lock()
	defer s.mu.Unlock()

	result := ScrapeResult{Logs: make([]models.ScrapingLog, 0, len(sources))}
	for _, source := range sources {
		entry := models.ScrapingLog{Source: source, ScrapedAt: s.now().UTC()}

		count, err := s.scrapeOne(ctx, source)
		if err != nil {
			s.logger.Warn("source acquisition failed", "source", source, "error", err)
			entry.Status = models.ScrapingError
			entry.ErrorMessage = err.Error()
		} else {
			entry.Status = models.ScrapingSuccess
			entry.RecordsScraped = count
			result.TotalRecords += count
		}

		id, err := s.logs.SaveLog(ctx, entry)
		if err != nil {
			return result, fmt.Errorf("failed to save scraping log: %w", err)
		}
		entry.ID = id
		result.Logs = append(result.Logs, entry)
	}

	s.logger.Info("acquisition finished", "sources", len(sources), "records", result.TotalRecords)
	return result, nil
}

func (s *ScrapeService) scrapeOne(ctx context.Context, source string) (int, error) {
	name, ok := sourceName(source)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	}

	records := s.sampler.SimulateSource(source, s.now())
	n, err := s.flights.InsertFlights(ctx, records)
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.RecordsIngested.WithLabelValues(name).Add(float64(n))
	}
	return n, nil
}

// RecentLogs 最近の取得ログを返します。
func (s *ScrapeService) RecentLogs(ctx context.Context, limit int) ([]models.ScrapingLog, error) {
	return s.logs.RecentLogs(ctx, limit)
}
