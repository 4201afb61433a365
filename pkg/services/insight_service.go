package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fare-insight-api/pkg/analytics"
	"fare-insight-api/pkg/logger"
	"fare-insight-api/pkg/metrics"
	"fare-insight-api/pkg/models"
)

// ErrNoRecentData is returned when no record falls inside the insight window.
var ErrNoRecentData = errors.New("no recent data available for analysis")

// InsightGenerator turns a summary payload into narrative insight content.
type InsightGenerator interface {
	GenerateInsight(ctx context.Context, kind models.InsightKind, payload string) (string, error)
}

// InsightService インサイト生成と保存を行うサービス
type InsightService struct {
	flights    FlightStore
	insights   InsightStore
	generator  InsightGenerator
	logger     logger.Logger
	metrics    *metrics.Metrics
	windowDays int
	now        func() time.Time
}

// NewInsightService 新しいインサイトサービスを作成
func NewInsightService(flights FlightStore, insights InsightStore, generator InsightGenerator, log logger.Logger, m *metrics.Metrics, windowDays int) *InsightService {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &InsightService{
		flights:    flights,
		insights:   insights,
		generator:  generator,
		logger:     log,
		metrics:    m,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// SetClock はテスト用に現在時刻の取得関数を差し替えます。
func (s *InsightService) SetClock(now func() time.Time) {
	s.now = now
}

// Generate は直近ウィンドウのデータから種類ごとに1件のインサイトを生成して保存します。
// 生成に失敗した種類はエラー内容をJSONとして保存し、他の種類の生成は継続します。
func (s *InsightService) Generate(ctx context.Context) ([]models.MarketInsight, error) {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -s.windowDays)

	records, err := s.flights.ListFlights(ctx, models.FlightFilter{ScrapedSince: start})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent flights: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoRecentData
	}

	generated := make([]models.MarketInsight, 0, len(models.InsightKinds))
	for _, kind := range models.InsightKinds {
		payload, err := analytics.BuildInsightPayload(kind, records)
		if err != nil {
			// 入力データの不備はバッチ全体のエラーとして返す
			return nil, err
		}

		content, status := s.generateOne(ctx, kind, payload)
		if s.metrics != nil {
			s.metrics.InsightsGenerated.WithLabelValues(string(kind), status).Inc()
		}

		generated = append(generated, models.MarketInsight{
			ID:              uuid.New().String(),
			InsightType:     kind,
			Content:         content,
			GeneratedAt:     s.now().UTC(),
			DataPeriodStart: start,
			DataPeriodEnd:   end,
		})
	}

	if err := s.insights.SaveInsights(ctx, generated); err != nil {
		return nil, fmt.Errorf("failed to save insights: %w", err)
	}
	s.logger.Info("market insights generated", "records", len(records), "insights", len(generated))
	return generated, nil
}

func (s *InsightService) generateOne(ctx context.Context, kind models.InsightKind, payload string) (string, string) {
	content, err := s.generator.GenerateInsight(ctx, kind, payload)
	if err != nil {
		s.logger.Error("insight generation failed", "kind", kind, "error", err)
		return failureDocument(kind, err), "error"
	}
	return content, "success"
}

// failureDocument renders {"error": "Failed to analyze <kind>: <cause>"}.
func failureDocument(kind models.InsightKind, cause error) string {
	label := strings.ReplaceAll(string(kind), "_", " ")
	doc, _ := json.Marshal(map[string]string{
		"error": fmt.Sprintf("Failed to analyze %s: %v", label, cause),
	})
	return string(doc)
}

// LatestInsights は種類ごとの最新インサイトを返します。未生成の種類は含まれません。
func (s *InsightService) LatestInsights(ctx context.Context) ([]models.MarketInsight, error) {
	latest := make([]models.MarketInsight, 0, len(models.InsightKinds))
	for _, kind := range models.InsightKinds {
		insight, found, err := s.insights.LatestByType(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s insight: %w", kind, err)
		}
		if found {
			latest = append(latest, insight)
		}
	}
	return latest, nil
}
