package services

import (
	"context"
	"fmt"
	"time"

	"fare-insight-api/pkg/azure"
	"fare-insight-api/pkg/models"
)

// jsonCompleter はJSONモードのチャット補完を提供します。*azure.OpenAIClient が実装します。
type jsonCompleter interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

type insightPrompt struct {
	system   string
	template string
}

var insightPrompts = map[models.InsightKind]insightPrompt{
	models.InsightPopularRoutes: {
		system: "You are an airline market analyst. Read the route summary and describe which routes lead the market and why.",
		template: `Route summary (JSON): %s

Respond with a JSON object:
{
  "top_routes": [{"route": string, "popularity_score": number, "avg_price": number, "trend": "increasing|decreasing|stable"}],
  "insights": [string],
  "recommendations": [string]
}`,
	},
	models.InsightPriceTrends: {
		system: "You are an airline pricing analyst. Read the per-route monthly price statistics and describe how fares move.",
		template: `Price summary (JSON): %s

Respond with a JSON object:
{
  "overall_trend": "increasing|decreasing|stable",
  "price_ranges": {"budget": {"min": number, "max": number}, "mid_range": {"min": number, "max": number}, "premium": {"min": number, "max": number}},
  "seasonal_patterns": [{"period": string, "price_change": string, "reason": string}],
  "insights": [string],
  "recommendations": [string]
}`,
	},
	models.InsightDemandAnalysis: {
		system: "You are an airline demand analyst. Read the demand breakdown and describe demand peaks, carrier performance and opportunities.",
		template: `Demand summary (JSON): %s

Respond with a JSON object:
{
  "peak_demand_periods": [{"period": string, "demand_level": "high|medium|low", "key_routes": [string], "reasons": [string]}],
  "airline_performance": [{"airline": string, "market_share": string, "growth_trend": "increasing|decreasing|stable", "competitive_advantage": string}],
  "market_opportunities": [{"opportunity": string, "potential_impact": "high|medium|low", "recommendation": string}],
  "insights": [string]
}`,
	},
}

// AzureOpenAIService Azure OpenAI を使ったインサイト生成サービス
type AzureOpenAIService struct {
	client  jsonCompleter
	timeout time.Duration
}

// NewAzureOpenAIService 新しいAzure OpenAI サービスを作成
func NewAzureOpenAIService(client *azure.OpenAIClient) *AzureOpenAIService {
	return newAzureOpenAIService(client)
}

func newAzureOpenAIService(client jsonCompleter) *AzureOpenAIService {
	return &AzureOpenAIService{
		client:  client,
		timeout: 90 * time.Second,
	}
}

// GenerateInsight はサマリーJSONからkindに応じたインサイト（JSON文字列）を生成します。
func (s *AzureOpenAIService) GenerateInsight(ctx context.Context, kind models.InsightKind, payload string) (string, error) {
	prompt, ok := insightPrompts[kind]
	if !ok {
		return "", fmt.Errorf("no prompt for insight kind %q", kind)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.client.CompleteJSON(ctx, prompt.system, fmt.Sprintf(prompt.template, payload))
}
