package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	// テスト用の環境変数を設定
	testCases := map[string]string{
		"PORT":                         "9090",
		"ENVIRONMENT":                  "test",
		"AZURE_OPENAI_ENDPOINT":        "https://test.openai.azure.com/",
		"AZURE_OPENAI_API_KEY":         "test-key",
		"AZURE_OPENAI_DEPLOYMENT_NAME": "test-deployment",
		"DATABASE_PATH":                "/tmp/fares.db",
		"TOP_ROUTES_LIMIT":             "15",
		"PRICE_ALERT_THRESHOLD":        "12.5",
		"RECENT_WINDOW_DAYS":           "3",
	}

	// 環境変数を設定
	for key, value := range testCases {
		os.Setenv(key, value)
	}

	// テスト後にクリーンアップ
	defer func() {
		for key := range testCases {
			os.Unsetenv(key)
		}
	}()

	// 設定を読み込み
	cfg := LoadConfig()

	// 検証
	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be '9090', got '%s'", cfg.Port)
	}

	if cfg.Environment != "test" {
		t.Errorf("Expected Environment to be 'test', got '%s'", cfg.Environment)
	}

	if cfg.AzureOpenAIEndpoint != "https://test.openai.azure.com/" {
		t.Errorf("Expected AzureOpenAIEndpoint to be 'https://test.openai.azure.com/', got '%s'", cfg.AzureOpenAIEndpoint)
	}

	if cfg.AzureOpenAIAPIKey != "test-key" {
		t.Errorf("Expected AzureOpenAIAPIKey to be 'test-key', got '%s'", cfg.AzureOpenAIAPIKey)
	}

	if cfg.AzureOpenAIDeploymentName != "test-deployment" {
		t.Errorf("Expected AzureOpenAIDeploymentName to be 'test-deployment', got '%s'", cfg.AzureOpenAIDeploymentName)
	}

	if cfg.DatabasePath != "/tmp/fares.db" {
		t.Errorf("Expected DatabasePath to be '/tmp/fares.db', got '%s'", cfg.DatabasePath)
	}

	if cfg.TopRoutesLimit != 15 {
		t.Errorf("Expected TopRoutesLimit to be 15, got %d", cfg.TopRoutesLimit)
	}

	if cfg.AlertThresholdPct != 12.5 {
		t.Errorf("Expected AlertThresholdPct to be 12.5, got %v", cfg.AlertThresholdPct)
	}

	if cfg.RecentWindowDays != 3 {
		t.Errorf("Expected RecentWindowDays to be 3, got %d", cfg.RecentWindowDays)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// 環境変数をクリア
	vars := []string{
		"PORT", "ENVIRONMENT", "AZURE_OPENAI_ENDPOINT",
		"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_API_VERSION",
		"AZURE_OPENAI_DEPLOYMENT_NAME", "DATABASE_PATH",
		"TOP_ROUTES_LIMIT", "PRICE_ALERT_THRESHOLD",
		"RECENT_WINDOW_DAYS", "PRIOR_WINDOW_DAYS", "INSIGHT_WINDOW_DAYS",
	}

	for _, v := range vars {
		os.Unsetenv(v)
	}

	// 設定を読み込み
	cfg := LoadConfig()

	// デフォルト値の検証
	if cfg.Port != "8080" {
		t.Errorf("Expected default Port to be '8080', got '%s'", cfg.Port)
	}

	if cfg.Environment != "development" {
		t.Errorf("Expected default Environment to be 'development', got '%s'", cfg.Environment)
	}

	if cfg.TopRoutesLimit != 20 || cfg.AlertThresholdPct != 10 {
		t.Errorf("Expected default limit 20 and threshold 10, got %d and %v", cfg.TopRoutesLimit, cfg.AlertThresholdPct)
	}

	if cfg.RecentWindowDays != 7 || cfg.PriorWindowDays != 7 || cfg.InsightWindowDays != 30 {
		t.Errorf("Unexpected default windows: %d/%d/%d", cfg.RecentWindowDays, cfg.PriorWindowDays, cfg.InsightWindowDays)
	}
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	os.Setenv("TOP_ROUTES_LIMIT", "many")
	defer os.Unsetenv("TOP_ROUTES_LIMIT")

	if got := getEnvAsInt("TOP_ROUTES_LIMIT", 20); got != 20 {
		t.Errorf("Expected fallback 20, got %d", got)
	}
}
