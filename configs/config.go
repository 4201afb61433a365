package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	APIKey      string

	AdminUsername string
	AdminPassword string

	AzureOpenAIEndpoint          string
	AzureOpenAIAPIKey            string
	AzureOpenAIAPIVersion        string
	AzureOpenAIDeploymentName    string
	AzureOpenAIRequestsPerMinute int

	DatabasePath string

	// 集計パラメータ
	TopRoutesLimit    int
	AlertThresholdPct float64
	RecentWindowDays  int
	PriorWindowDays   int
	InsightWindowDays int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		APIKey:      getEnv("API_KEY", ""),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		AzureOpenAIEndpoint:          getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIAPIKey:            getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIAPIVersion:        getEnv("AZURE_OPENAI_API_VERSION", "2024-06-01"),
		AzureOpenAIDeploymentName:    getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-4o"),
		AzureOpenAIRequestsPerMinute: getEnvAsInt("AZURE_OPENAI_REQUESTS_PER_MINUTE", 30),

		DatabasePath: getEnv("DATABASE_PATH", "instance/airline_data.db"),

		TopRoutesLimit:    getEnvAsInt("TOP_ROUTES_LIMIT", 20),
		AlertThresholdPct: getEnvAsFloat("PRICE_ALERT_THRESHOLD", 10),
		RecentWindowDays:  getEnvAsInt("RECENT_WINDOW_DAYS", 7),
		PriorWindowDays:   getEnvAsInt("PRIOR_WINDOW_DAYS", 7),
		InsightWindowDays: getEnvAsInt("INSIGHT_WINDOW_DAYS", 30),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}
