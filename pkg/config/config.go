package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all environment-level configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server (대시보드 API)
	Port string
	Env  string // development, staging, production

	// Input files
	FundReturnsPath      string
	BenchmarkReturnsPath string

	// Output
	ArtifactDir string
	ExcelExport bool

	// Analysis config file (windows, benchmarks, ...)
	AnalysisPath string

	// Logging
	LogLevel  string
	LogFormat string

	// Dashboard API rate limit (requests per second)
	RateLimit      float64
	RateLimitBurst int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		FundReturnsPath:      getEnv("FUND_RETURNS_PATH", "data/fund_returns.xlsx"),
		BenchmarkReturnsPath: getEnv("BENCHMARK_RETURNS_PATH", "data/benchmark_returns.xlsx"),

		ArtifactDir: getEnv("ARTIFACT_DIR", "results"),
		ExcelExport: getEnvAsBool("EXCEL_EXPORT", true),

		AnalysisPath: getEnv("ANALYSIS_PATH", "analysis.yaml"),

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		RateLimit:      getEnvAsFloat("RATE_LIMIT", 20),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 40),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.FundReturnsPath == "" || c.BenchmarkReturnsPath == "" {
		return fmt.Errorf("FUND_RETURNS_PATH and BENCHMARK_RETURNS_PATH are required")
	}

	if c.RateLimit <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT and RATE_LIMIT_BURST must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
