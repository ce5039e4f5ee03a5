// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the cache database (always absolute)
	Port     int
	LogLevel string
	DevMode  bool

	// External collaborator endpoints (CRUD/transport layer services).
	MarketDataURL  string // quote + adjusted price history service
	FxServiceURL   string // exchange-rate history + live rate service
	FixedIncomeURL string // bond-math valuation service

	// Currency model. Positions without the local-market suffix on their
	// symbol are treated as FOREIGN and converted with the FX series.
	ReportingCurrency string
	ForeignCurrency   string
	LocalMarketSuffix string

	// Performance engine tunables. The calibration constants are heuristic
	// and intentionally configurable rather than hard-coded.
	FetchWorkers            int     // bounded fetch concurrency
	PriceLookbackDays       int     // backward walk depth for missing prices
	CalibrationTolerancePct float64 // max |terminal - live| after rescale, pct points
	CalibrationFloorPct     float64 // terminal values at/below this are implausible
	RiskFreeRate            float64 // per-period default for risk metrics

	// Stress engine tunables.
	StressDefaultSimulations int
	StressMaxSimulations     int
	StressSeed               int64 // 0 = time-seeded

	// Rebalancing advisor.
	RebalanceEpsilon float64 // weight deltas inside +/- epsilon are HOLD
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("WEALTHSCOPE_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8010),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		MarketDataURL:  getEnv("MARKET_DATA_URL", "http://localhost:8020"),
		FxServiceURL:   getEnv("FX_SERVICE_URL", "http://localhost:8021"),
		FixedIncomeURL: getEnv("FIXED_INCOME_URL", "http://localhost:8022"),

		ReportingCurrency: getEnv("REPORTING_CURRENCY", "BRL"),
		ForeignCurrency:   getEnv("FOREIGN_CURRENCY", "USD"),
		LocalMarketSuffix: getEnv("LOCAL_MARKET_SUFFIX", ".SA"),

		FetchWorkers:            getEnvAsInt("FETCH_WORKERS", 4),
		PriceLookbackDays:       getEnvAsInt("PERF_PRICE_LOOKBACK_DAYS", 20),
		CalibrationTolerancePct: getEnvAsFloat("PERF_CALIBRATION_TOLERANCE_PCT", 0.5),
		CalibrationFloorPct:     getEnvAsFloat("PERF_CALIBRATION_FLOOR_PCT", -99.9),
		RiskFreeRate:            getEnvAsFloat("RISK_FREE_RATE", 0.0),

		StressDefaultSimulations: getEnvAsInt("STRESS_DEFAULT_SIMULATIONS", 5000),
		StressMaxSimulations:     getEnvAsInt("STRESS_MAX_SIMULATIONS", 10000),
		StressSeed:               int64(getEnvAsInt("STRESS_SEED", 0)),

		RebalanceEpsilon: getEnvAsFloat("REBALANCE_EPSILON", 0.005),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and sane
func (c *Config) Validate() error {
	if c.FetchWorkers <= 0 {
		return fmt.Errorf("FETCH_WORKERS must be positive, got %d", c.FetchWorkers)
	}
	if c.PriceLookbackDays < 0 {
		return fmt.Errorf("PERF_PRICE_LOOKBACK_DAYS must not be negative, got %d", c.PriceLookbackDays)
	}
	if c.StressDefaultSimulations <= 0 {
		return fmt.Errorf("STRESS_DEFAULT_SIMULATIONS must be positive, got %d", c.StressDefaultSimulations)
	}
	if c.StressMaxSimulations < c.StressDefaultSimulations {
		return fmt.Errorf("STRESS_MAX_SIMULATIONS (%d) below STRESS_DEFAULT_SIMULATIONS (%d)",
			c.StressMaxSimulations, c.StressDefaultSimulations)
	}
	if c.RebalanceEpsilon < 0 {
		return fmt.Errorf("REBALANCE_EPSILON must not be negative, got %f", c.RebalanceEpsilon)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
