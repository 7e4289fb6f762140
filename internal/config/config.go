// Package config loads process configuration from environment variables,
// following the same typed-getter-with-defaults pattern throughout: every
// option has a documented default, and only a startup-fatal
// ConfigurationError can abort the process.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"arbitrage/internal/exchange"
	"arbitrage/pkg/utils"
)

// ConfigurationError is the only fatal error class: bad startup config
// aborts the process with a clear message.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

// ExchangeConfig is one venue's enable flag, cadence and fee schedule.
type ExchangeConfig struct {
	Name            string
	Enabled         bool
	PollIntervalMs  int
	TakerFeePct     float64
	MakerFeePct     float64
}

// EvaluationConfig controls the arbitrage engine's tick.
type EvaluationConfig struct {
	IntervalMs        int
	TradeNotionalUSDT float64
	MinSpreadPct      float64
}

// StoreConfig controls QuoteStore/aggregator sizing.
type StoreConfig struct {
	QuoteTTLMs      int64
	IntakeCapacity  int
	BatchSize       int
}

// StabilityConfig controls the rolling stability window.
type StabilityConfig struct {
	WindowMinutes int
}

// FilteringConfig controls the identity filter's thresholds.
type FilteringConfig struct {
	MinPriceThreshold   float64
	PriceDiffSuspicious float64
	PriceDiffThreshold  float64
	PriceDiffAggressive float64
}

// ServerConfig controls the thin HTTP/WebSocket publish surface.
type ServerConfig struct {
	Port int
	Host string
}

// ControlConfig gates the publish surface behind an optional shared-secret
// token. When TokenHash is empty, the surface is open.
type ControlConfig struct {
	TokenHash string
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level       string
	Format      string
	Development bool
	Output      string
}

// BreakerConfig controls the per-adapter circuit breaker shared by every
// exchange adapter.
type BreakerConfig struct {
	ConsecutiveFailureThreshold uint32
	OpenTimeoutS                int
}

// MetricsConfig controls the Prometheus registration namespace. Read
// directly from the environment by internal/metrics itself rather than
// plumbed through this struct: Prometheus metrics are registered by
// package-level var initializers that run before Load() does, so by the
// time a Config exists the metric names are already fixed. This field
// exists so the setting is documented and validated in one place even
// though internal/metrics is the one that consumes the env var.
type MetricsConfig struct {
	Namespace string
}

// Config is the complete process configuration.
type Config struct {
	Exchanges  []ExchangeConfig
	Evaluation EvaluationConfig
	Store      StoreConfig
	Stability  StabilityConfig
	Filtering  FilteringConfig
	Server     ServerConfig
	Control    ControlConfig
	Logging    LoggingConfig
	Breaker    BreakerConfig
	Metrics    MetricsConfig
}

// Load reads configuration from the environment, applying the defaults
// named throughout this package, and validates it before returning.
func Load() (*Config, error) {
	cfg := &Config{
		Exchanges:  loadExchanges(),
		Evaluation: EvaluationConfig{
			IntervalMs:        getEnvAsInt("EVAL_INTERVAL_MS", 1000),
			TradeNotionalUSDT: getEnvAsFloat("EVAL_TRADE_NOTIONAL_USDT", 100),
			MinSpreadPct:      getEnvAsFloat("EVAL_MIN_SPREAD_PCT", 0),
		},
		Store: StoreConfig{
			QuoteTTLMs:     getEnvAsInt64("STORE_QUOTE_TTL_MS", 15000),
			IntakeCapacity: getEnvAsInt("STORE_INTAKE_CAPACITY", 10000),
			BatchSize:      getEnvAsInt("STORE_BATCH_SIZE", 100),
		},
		Stability: StabilityConfig{
			WindowMinutes: getEnvAsInt("STABILITY_WINDOW_MINUTES", 5),
		},
		Filtering: FilteringConfig{
			MinPriceThreshold:   getEnvAsFloat("FILTER_MIN_PRICE_THRESHOLD", 1e-6),
			PriceDiffSuspicious: getEnvAsFloat("FILTER_PRICE_DIFF_SUSPICIOUS", 0.30),
			PriceDiffThreshold:  getEnvAsFloat("FILTER_PRICE_DIFF_THRESHOLD", 1.0),
			PriceDiffAggressive: getEnvAsFloat("FILTER_PRICE_DIFF_AGGRESSIVE", 2.0),
		},
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Control: ControlConfig{
			TokenHash: getEnv("CONTROL_TOKEN_HASH", ""),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Format:      getEnv("LOG_FORMAT", "json"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
			Output:      getEnv("LOG_OUTPUT", ""),
		},
		Breaker: BreakerConfig{
			ConsecutiveFailureThreshold: uint32(getEnvAsInt("BREAKER_CONSECUTIVE_FAILURE_THRESHOLD", 3)),
			OpenTimeoutS:                getEnvAsInt("BREAKER_OPEN_TIMEOUT_S", 60),
		},
		Metrics: MetricsConfig{
			Namespace: getEnv("METRICS_NAMESPACE", "arbitrage"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadExchanges() []ExchangeConfig {
	names := exchange.SupportedExchanges
	if raw := getEnv("EXCHANGES", ""); raw != "" {
		names = strings.Split(raw, ",")
	}

	out := make([]ExchangeConfig, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		prefix := "EXCHANGE_" + strings.ToUpper(name) + "_"
		out = append(out, ExchangeConfig{
			Name:           name,
			Enabled:        getEnvAsBool(prefix+"ENABLED", true),
			PollIntervalMs: getEnvAsInt(prefix+"POLL_INTERVAL_MS", 1000),
			TakerFeePct:    getEnvAsFloat(prefix+"TAKER_FEE_PCT", 0.0006),
			MakerFeePct:    getEnvAsFloat(prefix+"MAKER_FEE_PCT", 0.0002),
		})
	}
	return out
}

func (c *Config) validate() error {
	if len(c.Exchanges) < 2 {
		return &ConfigurationError{Field: "exchanges", Message: "at least two exchanges are required to compute an arbitrage opportunity"}
	}
	for _, ex := range c.Exchanges {
		if !exchange.IsSupported(ex.Name) {
			return &ConfigurationError{Field: "exchanges", Message: fmt.Sprintf("unsupported exchange %q", ex.Name)}
		}
		if ex.PollIntervalMs <= 0 {
			return &ConfigurationError{Field: "exchanges." + ex.Name + ".poll_interval_ms", Message: "must be positive"}
		}
	}
	if c.Evaluation.IntervalMs <= 0 {
		return &ConfigurationError{Field: "evaluation.interval_ms", Message: "must be positive"}
	}
	if err := utils.ValidateNotional(c.Evaluation.TradeNotionalUSDT); err != nil {
		return &ConfigurationError{Field: "evaluation.trade_notional_usdt", Message: err.Error()}
	}
	if c.Store.QuoteTTLMs <= 0 {
		return &ConfigurationError{Field: "store.quote_ttl_ms", Message: "must be positive"}
	}
	if c.Store.BatchSize <= 0 || c.Store.BatchSize > c.Store.IntakeCapacity {
		return &ConfigurationError{Field: "store.batch_size", Message: "must be positive and no larger than intake_capacity"}
	}
	if c.Stability.WindowMinutes <= 0 {
		return &ConfigurationError{Field: "stability.window_minutes", Message: "must be positive"}
	}
	if c.Breaker.ConsecutiveFailureThreshold == 0 {
		return &ConfigurationError{Field: "breaker.consecutive_failure_threshold", Message: "must be positive"}
	}
	if c.Breaker.OpenTimeoutS <= 0 {
		return &ConfigurationError{Field: "breaker.open_timeout_s", Message: "must be positive"}
	}
	if c.Metrics.Namespace == "" {
		return &ConfigurationError{Field: "metrics.namespace", Message: "must not be empty"}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return v
}

