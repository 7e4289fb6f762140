package config

import "testing"

func validConfig() *Config {
	return &Config{
		Exchanges: []ExchangeConfig{
			{Name: "okx", Enabled: true, PollIntervalMs: 1000},
			{Name: "bybit", Enabled: true, PollIntervalMs: 1000},
		},
		Evaluation: EvaluationConfig{IntervalMs: 1000, TradeNotionalUSDT: 100},
		Store:      StoreConfig{QuoteTTLMs: 15000, IntakeCapacity: 1000, BatchSize: 100},
		Stability:  StabilityConfig{WindowMinutes: 5},
		Breaker:    BreakerConfig{ConsecutiveFailureThreshold: 3, OpenTimeoutS: 60},
		Metrics:    MetricsConfig{Namespace: "arbitrage"},
	}
}

func TestValidate_AcceptsWellFormedConfig(t *testing.T) {
	if err := validConfig().validate(); err != nil {
		t.Errorf("expected a well-formed config to validate, got %v", err)
	}
}

func TestValidate_RequiresAtLeastTwoExchanges(t *testing.T) {
	cfg := validConfig()
	cfg.Exchanges = cfg.Exchanges[:1]
	if err := cfg.validate(); err == nil {
		t.Error("expected an error with fewer than two exchanges")
	}
}

func TestValidate_RejectsUnsupportedExchange(t *testing.T) {
	cfg := validConfig()
	cfg.Exchanges[0].Name = "not-a-real-exchange"
	if err := cfg.validate(); err == nil {
		t.Error("expected an error for an unsupported exchange name")
	}
}

func TestValidate_RejectsNonPositivePollInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Exchanges[0].PollIntervalMs = 0
	if err := cfg.validate(); err == nil {
		t.Error("expected an error for a non-positive poll interval")
	}
}

func TestValidate_RejectsNonPositiveNotional(t *testing.T) {
	cfg := validConfig()
	cfg.Evaluation.TradeNotionalUSDT = 0
	if err := cfg.validate(); err == nil {
		t.Error("expected an error for a non-positive trade notional")
	}
}

func TestValidate_RejectsBatchSizeLargerThanIntake(t *testing.T) {
	cfg := validConfig()
	cfg.Store.BatchSize = cfg.Store.IntakeCapacity + 1
	if err := cfg.validate(); err == nil {
		t.Error("expected an error when batch size exceeds intake capacity")
	}
}

func TestValidate_RejectsZeroBreakerThreshold(t *testing.T) {
	cfg := validConfig()
	cfg.Breaker.ConsecutiveFailureThreshold = 0
	if err := cfg.validate(); err == nil {
		t.Error("expected an error for a zero consecutive failure threshold")
	}
}

func TestValidate_RejectsNonPositiveBreakerTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Breaker.OpenTimeoutS = 0
	if err := cfg.validate(); err == nil {
		t.Error("expected an error for a non-positive breaker open timeout")
	}
}

func TestValidate_RejectsEmptyMetricsNamespace(t *testing.T) {
	cfg := validConfig()
	cfg.Metrics.Namespace = ""
	if err := cfg.validate(); err == nil {
		t.Error("expected an error for an empty metrics namespace")
	}
}

func TestConfigurationError_Message(t *testing.T) {
	err := &ConfigurationError{Field: "x", Message: "y"}
	if err.Error() == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestLoadExchanges_DefaultsToSupportedList(t *testing.T) {
	t.Setenv("EXCHANGES", "")
	got := loadExchanges()
	if len(got) == 0 {
		t.Fatal("expected a non-empty default exchange list")
	}
}

func TestLoadExchanges_HonorsExplicitList(t *testing.T) {
	t.Setenv("EXCHANGES", "okx,bybit")
	got := loadExchanges()
	if len(got) != 2 {
		t.Fatalf("expected 2 exchanges, got %d", len(got))
	}
}
