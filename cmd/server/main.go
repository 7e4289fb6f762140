package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"arbitrage/internal/aggregator"
	"arbitrage/internal/api"
	"arbitrage/internal/arbitrage"
	"arbitrage/internal/breaker"
	"arbitrage/internal/config"
	"arbitrage/internal/exchange"
	"arbitrage/internal/models"
	"arbitrage/internal/publish"
	"arbitrage/internal/quotestore"
	"arbitrage/internal/stability"
	"arbitrage/internal/status"
	"arbitrage/internal/symbolmap"
	"arbitrage/pkg/ratelimit"
	"arbitrage/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := utils.InitGlobalLogger(utils.LogConfig{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Logging.Development,
		Output:      cfg.Logging.Output,
	})
	defer log.Sync()
	sugar := log.Sugar()

	mapper := symbolmap.New(exchange.DefaultVenueRules())
	notifier := publish.NewLogNotifier(sugar)

	adapters, exchangeNames := buildAdapters(cfg, mapper, sugar)
	if len(adapters) < 2 {
		sugar.Fatalw("fewer than two exchange adapters built, cannot run", "count", len(adapters))
	}

	store := quotestore.New()
	statuses := status.New(exchangeNames, notifier)
	stab := stability.New(time.Duration(cfg.Stability.WindowMinutes) * time.Minute)

	targetUniverse := func() map[string]bool {
		symbols := mapper.Intersection(2)
		if len(symbols) == 0 {
			return nil
		}
		set := make(map[string]bool, len(symbols))
		for _, s := range symbols {
			set[s] = true
		}
		return set
	}

	agg := aggregator.New(
		adapters,
		targetUniverse,
		store,
		statuses,
		sugar,
		cfg.Store.IntakeCapacity,
		cfg.Store.BatchSize,
		cfg.Store.QuoteTTLMs,
	)

	hub := publish.NewHub(sugar)

	feeByExchange := make(map[string]float64, len(cfg.Exchanges))
	for _, ex := range cfg.Exchanges {
		feeByExchange[ex.Name] = ex.TakerFeePct
	}
	feeLookup := func(exch string) float64 {
		if pct, ok := feeByExchange[exch]; ok {
			return pct
		}
		return 0.001
	}

	filterCfg := arbitrage.DefaultFilterConfig()
	filterCfg.MinPriceThreshold = cfg.Filtering.MinPriceThreshold
	filterCfg.Suspicious = cfg.Filtering.PriceDiffSuspicious
	filterCfg.Threshold = cfg.Filtering.PriceDiffThreshold
	filterCfg.Aggressive = cfg.Filtering.PriceDiffAggressive

	engineCfg := arbitrage.Config{
		Interval:          time.Duration(cfg.Evaluation.IntervalMs) * time.Millisecond,
		TradeNotionalUSDT: cfg.Evaluation.TradeNotionalUSDT,
		MinSpreadPct:      cfg.Evaluation.MinSpreadPct,
		QuoteTTLMs:        cfg.Store.QuoteTTLMs,
		Filter:            filterCfg,
	}

	onTick := func(opportunities []models.Opportunity) {
		hub.BroadcastOpportunities(opportunities, models.NowMs())
		hub.BroadcastStatuses(statuses.Snapshot())
	}

	engine := arbitrage.New(store, stab, feeLookup, engineCfg, sugar, notifier, onTick)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go agg.Run(ctx)
	go engine.Run(ctx)
	go hub.Run(ctx.Done())
	go prunerLoop(ctx, stab)

	router := api.NewRouter(api.Dependencies{
		Engine:       engine,
		Statuses:     statuses,
		Hub:          hub,
		Log:          sugar,
		TokenHash:    cfg.Control.TokenHash,
		FilterConfig: engineCfg.Filter,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infow("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("server forced to shutdown", "error", err)
	}

	sugar.Info("server exited")
}

func prunerLoop(ctx context.Context, stab *stability.Tracker) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stab.Prune(models.NowMs())
		}
	}
}

// buildAdapters constructs one Adapter per enabled exchange in cfg, each
// with its own rate limiter and circuit breaker so a slow or failing venue
// never throttles or trips another.
func buildAdapters(cfg *config.Config, mapper *symbolmap.Mapper, log *zap.SugaredLogger) ([]exchange.Adapter, []string) {
	adapters := make([]exchange.Adapter, 0, len(cfg.Exchanges))
	names := make([]string, 0, len(cfg.Exchanges))

	for _, ex := range cfg.Exchanges {
		names = append(names, ex.Name)
		if !ex.Enabled {
			continue
		}

		limiter := ratelimit.NewRateLimiter(5, 10)
		cb := breaker.New(breaker.Config{
			Name:                        ex.Name,
			ConsecutiveFailureThreshold: cfg.Breaker.ConsecutiveFailureThreshold,
			OpenTimeout:                 time.Duration(cfg.Breaker.OpenTimeoutS) * time.Second,
		})

		adp, err := exchange.New(ex.Name, mapper, limiter, cb)
		if err != nil {
			log.Errorw("failed to build exchange adapter, skipping", "exchange", ex.Name, "error", err)
			continue
		}
		adapters = append(adapters, adp)
	}

	return adapters, names
}
