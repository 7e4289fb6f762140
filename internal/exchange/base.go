package exchange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"arbitrage/internal/breaker"
	"arbitrage/internal/metrics"
	"arbitrage/internal/models"
	"arbitrage/internal/symbolmap"
	"arbitrage/pkg/ratelimit"
	"arbitrage/pkg/retry"
	"arbitrage/pkg/utils"
)

// base holds the machinery shared by every venue adapter: the pooled HTTP
// client, the symbol mapper used to translate venue spellings, and the
// resilience layer (rate limiter + circuit breaker + retry) wrapped around
// every outbound request. Venue adapters embed base and add only their
// endpoint URLs and response shapes.
type base struct {
	httpClient *http.Client
	mapper     *symbolmap.Mapper
	limiter    *ratelimit.RateLimiter
	cb         *breaker.Breaker
	retryCfg   retry.Config
}

func newBase(mapper *symbolmap.Mapper, limiter *ratelimit.RateLimiter, cb *breaker.Breaker) base {
	cfg := retry.NetworkConfig()
	cfg.RetryIf = retry.IsRetryable
	return base{
		httpClient: GetGlobalHTTPClient().GetClient(),
		mapper:     mapper,
		limiter:    limiter,
		cb:         cb,
		retryCfg:   cfg,
	}
}

// fetch performs a GET against url and returns the response body, protected
// by the adapter's rate limiter, circuit breaker and retry policy, in that
// order: the limiter paces requests before anything is sent, retry absorbs
// transient failures within a single breaker-counted attempt, and the
// breaker counts the retried call as one success or one failure.
func (b *base) fetch(ctx context.Context, url string) ([]byte, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	do := func() ([]byte, error) {
		return retry.DoWithResult(ctx, func() ([]byte, error) {
			return b.doGet(ctx, url)
		}, b.retryCfg)
	}

	if b.cb == nil {
		return do()
	}

	result, err := b.cb.Execute(func() (interface{}, error) {
		return do()
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (b *base) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, retry.Temporary(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Temporary(err)
	}

	if resp.StatusCode >= 500 {
		return nil, retry.Temporary(fmt.Errorf("http %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return nil, retry.Permanent(fmt.Errorf("http %d: %s", resp.StatusCode, string(body)))
	}

	return body, nil
}

func parseInt64OrZero(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// resolveCanonical translates a venue symbol to its canonical form,
// counting a symbol-map miss so a persistently unmapped venue symbol shows
// up in metrics instead of silently vanishing. A successful resolution also
// registers the (exchange, canonical, venueSymbol) tuple with the mapper so
// Intersection() can compute the cross-exchange target universe from
// instruments actually observed on the wire, not just the static rule table.
func (b *base) resolveCanonical(exchange, venueSymbol string) (string, bool) {
	canonical, ok := b.mapper.Canonical(exchange, venueSymbol)
	if !ok {
		metrics.SymbolMapFailuresTotal.WithLabelValues(exchange).Inc()
		return "", false
	}
	b.mapper.RegisterSymbol(exchange, canonical, venueSymbol)
	return canonical, true
}

// buildQuote validates bid/ask before constructing a Quote, enforcing the
// bid-less-than-or-equal-to-ask invariant and rejecting non-positive prices
// a flaky venue response can otherwise smuggle in.
func buildQuote(exchange, venueSymbol, canonical string, bid, ask, last float64, ts int64) (models.Quote, bool) {
	if utils.ValidatePrice(bid) != nil || utils.ValidatePrice(ask) != nil {
		return models.Quote{}, false
	}
	if bid > ask {
		return models.Quote{}, false
	}
	return models.Quote{
		Exchange:        exchange,
		VenueSymbol:     venueSymbol,
		CanonicalSymbol: canonical,
		Bid:             bid,
		Ask:             ask,
		Last:            last,
		TimestampMs:     ts,
	}, true
}

