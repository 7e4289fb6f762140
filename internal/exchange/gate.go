package exchange

import (
	"context"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"arbitrage/internal/breaker"
	"arbitrage/internal/models"
	"arbitrage/internal/symbolmap"
	"arbitrage/pkg/ratelimit"
)

const gateBaseURL = "https://api.gateio.ws"

// Gate polls Gate.io's public USDT-settled perpetual futures tickers.
type Gate struct {
	base
}

func NewGate(mapper *symbolmap.Mapper, limiter *ratelimit.RateLimiter, cb *breaker.Breaker) *Gate {
	return &Gate{base: newBase(mapper, limiter, cb)}
}

func (g *Gate) Name() string { return "gate" }

func (g *Gate) FeeSchedule() models.FeeSchedule {
	return models.FeeSchedule{TakerPct: 0.0005, MakerPct: 0.0002}
}

func (g *Gate) PollInterval() time.Duration { return time.Second }

type gateTicker struct {
	Contract    string `json:"contract"`
	Last        string `json:"last"`
	LowestAsk   string `json:"lowest_ask"`
	HighestBid  string `json:"highest_bid"`
}

// Poll fetches every USDT-settled futures contract ticker in one request.
func (g *Gate) Poll(ctx context.Context, targets map[string]bool) ([]models.Quote, error) {
	body, err := g.fetch(ctx, gateBaseURL+"/api/v4/futures/usdt/tickers")
	if err != nil {
		return nil, &ExchangeError{Exchange: g.Name(), Message: "poll failed", Original: err}
	}

	var tickers []gateTicker
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &tickers); err != nil {
		return nil, &ExchangeError{Exchange: g.Name(), Message: "decode failed", Original: err}
	}

	now := models.NowMs()
	quotes := make([]models.Quote, 0, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(t.Contract, "_USDT") {
			continue
		}
		canonical, ok := g.resolveCanonical(g.Name(), t.Contract)
		if !ok {
			continue
		}
		if len(targets) > 0 && !targets[canonical] {
			continue
		}
		q, ok := buildQuote(g.Name(), t.Contract, canonical, parseFloatOrZero(t.HighestBid), parseFloatOrZero(t.LowestAsk), parseFloatOrZero(t.Last), now)
		if !ok {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}
