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

const bybitBaseURL = "https://api.bybit.com"

// Bybit polls Bybit's public linear-perpetual tickers.
type Bybit struct {
	base
}

func NewBybit(mapper *symbolmap.Mapper, limiter *ratelimit.RateLimiter, cb *breaker.Breaker) *Bybit {
	return &Bybit{base: newBase(mapper, limiter, cb)}
}

func (b *Bybit) Name() string { return "bybit" }

func (b *Bybit) FeeSchedule() models.FeeSchedule {
	return models.FeeSchedule{TakerPct: 0.0006, MakerPct: 0.0001}
}

func (b *Bybit) PollInterval() time.Duration { return time.Second }

type bybitTickerResp struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			Symbol    string `json:"symbol"`
			Bid1Price string `json:"bid1Price"`
			Ask1Price string `json:"ask1Price"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	} `json:"result"`
}

// Poll fetches every linear USDT perpetual ticker in one request.
func (b *Bybit) Poll(ctx context.Context, targets map[string]bool) ([]models.Quote, error) {
	body, err := b.fetch(ctx, bybitBaseURL+"/v5/market/tickers?category=linear")
	if err != nil {
		return nil, &ExchangeError{Exchange: b.Name(), Message: "poll failed", Original: err}
	}

	var resp bybitTickerResp
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &resp); err != nil {
		return nil, &ExchangeError{Exchange: b.Name(), Message: "decode failed", Original: err}
	}
	if resp.RetCode != 0 {
		return nil, &ExchangeError{Exchange: b.Name(), Message: "api error: " + resp.RetMsg}
	}

	now := models.NowMs()
	quotes := make([]models.Quote, 0, len(resp.Result.List))
	for _, t := range resp.Result.List {
		if !strings.HasSuffix(t.Symbol, "USDT") {
			continue
		}
		canonical, ok := b.resolveCanonical(b.Name(), t.Symbol)
		if !ok {
			continue
		}
		if len(targets) > 0 && !targets[canonical] {
			continue
		}
		q, ok := buildQuote(b.Name(), t.Symbol, canonical, parseFloatOrZero(t.Bid1Price), parseFloatOrZero(t.Ask1Price), parseFloatOrZero(t.LastPrice), now)
		if !ok {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}
