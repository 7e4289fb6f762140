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

const bitgetBaseURL = "https://api.bitget.com"

// Bitget polls Bitget's public USDT-margined futures tickers.
type Bitget struct {
	base
}

func NewBitget(mapper *symbolmap.Mapper, limiter *ratelimit.RateLimiter, cb *breaker.Breaker) *Bitget {
	return &Bitget{base: newBase(mapper, limiter, cb)}
}

func (g *Bitget) Name() string { return "bitget" }

func (g *Bitget) FeeSchedule() models.FeeSchedule {
	return models.FeeSchedule{TakerPct: 0.0006, MakerPct: 0.0002}
}

func (g *Bitget) PollInterval() time.Duration { return time.Second }

type bitgetTickerResp struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Symbol string `json:"symbol"`
		BidPr  string `json:"bidPr"`
		AskPr  string `json:"askPr"`
		LastPr string `json:"lastPr"`
		Ts     string `json:"ts"`
	} `json:"data"`
}

// Poll fetches every USDT-margined futures ticker in one request.
func (g *Bitget) Poll(ctx context.Context, targets map[string]bool) ([]models.Quote, error) {
	body, err := g.fetch(ctx, bitgetBaseURL+"/api/v2/mix/market/tickers?productType=USDT-FUTURES")
	if err != nil {
		return nil, &ExchangeError{Exchange: g.Name(), Message: "poll failed", Original: err}
	}

	var resp bitgetTickerResp
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &resp); err != nil {
		return nil, &ExchangeError{Exchange: g.Name(), Message: "decode failed", Original: err}
	}
	if resp.Code != "00000" {
		return nil, &ExchangeError{Exchange: g.Name(), Message: "api error: " + resp.Msg}
	}

	now := models.NowMs()
	quotes := make([]models.Quote, 0, len(resp.Data))
	for _, t := range resp.Data {
		if !strings.HasSuffix(t.Symbol, "USDT") {
			continue
		}
		canonical, ok := g.resolveCanonical(g.Name(), t.Symbol)
		if !ok {
			continue
		}
		if len(targets) > 0 && !targets[canonical] {
			continue
		}
		ts := parseInt64OrZero(t.Ts)
		if ts == 0 {
			ts = now
		}
		q, ok := buildQuote(g.Name(), t.Symbol, canonical, parseFloatOrZero(t.BidPr), parseFloatOrZero(t.AskPr), parseFloatOrZero(t.LastPr), ts)
		if !ok {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}
