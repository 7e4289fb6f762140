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

const bingxBaseURL = "https://open-api.bingx.com"

// BingX polls BingX's public USDT-margined perpetual swap tickers.
type BingX struct {
	base
}

func NewBingX(mapper *symbolmap.Mapper, limiter *ratelimit.RateLimiter, cb *breaker.Breaker) *BingX {
	return &BingX{base: newBase(mapper, limiter, cb)}
}

func (x *BingX) Name() string { return "bingx" }

func (x *BingX) FeeSchedule() models.FeeSchedule {
	return models.FeeSchedule{TakerPct: 0.0005, MakerPct: 0.0002}
}

func (x *BingX) PollInterval() time.Duration { return time.Second }

type bingxTickerResp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
		BidPrice  string `json:"bidPrice"`
		AskPrice  string `json:"askPrice"`
	} `json:"data"`
}

// Poll fetches every USDT-margined perpetual ticker in one request.
func (x *BingX) Poll(ctx context.Context, targets map[string]bool) ([]models.Quote, error) {
	body, err := x.fetch(ctx, bingxBaseURL+"/openApi/swap/v2/quote/ticker")
	if err != nil {
		return nil, &ExchangeError{Exchange: x.Name(), Message: "poll failed", Original: err}
	}

	var resp bingxTickerResp
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &resp); err != nil {
		return nil, &ExchangeError{Exchange: x.Name(), Message: "decode failed", Original: err}
	}
	if resp.Code != 0 {
		return nil, &ExchangeError{Exchange: x.Name(), Message: "api error: " + resp.Msg}
	}

	now := models.NowMs()
	quotes := make([]models.Quote, 0, len(resp.Data))
	for _, t := range resp.Data {
		if !strings.HasSuffix(t.Symbol, "USDT") {
			continue
		}
		canonical, ok := x.resolveCanonical(x.Name(), t.Symbol)
		if !ok {
			continue
		}
		if len(targets) > 0 && !targets[canonical] {
			continue
		}
		q, ok := buildQuote(x.Name(), t.Symbol, canonical, parseFloatOrZero(t.BidPrice), parseFloatOrZero(t.AskPrice), parseFloatOrZero(t.LastPrice), now)
		if !ok {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}
