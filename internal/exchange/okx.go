package exchange

import (
	"context"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"arbitrage/internal/breaker"
	"arbitrage/internal/models"
	"arbitrage/internal/symbolmap"
	"arbitrage/pkg/ratelimit"
)

const okxBaseURL = "https://www.okx.com"

// OKX polls OKX's public USDT-margined perpetual swap tickers.
type OKX struct {
	base
}

// NewOKX builds an OKX adapter sharing the given symbol mapper, rate
// limiter and circuit breaker.
func NewOKX(mapper *symbolmap.Mapper, limiter *ratelimit.RateLimiter, cb *breaker.Breaker) *OKX {
	return &OKX{base: newBase(mapper, limiter, cb)}
}

func (o *OKX) Name() string { return "okx" }

func (o *OKX) FeeSchedule() models.FeeSchedule {
	return models.FeeSchedule{TakerPct: 0.0005, MakerPct: 0.0002}
}

func (o *OKX) PollInterval() time.Duration { return time.Second }

type okxTickerResp struct {
	Code string `json:"code"`
	Data []struct {
		InstId string `json:"instId"`
		BidPx  string `json:"bidPx"`
		AskPx  string `json:"askPx"`
		Last   string `json:"last"`
		Ts     string `json:"ts"`
	} `json:"data"`
}

// Poll fetches every USDT-margined swap ticker in one request.
func (o *OKX) Poll(ctx context.Context, targets map[string]bool) ([]models.Quote, error) {
	body, err := o.fetch(ctx, okxBaseURL+"/api/v5/market/tickers?instType=SWAP")
	if err != nil {
		return nil, &ExchangeError{Exchange: o.Name(), Message: "poll failed", Original: err}
	}

	var resp okxTickerResp
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &resp); err != nil {
		return nil, &ExchangeError{Exchange: o.Name(), Message: "decode failed", Original: err}
	}
	if resp.Code != "0" {
		return nil, &ExchangeError{Exchange: o.Name(), Message: "api error code " + resp.Code}
	}

	now := models.NowMs()
	quotes := make([]models.Quote, 0, len(resp.Data))
	for _, t := range resp.Data {
		if !strings.HasSuffix(t.InstId, "-USDT-SWAP") {
			continue
		}
		canonical, ok := o.resolveCanonical(o.Name(), t.InstId)
		if !ok {
			continue
		}
		if len(targets) > 0 && !targets[canonical] {
			continue
		}
		ts, _ := strconv.ParseInt(t.Ts, 10, 64)
		if ts == 0 {
			ts = now
		}
		q, ok := buildQuote(o.Name(), t.InstId, canonical, parseFloatOrZero(t.BidPx), parseFloatOrZero(t.AskPx), parseFloatOrZero(t.Last), ts)
		if !ok {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
