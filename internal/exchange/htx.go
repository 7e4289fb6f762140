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

const htxBaseURL = "https://api.hbdm.com"

// HTX polls Huobi/HTX's public linear (USDT-margined) swap tickers.
type HTX struct {
	base
}

func NewHTX(mapper *symbolmap.Mapper, limiter *ratelimit.RateLimiter, cb *breaker.Breaker) *HTX {
	return &HTX{base: newBase(mapper, limiter, cb)}
}

func (h *HTX) Name() string { return "htx" }

func (h *HTX) FeeSchedule() models.FeeSchedule {
	return models.FeeSchedule{TakerPct: 0.0005, MakerPct: 0.0002}
}

func (h *HTX) PollInterval() time.Duration { return time.Second }

type htxTickerResp struct {
	Status string `json:"status"`
	Ticks  []struct {
		ContractCode string    `json:"contract_code"`
		Bid          []float64 `json:"bid"`
		Ask          []float64 `json:"ask"`
		Close        float64   `json:"close"`
		Ts           int64     `json:"ts"`
	} `json:"ticks"`
}

// Poll fetches every USDT-margined linear swap ticker in one request.
func (h *HTX) Poll(ctx context.Context, targets map[string]bool) ([]models.Quote, error) {
	body, err := h.fetch(ctx, htxBaseURL+"/linear-swap-ex/market/detail/batch_merged?business_type=swap")
	if err != nil {
		return nil, &ExchangeError{Exchange: h.Name(), Message: "poll failed", Original: err}
	}

	var resp htxTickerResp
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &resp); err != nil {
		return nil, &ExchangeError{Exchange: h.Name(), Message: "decode failed", Original: err}
	}
	if resp.Status != "ok" {
		return nil, &ExchangeError{Exchange: h.Name(), Message: "api status: " + resp.Status}
	}

	now := models.NowMs()
	quotes := make([]models.Quote, 0, len(resp.Ticks))
	for _, t := range resp.Ticks {
		if !strings.HasSuffix(t.ContractCode, "-USDT") {
			continue
		}
		canonical, ok := h.resolveCanonical(h.Name(), t.ContractCode)
		if !ok {
			continue
		}
		if len(targets) > 0 && !targets[canonical] {
			continue
		}
		var bid, ask float64
		if len(t.Bid) > 0 {
			bid = t.Bid[0]
		}
		if len(t.Ask) > 0 {
			ask = t.Ask[0]
		}
		ts := t.Ts
		if ts == 0 {
			ts = now
		}
		q, ok := buildQuote(h.Name(), t.ContractCode, canonical, bid, ask, t.Close, ts)
		if !ok {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}
