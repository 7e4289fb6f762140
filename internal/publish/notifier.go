package publish

import (
	"go.uber.org/zap"

	"arbitrage/internal/models"
)

// LogNotifier is the default models.NotifierPort: it turns every notable
// event into a structured log line. It exists so the engine and status
// tracker always have somewhere to send events, even when no external
// alerting sink (e.g. a chat bot) is configured.
type LogNotifier struct {
	log *zap.SugaredLogger
}

// NewLogNotifier builds a LogNotifier. log may be nil, in which case Notify
// is a no-op.
func NewLogNotifier(log *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the event at a level matching its severity.
func (n *LogNotifier) Notify(event models.NotifierEvent) {
	if n.log == nil {
		return
	}

	fields := []interface{}{
		"kind", event.Kind,
		"symbol", event.Symbol,
		"timestamp_ms", event.TimestampMs,
	}
	if event.Opportunity != nil {
		netProfit := event.Opportunity.GrossProfitUSDT - event.Opportunity.TotalFeesUSDT
		fields = append(fields,
			"buy_exchange", event.Opportunity.BuyExchange,
			"sell_exchange", event.Opportunity.SellExchange,
			"net_profit_usdt", netProfit,
			"spread_pct", event.Opportunity.SpreadPct,
		)
	}

	switch event.Severity {
	case "error":
		n.log.Errorw(event.Message, fields...)
	case "warn":
		n.log.Warnw(event.Message, fields...)
	default:
		n.log.Infow(event.Message, fields...)
	}
}
