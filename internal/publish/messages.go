package publish

import "arbitrage/internal/models"

// OpportunitySnapshotMessage is pushed on every new evaluation tick.
type OpportunitySnapshotMessage struct {
	Type          string               `json:"type"`
	Opportunities []models.Opportunity `json:"opportunities"`
	TimestampMs   int64                `json:"timestamp_ms"`
}

// ExchangeStatusMessage carries every exchange's current status; the server
// pushes one after every evaluation tick, whether or not a status changed.
type ExchangeStatusMessage struct {
	Type     string                           `json:"type"`
	Statuses map[string]models.ExchangeStatus `json:"statuses"`
}

const (
	messageTypeOpportunitySnapshot = "opportunity_snapshot"
	messageTypeExchangeStatus      = "exchange_status"
)

func newOpportunitySnapshotMessage(opportunities []models.Opportunity, nowMs int64) *OpportunitySnapshotMessage {
	return &OpportunitySnapshotMessage{
		Type:          messageTypeOpportunitySnapshot,
		Opportunities: opportunities,
		TimestampMs:   nowMs,
	}
}

func newExchangeStatusMessage(statuses map[string]models.ExchangeStatus) *ExchangeStatusMessage {
	return &ExchangeStatusMessage{
		Type:     messageTypeExchangeStatus,
		Statuses: statuses,
	}
}
