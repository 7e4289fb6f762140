package models

// NotifierEvent is a single notable occurrence handed to a NotifierPort: a
// newly stable opportunity, or an exchange status transition.
type NotifierEvent struct {
	Kind        string // "opportunity_stable" | "exchange_connected" | "exchange_disconnected"
	Severity    string // "info" | "warn" | "error"
	Symbol      string
	Opportunity *Opportunity
	Message     string
	TimestampMs int64
}

// NotifierPort is the output port for the system's optional alerting sink
// (e.g. a Telegram bot). The HTTP/WebSocket server surface and any concrete
// external sink are out of scope; this interface and the logging
// implementation in internal/publish are the only part of the notifier that
// belongs to the core.
type NotifierPort interface {
	Notify(NotifierEvent)
}
