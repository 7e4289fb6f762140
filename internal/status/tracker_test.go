package status

import (
	"errors"
	"testing"

	"arbitrage/internal/models"
)

type recordingNotifier struct {
	events []models.NotifierEvent
}

func (n *recordingNotifier) Notify(e models.NotifierEvent) {
	n.events = append(n.events, e)
}

func TestNew_PrePopulatesDisconnected(t *testing.T) {
	tr := New([]string{"okx", "bybit"}, nil)
	snap := tr.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snap))
	}
	if snap["okx"].Connected {
		t.Error("expected a freshly built tracker to report disconnected")
	}
}

func TestRecordSuccess_UpdatesFields(t *testing.T) {
	tr := New([]string{"okx"}, nil)
	tr.RecordSuccess("okx", 1000, 5)

	st := tr.Snapshot()["okx"]
	if !st.Connected || st.LastUpdateMs != 1000 || st.QuoteCount != 5 {
		t.Errorf("unexpected status after success: %+v", st)
	}
}

func TestRecordError_IncrementsErrorCount(t *testing.T) {
	tr := New([]string{"okx"}, nil)
	tr.RecordError("okx", errors.New("boom"))
	tr.RecordError("okx", errors.New("boom again"))

	st := tr.Snapshot()["okx"]
	if st.Connected || st.ErrorCount != 2 || st.LastError != "boom again" {
		t.Errorf("unexpected status after errors: %+v", st)
	}
}

func TestNotifier_FiresOnlyOnTransition(t *testing.T) {
	n := &recordingNotifier{}
	tr := New([]string{"okx"}, n)

	tr.RecordSuccess("okx", 1000, 1)
	tr.RecordSuccess("okx", 2000, 1) // still connected, no second event
	tr.RecordError("okx", errors.New("down"))
	tr.RecordError("okx", errors.New("still down")) // still disconnected, no second event
	tr.RecordSuccess("okx", 3000, 1)

	if len(n.events) != 3 {
		t.Fatalf("expected exactly 3 transition events, got %d: %+v", len(n.events), n.events)
	}
	if n.events[0].Kind != "exchange_connected" {
		t.Errorf("expected first event to be exchange_connected, got %s", n.events[0].Kind)
	}
	if n.events[1].Kind != "exchange_disconnected" {
		t.Errorf("expected second event to be exchange_disconnected, got %s", n.events[1].Kind)
	}
	if n.events[2].Kind != "exchange_connected" {
		t.Errorf("expected third event to be exchange_connected, got %s", n.events[2].Kind)
	}
}
