package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordTick(t *testing.T) {
	ticks := testutil.ToFloat64(DefaultMetrics.TicksTotal)
	updated := testutil.ToFloat64(DefaultMetrics.TokensUpdated)

	RecordTick(4, 1, 0, 0.0001)

	if got := testutil.ToFloat64(DefaultMetrics.TicksTotal); got != ticks+1 {
		t.Errorf("ticks_total = %v, want %v", got, ticks+1)
	}
	if got := testutil.ToFloat64(DefaultMetrics.TokensUpdated); got != updated+4 {
		t.Errorf("tokens_updated_total = %v, want %v", got, updated+4)
	}
}

func TestRecordFilterChange(t *testing.T) {
	RecordFilterChange("migrated", 3)

	if got := testutil.ToFloat64(DefaultMetrics.ActiveFilters.WithLabelValues("migrated")); got != 3 {
		t.Errorf("active_rules{migrated} = %v, want 3", got)
	}
}

func TestRecordWSMessage(t *testing.T) {
	sent := testutil.ToFloat64(DefaultMetrics.WSMessagesSent)
	dropped := testutil.ToFloat64(DefaultMetrics.WSMessageDropped)

	RecordWSMessage(false)
	RecordWSMessage(true)
	RecordWSMessage(true)

	if got := testutil.ToFloat64(DefaultMetrics.WSMessagesSent); got != sent+1 {
		t.Errorf("messages_sent_total = %v, want %v", got, sent+1)
	}
	if got := testutil.ToFloat64(DefaultMetrics.WSMessageDropped); got != dropped+2 {
		t.Errorf("messages_dropped_total = %v, want %v", got, dropped+2)
	}
}
