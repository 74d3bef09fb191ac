package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReconciliationMetrics tracks the outcome counts of backfill runs.
type ReconciliationMetrics struct {
	ledgerEntries prometheus.Counter
	events        prometheus.Counter
	skipped       prometheus.Counter
}

// NewReconciliationMetrics registers the reconciliation counters on the
// provided registerer.
func NewReconciliationMetrics(reg prometheus.Registerer) *ReconciliationMetrics {
	if reg == nil {
		return &ReconciliationMetrics{}
	}
	ledgerEntries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reconciliation_ledger_entries_created_total",
		Help: "Ledger entries created by backfill runs.",
	})
	events := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reconciliation_events_created_total",
		Help: "Order status events synthesized by backfill runs.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reconciliation_orders_skipped_total",
		Help: "Orders skipped by backfill runs for manual review.",
	})
	reg.MustRegister(ledgerEntries, events, skipped)
	return &ReconciliationMetrics{
		ledgerEntries: ledgerEntries,
		events:        events,
		skipped:       skipped,
	}
}

// AddLedgerEntries adds to the created ledger entry count.
func (m *ReconciliationMetrics) AddLedgerEntries(n int) {
	if m == nil || m.ledgerEntries == nil || n <= 0 {
		return
	}
	m.ledgerEntries.Add(float64(n))
}

// AddEvents adds to the synthesized event count.
func (m *ReconciliationMetrics) AddEvents(n int) {
	if m == nil || m.events == nil || n <= 0 {
		return
	}
	m.events.Add(float64(n))
}

// AddSkipped adds to the skipped order count.
func (m *ReconciliationMetrics) AddSkipped(n int) {
	if m == nil || m.skipped == nil || n <= 0 {
		return
	}
	m.skipped.Add(float64(n))
}
