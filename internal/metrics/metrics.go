package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ledger"

// Ledger holds the collectors describing ledger activity. A nil *Ledger is a
// valid no-op recorder.
type Ledger struct {
	entries  *prometheus.CounterVec
	rejected prometheus.Counter
	accounts prometheus.Gauge
}

// NewLedger registers the ledger collectors on reg.
func NewLedger(reg prometheus.Registerer) *Ledger {
	factory := promauto.With(reg)
	return &Ledger{
		entries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_recorded_total",
			Help:      "Statement entries recorded, by entry type.",
		}, []string{"type"}),
		rejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "withdrawals_rejected_total",
			Help:      "Withdrawals refused for insufficient funds.",
		}),
		accounts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accounts",
			Help:      "Accounts currently registered.",
		}),
	}
}

// EntryRecorded counts one recorded entry of the given type.
func (m *Ledger) EntryRecorded(entryType string) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(entryType).Inc()
}

// WithdrawalRejected counts one withdrawal refused for lack of funds.
func (m *Ledger) WithdrawalRejected() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}

// SetAccounts records the current number of registered accounts.
func (m *Ledger) SetAccounts(n int) {
	if m == nil {
		return
	}
	m.accounts.Set(float64(n))
}

// Handler exposes the gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
