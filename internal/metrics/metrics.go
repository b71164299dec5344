// Package metrics provides prometheus instruments for permitdesk.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ticket allocation, permit transitions, deletions and
// transaction latency. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	TicketsAllocated    *prometheus.CounterVec
	AllocationRetries   *prometheus.CounterVec
	Transitions         *prometheus.CounterVec
	RejectedTransitions *prometheus.CounterVec
	Deletions           *prometheus.CounterVec
	TxDuration          *prometheus.HistogramVec
}

// New creates a Metrics instance registered on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		TicketsAllocated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "permitdesk_tickets_allocated_total",
			Help: "Total number of ticket numbers issued, by prefix",
		}, []string{"prefix"}),
		AllocationRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "permitdesk_allocation_retries_total",
			Help: "Units of work re-run after a ticket collision or busy database, by operation",
		}, []string{"op"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "permitdesk_status_transitions_total",
			Help: "Successful status transitions",
		}, []string{"from", "to"}),
		RejectedTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "permitdesk_status_transitions_rejected_total",
			Help: "Status transitions refused by the state machine or a concurrent change",
		}, []string{"from", "to"}),
		Deletions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "permitdesk_deletions_total",
			Help: "Rows removed by guarded deletes, by entity",
		}, []string{"entity"}),
		TxDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "permitdesk_tx_duration_seconds",
			Help:    "Duration of storage transactions",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"outcome"}),
	}
}

// IncrementTicketAllocated records one issued ticket.
func (m *Metrics) IncrementTicketAllocated(prefix string) {
	if m == nil {
		return
	}
	m.TicketsAllocated.WithLabelValues(prefix).Inc()
}

// IncrementAllocationRetry records one retried unit of work.
func (m *Metrics) IncrementAllocationRetry(op string) {
	if m == nil {
		return
	}
	m.AllocationRetries.WithLabelValues(op).Inc()
}

// IncrementTransition records a successful status change.
func (m *Metrics) IncrementTransition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

// IncrementRejectedTransition records a refused status change.
func (m *Metrics) IncrementRejectedTransition(from, to string) {
	if m == nil {
		return
	}
	m.RejectedTransitions.WithLabelValues(from, to).Inc()
}

// AddDeletions records n deleted rows of an entity type.
func (m *Metrics) AddDeletions(entity string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Deletions.WithLabelValues(entity).Add(float64(n))
}

// ObserveTx records the duration of a transaction.
// Call with time.Now() at the start of the transaction.
func (m *Metrics) ObserveTx(start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "commit"
	if err != nil {
		outcome = "rollback"
	}
	m.TxDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
