// Package metrics exposes workflow and persistence counters to Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/garyjia/asset-console/internal/domain/entity"
	"github.com/garyjia/asset-console/internal/domain/event"
)

type Metrics struct {
	// Decisions counts applied workflow actions by outcome
	Decisions *prometheus.CounterVec

	// Persists counts snapshot writes, result is "ok" or "error"
	Persists *prometheus.CounterVec

	// MalformedChains counts approvals that fell back on a level gap
	MalformedChains *prometheus.CounterVec

	// ConfigChanges counts approval configuration saves and removals
	ConfigChanges *prometheus.CounterVec

	// BreakerState is 1 while a store circuit breaker is open
	BreakerState *prometheus.GaugeVec

	// Overdue is the number of pending records past their due date
	Overdue *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		Decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "console_workflow_decisions_total",
			Help: "Total number of applied workflow actions.",
		}, []string{"module", "action", "outcome"}),

		Persists: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "console_snapshot_persists_total",
			Help: "Total number of collection snapshot writes by result.",
		}, []string{"key", "result"}),

		MalformedChains: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "console_malformed_chain_total",
			Help: "Approvals resolved by the missing-level fallback.",
		}, []string{"module"}),

		ConfigChanges: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "console_approval_config_changes_total",
			Help: "Total number of approval configuration changes.",
		}, []string{"type"}),

		BreakerState: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "console_store_circuit_breaker_state",
			Help: "Current state of the store circuit breaker (0=closed, 1=open).",
		}, []string{"store"}),

		Overdue: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "console_overdue_records",
			Help: "Pending records past their SLA due date.",
		}, []string{"module"}),
	}
}

// Persisted records the outcome of a snapshot write
func (m *Metrics) Persisted(key string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Persists.WithLabelValues(key, result).Inc()
}

// SetOverdue replaces the overdue counts from the latest sweep
func (m *Metrics) SetOverdue(counts map[string]int) {
	m.Overdue.Reset()
	for mod, n := range counts {
		m.Overdue.WithLabelValues(mod).Set(float64(n))
	}
}

// StoreState tracks a breaker transition
func (m *Metrics) StoreState(name, state string) {
	v := 0.0
	if state == "open" {
		v = 1
	}
	m.BreakerState.WithLabelValues(name).Set(v)
}

// HandleDecision is a dispatcher handler for workflow.decided events
func (m *Metrics) HandleDecision(_ context.Context, evt *event.Event) error {
	action := evt.GetPayloadString(event.KeyAction)
	m.Decisions.WithLabelValues(evt.Module, action, outcome(evt.GetPayloadString(event.KeyStatus))).Inc()
	if evt.GetPayloadString(event.KeyAnomaly) != "" {
		m.MalformedChains.WithLabelValues(evt.Module).Inc()
	}
	return nil
}

// HandleConfigChange is a dispatcher handler for config events
func (m *Metrics) HandleConfigChange(_ context.Context, evt *event.Event) error {
	m.ConfigChanges.WithLabelValues(string(evt.Type)).Inc()
	return nil
}

// outcome folds pending statuses into one label value
func outcome(status string) string {
	switch status {
	case entity.StatusApproved, entity.StatusRejected, entity.StatusRevised:
		return status
	case "":
		return "unknown"
	default:
		return "Pending"
	}
}
