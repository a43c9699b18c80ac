package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/asset-console/internal/domain/event"
)

func TestHandleDecision(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	events := []*event.Event{
		event.NewEvent(event.TypeWorkflowDecided, "VEHICLE", "r1", map[string]interface{}{
			event.KeyAction: "Approve", event.KeyStatus: "Pending Approval - Branch Manager",
		}),
		event.NewEvent(event.TypeWorkflowDecided, "VEHICLE", "r1", map[string]interface{}{
			event.KeyAction: "Approve", event.KeyStatus: "Pending Approval - Regional Head",
		}),
		event.NewEvent(event.TypeWorkflowDecided, "VEHICLE", "r2", map[string]interface{}{
			event.KeyAction: "Approve", event.KeyStatus: "Approved", event.KeyAnomaly: "malformed approval configuration",
		}),
		event.NewEvent(event.TypeWorkflowDecided, "ATK_REQ", "r3", map[string]interface{}{
			event.KeyAction: "Reject", event.KeyStatus: "Rejected",
		}),
	}
	for _, evt := range events {
		require.NoError(t, m.HandleDecision(ctx, evt))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Decisions.WithLabelValues("VEHICLE", "Approve", "Pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues("VEHICLE", "Approve", "Approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues("ATK_REQ", "Reject", "Rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MalformedChains.WithLabelValues("VEHICLE")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.MalformedChains.WithLabelValues("ATK_REQ")))
}

func TestPersisted(t *testing.T) {
	m := NewMetrics(nil)

	m.Persisted("vehicleData", nil)
	m.Persisted("vehicleData", nil)
	m.Persisted("vehicleData", errors.New("disk full"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Persists.WithLabelValues("vehicleData", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Persists.WithLabelValues("vehicleData", "error")))
}

func TestStoreStateAndConfigChanges(t *testing.T) {
	m := NewMetrics(nil)

	m.StoreState("sqlite", "open")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("sqlite")))
	m.StoreState("sqlite", "half-open")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("sqlite")))

	require.NoError(t, m.HandleConfigChange(context.Background(), event.NewEvent(event.TypeConfigSaved, "", "cfg-1", nil)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigChanges.WithLabelValues("config.saved")))
}

func TestSetOverdueReplacesPreviousSweep(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SetOverdue(map[string]int{"VEHICLE": 2, "ATK_REQ": 1})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Overdue.WithLabelValues("VEHICLE")))

	m.SetOverdue(map[string]int{"ATK_REQ": 3})
	assert.Equal(t, 1, testutil.CollectAndCount(m.Overdue))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Overdue.WithLabelValues("ATK_REQ")))
}

func TestNewMetrics_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}
