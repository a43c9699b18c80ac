package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      bool
	}{
		{"workflow decided", TypeWorkflowDecided, true},
		{"record created", TypeRecordCreated, true},
		{"record updated", TypeRecordUpdated, true},
		{"record deleted", TypeRecordDeleted, true},
		{"config saved", TypeConfigSaved, true},
		{"config removed", TypeConfigRemoved, true},
		{"unknown type", Type("instance.created"), false},
		{"empty string", Type(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.eventType.IsValid())
		})
	}
}

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{KeyStatus: "Approved"}
	e := NewEvent(TypeWorkflowDecided, "VEHICLE", "veh-1", payload)

	_, err := uuid.Parse(e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, e.CorrelationID)
	assert.Equal(t, "VEHICLE", e.Module)
	assert.Equal(t, "veh-1", e.RecordID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, "Approved", e.GetPayloadString(KeyStatus))

	other := NewEvent(TypeWorkflowDecided, "VEHICLE", "veh-1", nil)
	assert.NotEqual(t, e.ID, other.ID)
}

func TestNewEventWithCorrelation(t *testing.T) {
	e := NewEventWithCorrelation(TypeRecordCreated, "TAX", "tax-9", nil, "corr-123")
	assert.Equal(t, "corr-123", e.CorrelationID)
	assert.NotEqual(t, "corr-123", e.ID)
}

func TestEvent_WithPayload(t *testing.T) {
	original := NewEvent(TypeWorkflowDecided, "SALES", "s-1", map[string]interface{}{KeyAction: "Approve"})
	updated := original.WithPayload(KeyTier, 2)

	assert.NotContains(t, original.Payload, KeyTier)
	assert.Equal(t, int64(2), updated.GetPayloadInt(KeyTier))
	assert.Equal(t, "Approve", updated.GetPayloadString(KeyAction))
	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, original.Timestamp, updated.Timestamp)
}

func TestEvent_PayloadGetters(t *testing.T) {
	e := NewEvent(TypeWorkflowDecided, "SALES", "s-1", map[string]interface{}{
		"str":   "value",
		"int":   3,
		"int64": int64(4),
		"float": float64(5),
		"bool":  true,
	})

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"string", e.GetPayloadString("str"), "value"},
		{"string wrong type", e.GetPayloadString("int"), ""},
		{"string missing", e.GetPayloadString("missing"), ""},
		{"int", e.GetPayloadInt("int"), int64(3)},
		{"int64", e.GetPayloadInt("int64"), int64(4)},
		{"float as int", e.GetPayloadInt("float"), int64(5)},
		{"int missing", e.GetPayloadInt("missing"), int64(0)},
		{"bool", e.GetPayloadBool("bool"), true},
		{"bool wrong type", e.GetPayloadBool("str"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
