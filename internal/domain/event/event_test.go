package event

import (
	"testing"
	"time"
)

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      bool
	}{
		{"notice raised", TypeNoticeRaised, true},
		{"suppliers loaded", TypeSuppliersLoaded, true},
		{"quotations loaded", TypeQuotationsLoaded, true},
		{"load failed", TypeLoadFailed, true},
		{"selection changed", TypeSelectionChanged, true},
		{"response discarded", TypeResponseDiscarded, true},
		{"unknown type", Type("quotation.approved"), false},
		{"empty string", Type(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.want {
				t.Errorf("Type.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	evt := NewEvent(TypeNoticeRaised, map[string]interface{}{
		KeyKind:  "warning",
		KeyTitle: "No quotations found",
	})

	if evt.ID == "" {
		t.Error("Event ID should not be empty")
	}
	if evt.CorrelationID == "" {
		t.Error("Event CorrelationID should not be empty")
	}
	if evt.ID == evt.CorrelationID {
		t.Error("Event ID and CorrelationID should differ")
	}
	if evt.Type != TypeNoticeRaised {
		t.Errorf("Event Type = %v, want %v", evt.Type, TypeNoticeRaised)
	}
	if time.Since(evt.Timestamp) > time.Second {
		t.Error("Event Timestamp should be recent")
	}
	if evt.GetPayloadString(KeyTitle) != "No quotations found" {
		t.Errorf("title = %q", evt.GetPayloadString(KeyTitle))
	}
}

func TestNewEvent_NilPayload(t *testing.T) {
	evt := NewEvent(TypeSelectionChanged, nil)

	if evt.Payload == nil {
		t.Fatal("Payload should be initialised")
	}
}

func TestNewEventWithCorrelation(t *testing.T) {
	evt := NewEventWithCorrelation(TypeQuotationsLoaded, nil, "corr-1")

	if evt.CorrelationID != "corr-1" {
		t.Errorf("CorrelationID = %v, want corr-1", evt.CorrelationID)
	}
}

func TestEvent_WithPayload(t *testing.T) {
	original := NewEvent(TypeLoadFailed, map[string]interface{}{KeyDataSet: "suppliers"})

	modified := original.WithPayload(KeyError, "timeout")

	if _, exists := original.Payload[KeyError]; exists {
		t.Error("Original event should not be modified")
	}
	if modified.GetPayloadString(KeyDataSet) != "suppliers" {
		t.Error("Modified event should retain original payload")
	}
	if modified.GetPayloadString(KeyError) != "timeout" {
		t.Error("Modified event should have new payload")
	}
	if modified.ID != original.ID || modified.CorrelationID != original.CorrelationID {
		t.Error("Modified event should keep identity")
	}
}

func TestEvent_GetPayloadInt(t *testing.T) {
	evt := NewEvent(TypeQuotationsLoaded, map[string]interface{}{
		"int64":   int64(100),
		"int":     50,
		"uint64":  uint64(7),
		"float64": 75.5,
		"string":  "3",
	})

	tests := []struct {
		key  string
		want int64
	}{
		{"int64", 100},
		{"int", 50},
		{"uint64", 7},
		{"float64", 75},
		{"string", 0},
		{"missing", 0},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := evt.GetPayloadInt(tt.key); got != tt.want {
				t.Errorf("GetPayloadInt(%v) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
