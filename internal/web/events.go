package web

import (
	"encoding/json"

	"github.com/google/uuid"
)

// WebSocket event types
const (
	EventRecordCreated = "resource.created"
	EventRecordUpdated = "resource.updated"
	EventRecordDeleted = "resource.deleted"
	EventRefreshed     = "resource.refreshed"
	EventNotify        = "notify"
)

// WSEvent represents a structured WebSocket message
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// RecordPayload is the payload for record change events
type RecordPayload struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

// RefreshedPayload is the payload for EventRefreshed
type RefreshedPayload struct {
	Entity string `json:"entity"`
	State  string `json:"state"`
	Count  int    `json:"count"`
}

// NotifyPayload is the payload for EventNotify
type NotifyPayload struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// RecordEvent creates a JSON message for a record change
func RecordEvent(eventType, entity string, id uuid.UUID) []byte {
	evt := WSEvent{
		Type: eventType,
		Payload: RecordPayload{
			Entity: entity,
			ID:     id.String(),
		},
	}
	b, _ := json.Marshal(evt)
	return b
}

// RefreshedEvent creates a JSON message for a completed collection fetch
func RefreshedEvent(entity, state string, count int) []byte {
	evt := WSEvent{
		Type: EventRefreshed,
		Payload: RefreshedPayload{
			Entity: entity,
			State:  state,
			Count:  count,
		},
	}
	b, _ := json.Marshal(evt)
	return b
}

// NotifyEvent creates a JSON message for an operator notification
func NotifyEvent(level, text string) []byte {
	evt := WSEvent{
		Type: EventNotify,
		Payload: NotifyPayload{
			Level: level,
			Text:  text,
		},
	}
	b, _ := json.Marshal(evt)
	return b
}
