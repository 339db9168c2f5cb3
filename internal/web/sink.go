package web

import "github.com/google/uuid"

// HubSink adapts the hub to the resource layer's event sink: record
// changes become websocket events for every connected dashboard.
type HubSink struct {
	hub *Hub
}

// NewHubSink creates a sink broadcasting through the given hub.
func NewHubSink(hub *Hub) *HubSink {
	return &HubSink{hub: hub}
}

// RecordChanged broadcasts a record change event.
func (s *HubSink) RecordChanged(entity, action string, id uuid.UUID) {
	var eventType string
	switch action {
	case "created":
		eventType = EventRecordCreated
	case "updated":
		eventType = EventRecordUpdated
	case "deleted":
		eventType = EventRecordDeleted
	default:
		return
	}
	s.hub.Broadcast(RecordEvent(eventType, entity, id))
}

// NotifyBroadcaster adapts the hub to the notifier contract so toasts
// reach connected dashboards too.
type NotifyBroadcaster struct {
	hub *Hub
}

// NewNotifyBroadcaster creates a hub-backed notifier.
func NewNotifyBroadcaster(hub *Hub) *NotifyBroadcaster {
	return &NotifyBroadcaster{hub: hub}
}

// Success broadcasts a success toast.
func (n *NotifyBroadcaster) Success(text string) {
	n.hub.Broadcast(NotifyEvent("success", text))
}

// Error broadcasts an error toast.
func (n *NotifyBroadcaster) Error(text string) {
	n.hub.Broadcast(NotifyEvent("error", text))
}
