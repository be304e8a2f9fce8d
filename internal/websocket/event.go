package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is the action half of an event name
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
	EventTypeReady   EventType = "ready"
)

// EntityType is the subject half of an event name
type EntityType string

const (
	EntityTypeTransaction EntityType = "transaction"
	EntityTypeBudget      EntityType = "budget"
	EntityTypeConnection  EntityType = "connection"
)

// Event is the envelope pushed to dashboard clients:
// { type, entity, payload, timestamp }
type Event struct {
	Type      string     `json:"type"` // e.g. "budget.updated"
	Entity    EntityType `json:"entity"`
	Payload   any        `json:"payload"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewEvent builds an event named "<entity>.<type>" stamped with the current UTC time
func NewEvent(eventType EventType, entityType EntityType, payload any) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionCreated(payload any) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

func TransactionUpdated(payload any) Event {
	return NewEvent(EventTypeUpdated, EntityTypeTransaction, payload)
}

func TransactionDeleted(payload any) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransaction, payload)
}

func BudgetCreated(payload any) Event {
	return NewEvent(EventTypeCreated, EntityTypeBudget, payload)
}

func BudgetUpdated(payload any) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}

func BudgetDeleted(payload any) Event {
	return NewEvent(EventTypeDeleted, EntityTypeBudget, payload)
}

// ConnectionReady is the first event a client receives after it joins its workspace room
func ConnectionReady(clientID string, workspaceID int32) Event {
	return NewEvent(EventTypeReady, EntityTypeConnection, map[string]any{
		"clientId":    clientID,
		"workspaceId": workspaceID,
	})
}
