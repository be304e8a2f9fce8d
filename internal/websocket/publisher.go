package websocket

// EventPublisher pushes events to the clients of one workspace
type EventPublisher interface {
	Publish(workspaceID int32, event Event)
}

var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event to the workspace
func (h *Hub) Publish(workspaceID int32, event Event) {
	h.Broadcast(workspaceID, event)
}

// NoOpPublisher discards every event
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(workspaceID int32, event Event) {}
