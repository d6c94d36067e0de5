package session

// Broadcaster is the gateway the coordinator pushes events through
// (defined here to avoid an import cycle with the transport). The
// implementation must deliver events to each recipient in the order
// they were submitted.
type Broadcaster interface {
	BroadcastToAll(event string, payload interface{})
	SendTo(connID string, event string, payload interface{})
}
