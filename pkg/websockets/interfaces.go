package websockets

import (
	"context"
)

// ConnectionManager defines the interface for managing WebSocket connections.
type ConnectionManager interface {
	AddConnection(ctx context.Context, connectionID, userID string) error
	RemoveConnection(ctx context.Context, connectionID string) error
}

// ConnectionLookup resolves the open connections of a user.
type ConnectionLookup interface {
	GetConnectionsByUser(ctx context.Context, userID string) ([]string, error)
}

// Publisher defines the interface for publishing messages to WebSocket clients.
type Publisher interface {
	// Publish delivers message to every open connection of userID. Delivery is
	// best effort; a user with no connections is not an error.
	Publish(ctx context.Context, userID string, message Message) error
}
