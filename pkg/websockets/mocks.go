package websockets

import "context"

// NoOpPublisher is a publisher that does nothing. Worker lambdas use it when
// no websocket endpoint is configured.
type NoOpPublisher struct{}

// Publish does nothing.
func (p *NoOpPublisher) Publish(ctx context.Context, userID string, message Message) error {
	return nil
}
