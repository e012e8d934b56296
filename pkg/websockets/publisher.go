package websockets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
)

// PostToConnectionAPI is the subset of the API Gateway management client used
// by the publisher.
type PostToConnectionAPI interface {
	PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error)
}

// DefaultPublisher pushes messages through the API Gateway management API.
type DefaultPublisher struct {
	store       ConnectionLookup
	connManager ConnectionManager
	apiGwClient PostToConnectionAPI
}

// NewPublisher creates a new DefaultPublisher for the given websocket endpoint.
func NewPublisher(ctx context.Context, store ConnectionLookup, connManager ConnectionManager, apiEndpoint string) (*DefaultPublisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	apiGwClient := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(apiEndpoint)
	})
	return NewPublisherWithClient(store, connManager, apiGwClient), nil
}

// NewPublisherWithClient creates a DefaultPublisher around an existing client.
func NewPublisherWithClient(store ConnectionLookup, connManager ConnectionManager, client PostToConnectionAPI) *DefaultPublisher {
	return &DefaultPublisher{
		store:       store,
		connManager: connManager,
		apiGwClient: client,
	}
}

// Publish sends a message to every connection of userID. A connection API
// Gateway reports as gone is pruned; other delivery failures are logged and
// do not fail the publish.
func (p *DefaultPublisher) Publish(ctx context.Context, userID string, message Message) error {
	connectionIDs, err := p.store.GetConnectionsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get connections for %s: %w", userID, err)
	}
	if len(connectionIDs) == 0 {
		return nil
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", message.Type, err)
	}

	delivered := 0
	for _, id := range connectionIDs {
		if p.deliver(ctx, id, payload) {
			delivered++
		}
	}
	slog.Debug("Published message", "user_id", userID, "type", message.Type, "delivered", delivered, "connections", len(connectionIDs))
	return nil
}

// deliver posts payload to one connection and reports whether it arrived.
func (p *DefaultPublisher) deliver(ctx context.Context, connectionID string, payload []byte) bool {
	in := &apigatewaymanagementapi.PostToConnectionInput{ConnectionId: aws.String(connectionID), Data: payload}
	_, err := p.apiGwClient.PostToConnection(ctx, in)
	if err == nil {
		return true
	}

	var gone *apigwtypes.GoneException
	if !errors.As(err, &gone) {
		slog.Warn("Post to connection failed", "connection_id", connectionID, "error", err)
		return false
	}
	slog.Info("Pruning gone connection", "connection_id", connectionID)
	if err := p.connManager.RemoveConnection(ctx, connectionID); err != nil {
		slog.Error("Failed to prune gone connection", "connection_id", connectionID, "error", err)
	}
	return false
}
