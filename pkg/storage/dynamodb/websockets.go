package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type connection struct {
	ConnectionId string `dynamodbav:"connection_id"`
	UserId       string `dynamodbav:"user_id"`
}

// AddConnection registers a websocket connection for a user.
func (s *Store) AddConnection(ctx context.Context, connectionID, userID string) error {
	_, err := s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.Tables.Connections),
		Item: map[string]types.AttributeValue{
			"connection_id": strAV(connectionID),
			"user_id":       strAV(userID),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add connection: %w", err)
	}
	return nil
}

// RemoveConnection forgets a websocket connection.
func (s *Store) RemoveConnection(ctx context.Context, connectionID string) error {
	_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.Tables.Connections),
		Key: map[string]types.AttributeValue{
			"connection_id": strAV(connectionID),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to remove connection: %w", err)
	}
	return nil
}

// GetConnectionsByUser lists the open connections of a user.
func (s *Store) GetConnectionsByUser(ctx context.Context, userID string) ([]string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Connections),
		IndexName:              aws.String(userIDIndex),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": strAV(userID),
		},
	}
	var conns []connection
	if err := s.query(ctx, input, &conns); err != nil {
		return nil, fmt.Errorf("failed to get connections: %w", err)
	}
	ids := make([]string, len(conns))
	for i, c := range conns {
		ids[i] = c.ConnectionId
	}
	return ids, nil
}
