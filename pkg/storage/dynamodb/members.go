package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
)

// GetMember retrieves a pool membership.
func (s *Store) GetMember(ctx context.Context, poolID, userID string) (*models.Member, error) {
	var member models.Member
	key := map[string]string{"pool_id": poolID, "user_id": userID}
	if err := s.getItem(ctx, s.Tables.Members, key, &member); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("member %s of pool %s: %w", userID, poolID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &member, nil
}

// ListMembers retrieves every member of a pool in join order.
func (s *Store) ListMembers(ctx context.Context, poolID string) ([]models.Member, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Members),
		KeyConditionExpression: aws.String("pool_id = :pool_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pool_id": strAV(poolID),
		},
	}
	var members []models.Member
	if err := s.query(ctx, input, &members); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

// ListMembershipsByUser retrieves every membership of a user.
func (s *Store) ListMembershipsByUser(ctx context.Context, userID string) ([]models.Member, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Members),
		IndexName:              aws.String(userIDIndex),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": strAV(userID),
		},
	}
	var members []models.Member
	if err := s.query(ctx, input, &members); err != nil {
		return nil, fmt.Errorf("failed to list memberships by user: %w", err)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

// memberPut prepares a compare-and-swap replacement of a member record.
func (s *Store) memberPut(m *models.Member) (*types.Put, error) {
	next := *m
	next.Version = m.Version + 1
	av, err := attributevalue.MarshalMap(next)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal member: %w", err)
	}
	return &types.Put{
		TableName:           aws.String(s.Tables.Members),
		Item:                av,
		ConditionExpression: aws.String("version = :version"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":version": numAV(m.Version),
		},
	}, nil
}

// UpdateMember replaces a member record if nobody changed it since it was read.
func (s *Store) UpdateMember(ctx context.Context, m *models.Member) error {
	put, err := s.memberPut(m)
	if err != nil {
		return err
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 put.TableName,
		Item:                      put.Item,
		ConditionExpression:       put.ConditionExpression,
		ExpressionAttributeValues: put.ExpressionAttributeValues,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return storage.ErrVersionConflict
		}
		return fmt.Errorf("failed to update member: %w", err)
	}
	m.Version++
	return nil
}
