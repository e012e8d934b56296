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

// RecordTransaction appends a transaction. A repeated id is rejected.
func (s *Store) RecordTransaction(ctx context.Context, tx *models.Transaction) error {
	put, err := s.transactionPut(tx)
	if err != nil {
		return err
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           put.Put.TableName,
		Item:                put.Put.Item,
		ConditionExpression: put.Put.ConditionExpression,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return storage.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to put transaction in DynamoDB: %w", err)
	}
	return nil
}

func (s *Store) transactionsBy(ctx context.Context, index, attr, value string) ([]models.Transaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Transactions),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(fmt.Sprintf("%s = :value", attr)),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value": strAV(value),
		},
	}
	var txs []models.Transaction
	if err := s.query(ctx, input, &txs); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].CreatedAt.Before(txs[j].CreatedAt) })
	return txs, nil
}

// ListTransactionsByUser retrieves a user's transactions in creation order.
func (s *Store) ListTransactionsByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.transactionsBy(ctx, userIDIndex, "user_id", userID)
}

// ListTransactionsByPool retrieves a pool's transactions in creation order.
func (s *Store) ListTransactionsByPool(ctx context.Context, poolID string) ([]models.Transaction, error) {
	return s.transactionsBy(ctx, poolIDIndex, "pool_id", poolID)
}

// GetProfile retrieves a user profile.
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.getItem(ctx, s.Tables.Profiles, map[string]string{"user_id": userID}, &profile); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("profile for user ID %s: %w", userID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// CreateProfile stores a new profile.
func (s *Store) CreateProfile(ctx context.Context, profile *models.Profile) error {
	av, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Profiles),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return storage.ErrProfileExists
		}
		return fmt.Errorf("failed to create profile in DynamoDB: %w", err)
	}
	return nil
}

// CreditProfile records credit.Tx and applies it to the user's profile in one
// transaction. The transaction id is the idempotency key: a repeated credit
// returns false and changes nothing.
func (s *Store) CreditProfile(ctx context.Context, credit storage.ProfileCredit) (bool, error) {
	txPut, err := s.transactionPut(credit.Tx)
	if err != nil {
		return false, err
	}
	createdAV, err := nowAV(credit.Tx.CreatedAt)
	if err != nil {
		return false, err
	}
	won := int64(0)
	if credit.PoolWon {
		won = 1
	}

	items := []types.TransactWriteItem{
		// Operation 1: Record the transaction, once.
		*txPut,
		{
			// Operation 2: Apply it to the profile, creating the profile if needed.
			Update: &types.Update{
				TableName: aws.String(s.Tables.Profiles),
				Key:       map[string]types.AttributeValue{"user_id": strAV(credit.Tx.UserId)},
				UpdateExpression: aws.String("SET balance = if_not_exists(balance, :zero) + :amount, " +
					"total_sol_earned = if_not_exists(total_sol_earned, :zero) + :earned, " +
					"total_pools_won = if_not_exists(total_pools_won, :zero) + :won, " +
					"version = if_not_exists(version, :zero) + :one, " +
					"created_at = if_not_exists(created_at, :created_at)"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":zero":       numAV(0),
					":one":        numAV(1),
					":amount":     numAV(credit.Tx.Amount),
					":earned":     numAV(credit.Earned),
					":won":        numAV(won),
					":created_at": createdAV,
				},
			},
		},
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if conditionFailedAt(err, 0) {
			return false, nil
		}
		return false, fmt.Errorf("failed to credit profile: %w", err)
	}
	return true, nil
}
