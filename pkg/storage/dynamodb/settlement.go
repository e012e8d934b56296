package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
)

// AcquireSettlementLease moves a pool to settling and takes the settlement
// lease until now+lease. Only one worker can hold a live lease; an expired
// lease can be taken over so a crashed settlement resumes.
func (s *Store) AcquireSettlementLease(ctx context.Context, poolID string, now time.Time, lease time.Duration) (*models.Pool, error) {
	values := map[string]types.AttributeValue{
		":settling": strAV(string(models.PoolSettling)),
		":now":      numAV(now.Unix()),
		":until":    numAV(now.Add(lease).Unix()),
		":one":      numAV(1),
	}
	condition := "attribute_exists(id) AND attribute_not_exists(settled_at) AND " +
		inList("#status", "settleable", []string{string(models.PoolActive), string(models.PoolSettling)}, values) +
		" AND (attribute_not_exists(settlement_lease_until) OR settlement_lease_until < :now)"

	result, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(s.Tables.Pools),
		Key:                                 map[string]types.AttributeValue{"id": strAV(poolID)},
		UpdateExpression:                    aws.String("SET #status = :settling, settlement_lease_until = :until, version = version + :one"),
		ConditionExpression:                 aws.String(condition),
		ExpressionAttributeNames:            map[string]string{"#status": "status"},
		ExpressionAttributeValues:           values,
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, classifyLeaseFailure(poolID, ccf.Item)
		}
		return nil, fmt.Errorf("failed to acquire settlement lease: %w", err)
	}

	var pool models.Pool
	if err := attributevalue.UnmarshalMap(result.Attributes, &pool); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pool: %w", err)
	}
	return &pool, nil
}

// classifyLeaseFailure explains why the lease condition failed from the item
// as it was before the write.
func classifyLeaseFailure(poolID string, old map[string]types.AttributeValue) error {
	if len(old) == 0 {
		return fmt.Errorf("pool with ID %s: %w", poolID, storage.ErrNotFound)
	}
	var pool models.Pool
	if err := attributevalue.UnmarshalMap(old, &pool); err != nil {
		return fmt.Errorf("failed to unmarshal pool: %w", err)
	}
	switch {
	case pool.SettledAt != nil:
		return storage.ErrAlreadySettled
	case pool.Status != models.PoolActive && pool.Status != models.PoolSettling:
		return storage.ErrPoolNotSettleable
	default:
		return storage.ErrSettlementInProgress
	}
}

// MarkSettled completes a pool and releases the lease. It succeeds once.
func (s *Store) MarkSettled(ctx context.Context, poolID string, at time.Time, event *models.LedgerEvent) error {
	atAV, err := nowAV(at)
	if err != nil {
		return err
	}
	eventPut, err := s.eventPut(event)
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{
		{
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Pools),
				Key:                 map[string]types.AttributeValue{"id": strAV(poolID)},
				UpdateExpression:    aws.String("SET #status = :completed, settled_at = :at, version = version + :one REMOVE settlement_lease_until"),
				ConditionExpression: aws.String("attribute_exists(id) AND attribute_not_exists(settled_at)"),
				ExpressionAttributeNames: map[string]string{
					"#status": "status",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":completed": strAV(string(models.PoolCompleted)),
					":at":        atAV,
					":one":       numAV(1),
				},
			},
		},
		*eventPut,
	}

	if _, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		if conditionFailedAt(err, 0) {
			return storage.ErrAlreadySettled
		}
		return fmt.Errorf("failed to mark pool %s settled: %w", poolID, err)
	}
	return nil
}
