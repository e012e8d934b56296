package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
)

// CreatePool atomically writes the pool, the creator's membership and the
// first ledger events.
func (s *Store) CreatePool(ctx context.Context, pool *models.Pool, creator *models.Member, deposit *models.Transaction) error {
	poolAV, err := attributevalue.MarshalMap(pool)
	if err != nil {
		return fmt.Errorf("failed to marshal pool: %w", err)
	}
	memberAV, err := attributevalue.MarshalMap(creator)
	if err != nil {
		return fmt.Errorf("failed to marshal member: %w", err)
	}
	created, err := s.eventPut(&models.LedgerEvent{PoolId: pool.Id, Kind: models.EventPoolCreated, UserId: pool.CreatorId, Timestamp: pool.CreatedAt})
	if err != nil {
		return err
	}
	joined, err := s.eventPut(&models.LedgerEvent{PoolId: pool.Id, Kind: models.EventMemberJoined, UserId: creator.UserId, Amount: creator.StakeAmount, Timestamp: creator.JoinedAt.Add(time.Nanosecond)})
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: Create the pool.
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Pools),
				Item:                poolAV,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		},
		{
			// Operation 2: Enroll the creator.
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Members),
				Item:                memberAV,
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			},
		},
		*created,
		*joined,
	}
	if deposit != nil {
		depositPut, err := s.transactionPut(deposit)
		if err != nil {
			return err
		}
		items = append(items, *depositPut)
	}

	if _, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		return fmt.Errorf("failed to execute pool creation: %w", err)
	}
	return nil
}

// GetPool retrieves a pool from DynamoDB by its ID.
func (s *Store) GetPool(ctx context.Context, poolID string) (*models.Pool, error) {
	var pool models.Pool
	if err := s.getItem(ctx, s.Tables.Pools, map[string]string{"id": poolID}, &pool); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("pool with ID %s: %w", poolID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	return &pool, nil
}

// ListPools retrieves pools in a given status, or all pools when status is empty.
func (s *Store) ListPools(ctx context.Context, status models.PoolStatus) ([]models.Pool, error) {
	var pools []models.Pool
	if status == "" {
		input := &dynamodb.ScanInput{TableName: aws.String(s.Tables.Pools)}
		for {
			result, err := s.Client.Scan(ctx, input)
			if err != nil {
				return nil, fmt.Errorf("failed to scan pools table: %w", err)
			}
			var page []models.Pool
			if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
				return nil, fmt.Errorf("failed to unmarshal pools: %w", err)
			}
			pools = append(pools, page...)
			if len(result.LastEvaluatedKey) == 0 {
				break
			}
			input.ExclusiveStartKey = result.LastEvaluatedKey
		}
		sort.Slice(pools, func(i, j int) bool { return pools[i].CreatedAt.Before(pools[j].CreatedAt) })
		return pools, nil
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Pools),
		IndexName:              aws.String(statusCreatedAtIndex),
		KeyConditionExpression: aws.String("#status = :status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": strAV(string(status)),
		},
	}
	if err := s.query(ctx, input, &pools); err != nil {
		return nil, fmt.Errorf("failed to list pools by status: %w", err)
	}
	return pools, nil
}

// ListPoolEvents retrieves the ledger events of a pool in append order.
func (s *Store) ListPoolEvents(ctx context.Context, poolID string) ([]models.LedgerEvent, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Events),
		KeyConditionExpression: aws.String("pool_id = :pool_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pool_id": strAV(poolID),
		},
		ScanIndexForward: aws.Bool(true),
	}
	var events []models.LedgerEvent
	if err := s.query(ctx, input, &events); err != nil {
		return nil, fmt.Errorf("failed to list pool events: %w", err)
	}
	return events, nil
}

// AddMember appends a join to the pool ledger and updates the pool's counters
// in the same transaction. The pool update is guarded by the snapshot version
// and the capacity check, so concurrent joins can never lose an update or
// overfill the pool.
func (s *Store) AddMember(ctx context.Context, join *storage.JoinWrite) error {
	memberAV, err := attributevalue.MarshalMap(join.Member)
	if err != nil {
		return fmt.Errorf("failed to marshal member: %w", err)
	}

	values := map[string]types.AttributeValue{
		":one":     numAV(1),
		":stake":   numAV(join.Member.StakeAmount),
		":version": numAV(join.Pool.Version),
	}
	condition := "version = :version AND current_players < max_players AND " +
		inList("#status", "joinable", []string{string(models.PoolWaiting), string(models.PoolActive)}, values)
	update := "SET current_players = current_players + :one, pot_size = pot_size + :stake, version = version + :one"
	if join.Activate {
		startedAV, err := nowAV(join.At)
		if err != nil {
			return err
		}
		endsAV, err := nowAV(join.EndsAt)
		if err != nil {
			return err
		}
		values[":active"] = strAV(string(models.PoolActive))
		values[":started_at"] = startedAV
		values[":ends_at"] = endsAV
		update += ", #status = :active, started_at = :started_at, ends_at = :ends_at"
	}

	joined, err := s.eventPut(&models.LedgerEvent{PoolId: join.Pool.Id, Kind: models.EventMemberJoined, UserId: join.Member.UserId, Amount: join.Member.StakeAmount, Timestamp: join.At})
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: Update the pool read model.
			Update: &types.Update{
				TableName:                 aws.String(s.Tables.Pools),
				Key:                       map[string]types.AttributeValue{"id": strAV(join.Pool.Id)},
				UpdateExpression:          aws.String(update),
				ConditionExpression:       aws.String(condition),
				ExpressionAttributeNames:  map[string]string{"#status": "status"},
				ExpressionAttributeValues: values,
			},
		},
		{
			// Operation 2: Create the membership.
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Members),
				Item:                memberAV,
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			},
		},
		// Operation 3: Append the join to the ledger.
		*joined,
	}
	if join.Activate {
		activated, err := s.eventPut(&models.LedgerEvent{PoolId: join.Pool.Id, Kind: models.EventPoolActivated, Timestamp: join.At.Add(time.Nanosecond)})
		if err != nil {
			return err
		}
		items = append(items, *activated)
	}
	depositIdx := -1
	if join.Deposit != nil {
		depositPut, err := s.transactionPut(join.Deposit)
		if err != nil {
			return err
		}
		depositIdx = len(items)
		items = append(items, *depositPut)
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		switch {
		case conditionFailedAt(err, 1):
			return storage.ErrAlreadyMember
		case conditionFailedAt(err, 0):
			return storage.ErrVersionConflict
		case depositIdx >= 0 && conditionFailedAt(err, depositIdx):
			return storage.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to execute join transaction: %w", err)
	}
	return nil
}

// TransitionPool moves a pool between lifecycle states.
func (s *Store) TransitionPool(ctx context.Context, poolID string, from []models.PoolStatus, to models.PoolStatus, at time.Time) error {
	values := map[string]types.AttributeValue{
		":to":  strAV(string(to)),
		":one": numAV(1),
	}
	fromValues := make([]string, len(from))
	for i, st := range from {
		fromValues[i] = string(st)
	}

	items := []types.TransactWriteItem{
		{
			Update: &types.Update{
				TableName:                 aws.String(s.Tables.Pools),
				Key:                       map[string]types.AttributeValue{"id": strAV(poolID)},
				UpdateExpression:          aws.String("SET #status = :to, version = version + :one"),
				ConditionExpression:       aws.String("attribute_exists(id) AND " + inList("#status", "from", fromValues, values)),
				ExpressionAttributeNames:  map[string]string{"#status": "status"},
				ExpressionAttributeValues: values,
			},
		},
	}
	if to == models.PoolCancelled {
		cancelled, err := s.eventPut(&models.LedgerEvent{PoolId: poolID, Kind: models.EventPoolCancelled, Timestamp: at})
		if err != nil {
			return err
		}
		items = append(items, *cancelled)
	}

	if _, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		if conditionFailedAt(err, 0) {
			return storage.ErrInvalidTransition
		}
		return fmt.Errorf("failed to transition pool %s to %s: %w", poolID, to, err)
	}
	return nil
}

// SetPoolCounters overwrites the pool's counters, guarded by version.
func (s *Store) SetPoolCounters(ctx context.Context, poolID string, players int, pot int64, version int64) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Tables.Pools),
		Key:                 map[string]types.AttributeValue{"id": strAV(poolID)},
		UpdateExpression:    aws.String("SET current_players = :players, pot_size = :pot, version = version + :one"),
		ConditionExpression: aws.String("version = :version"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":players": numAV(int64(players)),
			":pot":     numAV(pot),
			":one":     numAV(1),
			":version": numAV(version),
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return storage.ErrVersionConflict
		}
		return fmt.Errorf("failed to update pool counters: %w", err)
	}
	return nil
}
