package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
)

// Lifeline items carry two derived counters next to the model fields:
// obtained (purchased + earned) and available (obtained - used). Condition
// expressions cannot do arithmetic, so the cap and the balance are checked
// against these.

func (s *Store) lifelineKey(userID, poolID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pool_id": strAV(poolID),
		"user_id": strAV(userID),
	}
}

// obtainUpdate adds one lifeline of the given kind, bounded by the cap.
func (s *Store) obtainUpdate(userID, poolID string, kind models.LifelineKind) *types.Update {
	return &types.Update{
		TableName:           aws.String(s.Tables.Lifelines),
		Key:                 s.lifelineKey(userID, poolID),
		UpdateExpression:    aws.String(fmt.Sprintf("ADD %s :one, obtained :one, available :one", kind)),
		ConditionExpression: aws.String("attribute_not_exists(obtained) OR obtained < :cap"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": numAV(1),
			":cap": numAV(models.LifelineCap),
		},
	}
}

// GetLifelineAccount returns the user's lifeline counters in a pool. A user
// that never obtained one gets an empty account.
func (s *Store) GetLifelineAccount(ctx context.Context, userID, poolID string) (*models.LifelineAccount, error) {
	acct := models.LifelineAccount{UserId: userID, PoolId: poolID}
	key := map[string]string{"pool_id": poolID, "user_id": userID}
	if err := s.getItem(ctx, s.Tables.Lifelines, key, &acct); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &models.LifelineAccount{UserId: userID, PoolId: poolID}, nil
		}
		return nil, fmt.Errorf("failed to get lifeline account: %w", err)
	}
	return &acct, nil
}

// PurchaseLifeline debits the buyer's balance and credits one lifeline in a
// single transaction.
func (s *Store) PurchaseLifeline(ctx context.Context, userID, poolID string, tx *models.Transaction, event *models.LedgerEvent) error {
	txPut, err := s.transactionPut(tx)
	if err != nil {
		return err
	}
	eventPut, err := s.eventPut(event)
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: Debit the buyer.
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Profiles),
				Key:                 map[string]types.AttributeValue{"user_id": strAV(userID)},
				UpdateExpression:    aws.String("SET balance = balance - :amount, version = version + :one"),
				ConditionExpression: aws.String("attribute_exists(user_id) AND balance >= :amount"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":amount": numAV(tx.Amount),
					":one":    numAV(1),
				},
			},
		},
		// Operation 2: Credit the lifeline.
		{Update: s.obtainUpdate(userID, poolID, models.LifelinePurchased)},
		// Operation 3: Record the purchase.
		*txPut,
		*eventPut,
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		switch {
		case conditionFailedAt(err, 0):
			return storage.ErrInsufficientBalance
		case conditionFailedAt(err, 1):
			return storage.ErrLifelineCapReached
		case conditionFailedAt(err, 2):
			return storage.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to execute lifeline purchase: %w", err)
	}
	return nil
}

// EarnLifeline credits one vouched-for lifeline.
func (s *Store) EarnLifeline(ctx context.Context, userID, poolID string, event *models.LedgerEvent) error {
	eventPut, err := s.eventPut(event)
	if err != nil {
		return err
	}
	items := []types.TransactWriteItem{
		{Update: s.obtainUpdate(userID, poolID, models.LifelineEarned)},
		*eventPut,
	}
	if _, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		if conditionFailedAt(err, 0) {
			return storage.ErrLifelineCapReached
		}
		return fmt.Errorf("failed to execute lifeline earn: %w", err)
	}
	return nil
}

// UseLifeline spends one lifeline on day and writes the updated member in the
// same transaction. The member write is guarded by its version.
func (s *Store) UseLifeline(ctx context.Context, member *models.Member, day string, event *models.LedgerEvent) error {
	memberPut, err := s.memberPut(member)
	if err != nil {
		return err
	}
	eventPut, err := s.eventPut(event)
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: Spend the lifeline, once per day.
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Lifelines),
				Key:                 s.lifelineKey(member.UserId, member.PoolId),
				UpdateExpression:    aws.String("ADD used :one, available :neg, covered_days :days"),
				ConditionExpression: aws.String("available > :zero AND (attribute_not_exists(covered_days) OR NOT contains(covered_days, :day))"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":one":  numAV(1),
					":neg":  numAV(-1),
					":zero": numAV(0),
					":day":  strAV(day),
					":days": &types.AttributeValueMemberSS{Value: []string{day}},
				},
			},
		},
		// Operation 2: Update the member's streak state.
		{Put: memberPut},
		*eventPut,
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		switch {
		case conditionFailedAt(err, 0):
			return storage.ErrNoLifelines
		case conditionFailedAt(err, 1):
			return storage.ErrVersionConflict
		}
		return fmt.Errorf("failed to execute lifeline use: %w", err)
	}
	member.Version++
	return nil
}
