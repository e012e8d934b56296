package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/chris/habit-pools/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPurchaseLifeline(t *testing.T) {
	at := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	tx := &models.Transaction{Id: "lifeline:1", UserId: "bob", PoolId: "pool1", Type: models.TxLifelinePurchase, Amount: 50_000_000, Status: models.TxCompleted, CreatedAt: at}
	event := &models.LedgerEvent{PoolId: "pool1", Kind: models.EventLifelinePurchased, UserId: "bob", Amount: 50_000_000, Timestamp: at}

	testCases := []struct {
		name    string
		failIdx int
		want    error
	}{
		{"Insufficient Balance", 0, storage.ErrInsufficientBalance},
		{"Cap Reached", 1, storage.ErrLifelineCapReached},
		{"Duplicate Transaction", 2, storage.ErrDuplicateTransaction},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockClient := new(mocks.DynamoDBAPI)
			store := New(mockClient, testTables)

			mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, cancelledAt(tc.failIdx, 4))

			err := store.PurchaseLifeline(context.Background(), "bob", "pool1", tx, event)

			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			lifeline := in.TransactItems[1].Update
			return len(in.TransactItems) == 4 &&
				*in.TransactItems[0].Update.TableName == "profiles" &&
				*lifeline.ConditionExpression == "attribute_not_exists(obtained) OR obtained < :cap"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.PurchaseLifeline(context.Background(), "bob", "pool1", tx, event)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})
}

func TestUseLifeline(t *testing.T) {
	at := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	event := &models.LedgerEvent{PoolId: "pool1", Kind: models.EventLifelineUsed, UserId: "bob", Timestamp: at}

	t.Run("None Available", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		member := &models.Member{PoolId: "pool1", UserId: "bob", Version: 2}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, cancelledAt(0, 3))

		err := store.UseLifeline(context.Background(), member, "2026-03-03", event)

		assert.ErrorIs(t, err, storage.ErrNoLifelines)
		assert.Equal(t, int64(2), member.Version)
	})

	t.Run("Member Changed", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		member := &models.Member{PoolId: "pool1", UserId: "bob", Version: 2}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, cancelledAt(1, 3))

		err := store.UseLifeline(context.Background(), member, "2026-03-03", event)

		assert.ErrorIs(t, err, storage.ErrVersionConflict)
	})

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		member := &models.Member{PoolId: "pool1", UserId: "bob", CoveredDays: []string{"2026-03-03"}, Version: 2}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.UseLifeline(context.Background(), member, "2026-03-03", event)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), member.Version)
		mockClient.AssertExpectations(t)
	})
}

func TestGetLifelineAccount(t *testing.T) {
	t.Run("Empty Account", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		acct, err := store.GetLifelineAccount(context.Background(), "bob", "pool1")

		assert.NoError(t, err)
		assert.Equal(t, 0, acct.Available())
		assert.Equal(t, "pool1", acct.PoolId)
	})

	t.Run("Ignores Derived Counters", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		item, _ := attributevalue.MarshalMap(map[string]interface{}{
			"user_id": "bob", "pool_id": "pool1", "purchased": 2, "earned": 1, "used": 1, "obtained": 3, "available": 2,
		})
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil)

		acct, err := store.GetLifelineAccount(context.Background(), "bob", "pool1")

		assert.NoError(t, err)
		assert.Equal(t, 3, acct.Obtained())
		assert.Equal(t, 2, acct.Available())
	})
}

func TestCreditProfile(t *testing.T) {
	tx := &models.Transaction{Id: "settle:pool1:bob", UserId: "bob", PoolId: "pool1", Type: models.TxWinningsClaim, Amount: 1_000_000_000, Status: models.TxCompleted, CreatedAt: time.Now()}

	t.Run("Applied", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		applied, err := store.CreditProfile(context.Background(), storage.ProfileCredit{Tx: tx, PoolWon: true, Earned: 500_000_000})

		assert.NoError(t, err)
		assert.True(t, applied)
	})

	t.Run("Already Applied", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, cancelledAt(0, 2))

		applied, err := store.CreditProfile(context.Background(), storage.ProfileCredit{Tx: tx})

		assert.NoError(t, err)
		assert.False(t, applied)
	})

	t.Run("DynamoDB Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		applied, err := store.CreditProfile(context.Background(), storage.ProfileCredit{Tx: tx})

		assert.Error(t, err)
		assert.False(t, applied)
	})
}

func TestAcquireSettlementLease(t *testing.T) {
	now := time.Date(2026, 3, 9, 0, 5, 0, 0, time.UTC)

	t.Run("Acquired", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		pool := testPool()
		pool.Status = models.PoolSettling
		pool.SettlementLeaseUntil = now.Add(time.Minute).Unix()
		poolAV, _ := attributevalue.MarshalMap(pool)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(&dynamodb.UpdateItemOutput{Attributes: poolAV}, nil)

		got, err := store.AcquireSettlementLease(context.Background(), "pool1", now, time.Minute)

		assert.NoError(t, err)
		assert.Equal(t, models.PoolSettling, got.Status)
	})

	old := func(mutate func(p *models.Pool)) error {
		p := testPool()
		mutate(p)
		item, _ := attributevalue.MarshalMap(p)
		return &types.ConditionalCheckFailedException{Item: item}
	}
	settled := now.Add(-time.Hour)
	testCases := []struct {
		name string
		err  error
		want error
	}{
		{"Already Settled", old(func(p *models.Pool) { p.Status = models.PoolCompleted; p.SettledAt = &settled }), storage.ErrAlreadySettled},
		{"Not Settleable", old(func(p *models.Pool) { p.Status = models.PoolWaiting }), storage.ErrPoolNotSettleable},
		{"Lease Held", old(func(p *models.Pool) { p.Status = models.PoolSettling; p.SettlementLeaseUntil = now.Add(time.Minute).Unix() }), storage.ErrSettlementInProgress},
		{"Missing Pool", &types.ConditionalCheckFailedException{}, storage.ErrNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockClient := new(mocks.DynamoDBAPI)
			store := New(mockClient, testTables)

			mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, tc.err)

			_, err := store.AcquireSettlementLease(context.Background(), "pool1", now, time.Minute)

			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestMarkSettled(t *testing.T) {
	mockClient := new(mocks.DynamoDBAPI)
	store := New(mockClient, testTables)

	mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, cancelledAt(0, 2))

	err := store.MarkSettled(context.Background(), "pool1", time.Now(), &models.LedgerEvent{PoolId: "pool1", Kind: models.EventPoolSettled, Timestamp: time.Now()})

	assert.ErrorIs(t, err, storage.ErrAlreadySettled)
}

func TestResolveReview(t *testing.T) {
	mockClient := new(mocks.DynamoDBAPI)
	store := New(mockClient, testTables)

	mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.UpdateItemOutput{}, nil)
	mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(nil, &types.ConditionalCheckFailedException{})

	err := store.ResolveReview(context.Background(), "review1", models.ReviewApproved, "looks right", "carol", time.Now())
	assert.NoError(t, err)

	err = store.ResolveReview(context.Background(), "review1", models.ReviewRejected, "", "carol", time.Now())
	assert.ErrorIs(t, err, storage.ErrReviewResolved)
	mockClient.AssertExpectations(t)
}

func TestCreateReview(t *testing.T) {
	mockClient := new(mocks.DynamoDBAPI)
	store := New(mockClient, testTables)
	review := &models.ProofReview{Id: "review1", ProofId: "proof1", PoolId: "pool1", ReviewerId: "carol", Status: models.ReviewPending, CreatedAt: time.Now()}

	mockClient.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return *in.TableName == testTables.Reviews && *in.ConditionExpression == "attribute_not_exists(id)"
	})).Once().Return(&dynamodb.PutItemOutput{}, nil)
	mockClient.On("PutItem", mock.Anything, mock.Anything).Once().Return(nil, &types.ConditionalCheckFailedException{})

	assert.NoError(t, store.CreateReview(context.Background(), review))

	err := store.CreateReview(context.Background(), review)
	assert.ErrorIs(t, err, storage.ErrReviewExists)
	mockClient.AssertExpectations(t)
}
