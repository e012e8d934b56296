package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/google/uuid"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the Store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Tables holds the DynamoDB table names used by the Store.
type Tables struct {
	Pools        string
	Members      string
	Proofs       string
	Reviews      string
	DailyRecords string
	Lifelines    string
	Transactions string
	Profiles     string
	Events       string
	Connections  string
}

// Secondary indexes.
const (
	statusCreatedAtIndex = "status-created_at-index"
	userIDIndex          = "user_id-index"
	poolIDIndex          = "pool_id-index"
	reviewerIDIndex      = "reviewer_id-index"
)

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client DynamoDBAPI
	Tables Tables
}

// New creates a new Store.
func New(client DynamoDBAPI, tables Tables) *Store {
	return &Store{
		Client: client,
		Tables: tables,
	}
}

// Make sure we conform to the interfaces
var (
	_ storage.Storage         = (*Store)(nil)
	_ storage.ConnectionStore = (*Store)(nil)
)

func numAV(n int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

func strAV(s string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s}
}

func isConditionalCheckFailed(err error) bool {
	var condCheckFailed *types.ConditionalCheckFailedException
	return errors.As(err, &condCheckFailed)
}

// conditionFailedAt reports whether the i-th item of a cancelled
// TransactWriteItems call failed its condition expression.
func conditionFailedAt(err error, i int) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) || i >= len(tce.CancellationReasons) {
		return false
	}
	code := tce.CancellationReasons[i].Code
	return code != nil && *code == "ConditionalCheckFailed"
}

// inList builds an "attr IN (:p0, :p1)" condition and registers its values.
func inList(attr, prefix string, values []string, into map[string]types.AttributeValue) string {
	placeholders := make([]string, len(values))
	for i, v := range values {
		ph := fmt.Sprintf(":%s%d", prefix, i)
		placeholders[i] = ph
		into[ph] = strAV(v)
	}
	return fmt.Sprintf("%s IN (%s)", attr, strings.Join(placeholders, ", "))
}

// eventPut prepares the append of a ledger event. Event ids sort by time.
func (s *Store) eventPut(ev *models.LedgerEvent) (*types.TransactWriteItem, error) {
	e := *ev
	if e.EventId == "" {
		e.EventId = fmt.Sprintf("%019d#%s", e.Timestamp.UnixNano(), uuid.New().String())
	}
	av, err := attributevalue.MarshalMap(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger event: %w", err)
	}
	return &types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(s.Tables.Events),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(event_id)"),
		},
	}, nil
}

// transactionPut prepares the append of a financial transaction.
func (s *Store) transactionPut(tx *models.Transaction) (*types.TransactWriteItem, error) {
	av, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}
	return &types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(s.Tables.Transactions),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		},
	}, nil
}

// getItem fetches a single item into out. It returns storage.ErrNotFound
// when the item does not exist.
func (s *Store) getItem(ctx context.Context, table string, key map[string]string, out interface{}) error {
	keyAV, err := attributevalue.MarshalMap(key)
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       keyAV,
	})
	if err != nil {
		return fmt.Errorf("failed to get item from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return storage.ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return nil
}

// query runs a query and unmarshals every page into out.
func (s *Store) query(ctx context.Context, input *dynamodb.QueryInput, out interface{}) error {
	var items []map[string]types.AttributeValue
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to query %s: %w", aws.ToString(input.TableName), err)
		}
		items = append(items, result.Items...)
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return fmt.Errorf("failed to unmarshal query results: %w", err)
	}
	return nil
}

func nowAV(t time.Time) (types.AttributeValue, error) {
	av, err := attributevalue.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}
	return av, nil
}
