package config

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/habit-pools/pkg/storage"
	"github.com/chris/habit-pools/pkg/storage/dynamodb"
	"github.com/chris/habit-pools/pkg/storage/memory"
)

// Store is everything a process may need from storage.
type Store interface {
	storage.Storage
	storage.ConnectionStore
}

// OpenStore returns the configured storage backend.
func (c *Config) OpenStore(ctx context.Context) (Store, error) {
	switch c.StorageBackend {
	case BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to load SDK config: %w", err)
		}
		return dynamodb.New(awsdynamodb.NewFromConfig(awsCfg), c.DynamoTables()), nil
	case BackendMemory:
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
}
