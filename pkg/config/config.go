// Package config loads the service configuration from the environment. A
// .env file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/proofs"
	"github.com/chris/habit-pools/pkg/storage/dynamodb"
	"github.com/chris/habit-pools/pkg/sweeper"
	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
)

// Tables names the DynamoDB tables.
type Tables struct {
	Pools        string `env:"POOLS_TABLE_NAME" envDefault:"habit-pools"`
	Members      string `env:"MEMBERS_TABLE_NAME" envDefault:"habit-pool-members"`
	Proofs       string `env:"PROOFS_TABLE_NAME" envDefault:"habit-proofs"`
	Reviews      string `env:"REVIEWS_TABLE_NAME" envDefault:"habit-proof-reviews"`
	DailyRecords string `env:"DAILY_RECORDS_TABLE_NAME" envDefault:"habit-daily-records"`
	Lifelines    string `env:"LIFELINES_TABLE_NAME" envDefault:"habit-lifelines"`
	Transactions string `env:"TRANSACTIONS_TABLE_NAME" envDefault:"habit-transactions"`
	Profiles     string `env:"PROFILES_TABLE_NAME" envDefault:"habit-profiles"`
	Events       string `env:"EVENTS_TABLE_NAME" envDefault:"habit-pool-events"`
	Connections  string `env:"CONNECTIONS_TABLE_NAME" envDefault:"habit-ws-connections"`
}

type Config struct {
	// Storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	Tables         Tables `envPrefix:"DYNAMODB_"`

	// Queues. Without URLs the app runs jobs in-process.
	VerificationQueueURL string `env:"SQS_VERIFICATION_QUEUE_URL"`
	SettlementQueueURL   string `env:"SQS_SETTLEMENT_QUEUE_URL"`
	Workers              int    `env:"WORKERS" envDefault:"4"`

	// External services
	VerifierURL    string        `env:"VERIFIER_URL"`
	VerifierAPIKey string        `env:"VERIFIER_API_KEY"`
	VerifyTimeout  time.Duration `env:"VERIFY_TIMEOUT" envDefault:"30s"`
	EscrowURL      string        `env:"ESCROW_URL"`
	EscrowTimeout  time.Duration `env:"ESCROW_TIMEOUT" envDefault:"10s"`

	// Verification policy
	ApproveAtOrAbove     float64 `env:"APPROVE_AT_OR_ABOVE" envDefault:"0.6"`
	RejectAtOrBelow      float64 `env:"REJECT_AT_OR_BELOW" envDefault:"0.4"`
	FailOpenConfidence   float64 `env:"FAIL_OPEN_CONFIDENCE" envDefault:"0.75"`
	MaxFailOpenPerMember int     `env:"MAX_FAIL_OPEN_PER_MEMBER" envDefault:"3"`

	// Scheduling
	ReviewTimeout      time.Duration `env:"REVIEW_TIMEOUT" envDefault:"48h"`
	RequeueAfter       time.Duration `env:"REQUEUE_AFTER" envDefault:"15m"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	SettlementLease    time.Duration `env:"SETTLEMENT_LEASE" envDefault:"5m"`
	MissedDayTolerance int           `env:"MISSED_DAY_TOLERANCE" envDefault:"0"`

	// Lifelines
	LifelineCostSOL string `env:"LIFELINE_COST_SOL" envDefault:"0.05"`

	// Server
	HTTPPort          string `env:"HTTP_PORT" envDefault:"8080"`
	WebsocketEndpoint string `env:"WEBSOCKET_ENDPOINT"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	lifelineCost int64
}

// Load reads .env, if present, and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendDynamoDB:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendMemory, BackendDynamoDB, c.StorageBackend)
	}
	if c.MissedDayTolerance < 0 {
		return fmt.Errorf("MISSED_DAY_TOLERANCE must not be negative")
	}
	if c.RejectAtOrBelow >= c.ApproveAtOrAbove {
		return fmt.Errorf("REJECT_AT_OR_BELOW (%v) must be below APPROVE_AT_OR_ABOVE (%v)", c.RejectAtOrBelow, c.ApproveAtOrAbove)
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1")
	}
	cost, err := models.ParseSOL(c.LifelineCostSOL)
	if err != nil {
		return fmt.Errorf("LIFELINE_COST_SOL: %w", err)
	}
	if cost <= 0 {
		return fmt.Errorf("LIFELINE_COST_SOL must be positive")
	}
	c.lifelineCost = cost
	return nil
}

// LifelineCost returns the lifeline price in lamports.
func (c *Config) LifelineCost() int64 {
	return c.lifelineCost
}

// DynamoTables returns the table names in the form the store expects.
func (c *Config) DynamoTables() dynamodb.Tables {
	return dynamodb.Tables(c.Tables)
}

func (c *Config) ArbiterConfig() proofs.ArbiterConfig {
	return proofs.ArbiterConfig{
		VerifyTimeout:        c.VerifyTimeout,
		ApproveAtOrAbove:     c.ApproveAtOrAbove,
		RejectAtOrBelow:      c.RejectAtOrBelow,
		FailOpenConfidence:   c.FailOpenConfidence,
		MaxFailOpenPerMember: c.MaxFailOpenPerMember,
	}
}

func (c *Config) SweeperConfig() sweeper.Config {
	return sweeper.Config{
		MissedDayTolerance: c.MissedDayTolerance,
		ReviewTimeout:      c.ReviewTimeout,
		RequeueAfter:       c.RequeueAfter,
		Workers:            c.Workers,
	}
}

// Logger builds the process logger and installs it as the slog default.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if strings.EqualFold(c.LogFormat, "text") {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
