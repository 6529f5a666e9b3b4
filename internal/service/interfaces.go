// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/finsift/finsift/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  string
	Direction model.TransactionDirection
	Limit     int
}

// TransactionUpdate carries the user-correctable fields of a transaction.
// Nil fields are left untouched.
type TransactionUpdate struct {
	Vendor      *string
	Category    *string
	IsRecurring *bool
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransaction(ctx context.Context, txn *model.Transaction) (string, error)
	SaveTransactions(ctx context.Context, txns []model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, update TransactionUpdate) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	// Classifier training corpus
	GetObservations(ctx context.Context) (map[string]string, error)
	RecordObservation(ctx context.Context, vendor, category string) error
	SaveModelFit(ctx context.Context, fits []model.CategoryFit) error
	GetModelFit(ctx context.Context) ([]model.CategoryFit, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	SaveTransactions(ctx context.Context, txns []model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
