package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsift/finsift/internal/common"
	"github.com/finsift/finsift/internal/model"
	"github.com/finsift/finsift/internal/service"
	"github.com/finsift/finsift/internal/storage"
)

const bankSender = "VM-HDFCBK"

func newTestPipeline(t *testing.T) (*Pipeline, *storage.SQLiteStorage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	pipeline, err := New(store)
	require.NoError(t, err)
	return pipeline, store
}

func TestParseMessageFullFlow(t *testing.T) {
	pipeline, store := newTestPipeline(t)
	ctx := context.Background()
	received := time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)

	result, err := pipeline.ParseMessage(ctx,
		"Your account debited by Rs.250 at Zomato on 2025-01-10", bankSender, received)
	require.NoError(t, err)

	assert.True(t, result.Verdict.IsValid)
	assert.Equal(t, model.ReasonOK, result.Verdict.Reason)
	require.NotNil(t, result.Transaction)
	assert.Nil(t, result.Failure)

	txn := result.Transaction
	assert.Equal(t, "Zomato", txn.Vendor)
	assert.Equal(t, 250.0, txn.Amount)
	assert.Equal(t, model.DirectionDebit, txn.Direction)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), txn.OccurredAt)
	assert.Equal(t, model.CategoryFoodDining, txn.Category)

	assert.True(t, result.Saved)
	assert.False(t, result.Duplicate)
	assert.Empty(t, result.Warning)

	stored, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Zomato", stored[0].Vendor)

	// A categorized save feeds the classifier's training corpus.
	observations, err := store.GetObservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryFoodDining, observations["Zomato"])
}

func TestParseMessageRejectsOTP(t *testing.T) {
	pipeline, store := newTestPipeline(t)
	ctx := context.Background()

	result, err := pipeline.ParseMessage(ctx,
		"Your OTP is 482913. Do not share it with anyone.", bankSender, time.Now())
	require.NoError(t, err)

	assert.False(t, result.Verdict.IsValid)
	assert.Equal(t, model.ReasonOTP, result.Verdict.Reason)
	assert.Nil(t, result.Transaction)
	assert.Nil(t, result.Failure)
	assert.False(t, result.Saved)

	stored, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestParseMessageReportsFailure(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	result, err := pipeline.ParseMessage(context.Background(),
		"Rs.250 debited successfully", bankSender, time.Now())
	require.NoError(t, err)

	assert.True(t, result.Verdict.IsValid)
	assert.Nil(t, result.Transaction)
	require.NotNil(t, result.Failure)
	assert.Equal(t, model.FailureMissingVendor, result.Failure.Reason)
	assert.NotEmpty(t, result.Failure.Suggestions)
}

func TestParseMessageDetectsStoredDuplicate(t *testing.T) {
	pipeline, store := newTestPipeline(t)
	ctx := context.Background()
	received := time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)
	text := "Your account debited by Rs.250 at Zomato on 2025-01-10"

	first, err := pipeline.ParseMessage(ctx, text, bankSender, received)
	require.NoError(t, err)
	require.True(t, first.Saved)

	// A later session re-parses the same message against the shared store.
	later, err := New(store)
	require.NoError(t, err)

	second, err := later.ParseMessage(ctx, text, bankSender, received.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.False(t, second.Saved)
	require.NotNil(t, second.Transaction)

	stored, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

// failingStore passes reads through to real storage but refuses writes.
type failingStore struct {
	*storage.SQLiteStorage
	saveErr error
}

func (f *failingStore) SaveTransaction(_ context.Context, _ *model.Transaction) (string, error) {
	return "", f.saveErr
}

func (f *failingStore) SaveTransactions(_ context.Context, _ []model.Transaction) error {
	return f.saveErr
}

func TestParseMessagePersistFailureIsSoft(t *testing.T) {
	inner, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = inner.Close() })
	require.NoError(t, inner.Migrate(context.Background()))

	store := &failingStore{
		SQLiteStorage: inner,
		saveErr:       &common.RetryableError{Err: errors.New("disk full"), Retryable: false},
	}
	pipeline, err := New(store)
	require.NoError(t, err)

	result, err := pipeline.ParseMessage(context.Background(),
		"Your account debited by Rs.250 at Zomato on 2025-01-10", bankSender, time.Now())
	require.NoError(t, err)

	// The parse survives; only persistence degraded.
	require.NotNil(t, result.Transaction)
	assert.Equal(t, "Zomato", result.Transaction.Vendor)
	assert.Equal(t, model.CategoryFoodDining, result.Transaction.Category)
	assert.False(t, result.Saved)
	assert.Contains(t, result.Warning, "PERSIST_FAILED:")
	assert.Contains(t, result.Warning, "disk full")
}

func TestIngestBatch(t *testing.T) {
	pipeline, store := newTestPipeline(t)
	ctx := context.Background()
	received := time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)

	messages := []model.RawMessage{
		{Text: "Your account debited by Rs.250 at Zomato on 2025-01-10", Sender: bankSender, ReceivedAt: received},
		{Text: "Your OTP is 482913. Do not share it with anyone.", Sender: bankSender, ReceivedAt: received},
		// Same transaction worded differently; must collapse within the batch.
		{Text: "Rs.250 spent at Zomato on 2025-01-10", Sender: bankSender, ReceivedAt: received.Add(time.Minute)},
		{Text: "Rs.180 paid to Uber via UPI on 2025-02-10", Sender: bankSender, ReceivedAt: received},
	}

	results, err := pipeline.IngestBatch(ctx, messages)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].Saved)
	assert.Equal(t, "Zomato", results[0].Transaction.Vendor)

	assert.False(t, results[1].Verdict.IsValid)
	assert.Equal(t, model.ReasonOTP, results[1].Verdict.Reason)

	assert.True(t, results[2].Duplicate)
	assert.False(t, results[2].Saved)

	assert.True(t, results[3].Saved)
	assert.Equal(t, "Uber", results[3].Transaction.Vendor)
	assert.Equal(t, model.CategoryTransportation, results[3].Transaction.Category)
	assert.Equal(t, "UPI", results[3].Transaction.PaymentMethod)

	stored, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestIngestBatchRecordsObservations(t *testing.T) {
	pipeline, store := newTestPipeline(t)
	ctx := context.Background()
	received := time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)

	results, err := pipeline.IngestBatch(ctx, []model.RawMessage{
		{Text: "Your account debited by Rs.250 at Zomato on 2025-01-10", Sender: bankSender, ReceivedAt: received},
		{Text: "Rs.180 paid to Uber via UPI on 2025-02-10", Sender: bankSender, ReceivedAt: received},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.True(t, results[0].Saved)
	require.True(t, results[1].Saved)

	// Batch saves feed the training corpus just like single-message saves.
	observations, err := store.GetObservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryFoodDining, observations["Zomato"])
	assert.Equal(t, model.CategoryTransportation, observations["Uber"])
}

func TestIngestBatchSkipsAlreadyStored(t *testing.T) {
	pipeline, store := newTestPipeline(t)
	ctx := context.Background()
	received := time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)
	text := "Your account debited by Rs.250 at Zomato on 2025-01-10"

	first, err := pipeline.ParseMessage(ctx, text, bankSender, received)
	require.NoError(t, err)
	require.True(t, first.Saved)

	batch, err := New(store)
	require.NoError(t, err)
	results, err := batch.IngestBatch(ctx, []model.RawMessage{
		{Text: text, Sender: bankSender, ReceivedAt: received},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Duplicate)

	stored, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
