package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsift/finsift/internal/common"
	"github.com/finsift/finsift/internal/model"
	"github.com/finsift/finsift/internal/service"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testTxn(vendor string, amount float64, occurredAt time.Time) model.Transaction {
	return model.Transaction{
		Vendor:     vendor,
		Amount:     amount,
		OccurredAt: occurredAt,
		ObservedAt: occurredAt,
		Direction:  model.DirectionDebit,
		SourceText: "test message",
	}
}

func TestSaveAndGetTransaction(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	txn := testTxn("Zomato", 250, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	txn.Category = model.CategoryFoodDining
	txn.PaymentMethod = "UPI"
	txn.BankRef = "UPI4039123"

	id, err := store.SaveTransaction(ctx, &txn)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.GetTransactionByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Zomato", got.Vendor)
	assert.Equal(t, 250.0, got.Amount)
	assert.Equal(t, model.DirectionDebit, got.Direction)
	assert.Equal(t, model.CategoryFoodDining, got.Category)
	assert.Equal(t, "UPI", got.PaymentMethod)
	assert.Equal(t, "UPI4039123", got.BankRef)
	assert.NotEmpty(t, got.Hash)
}

func TestSaveTransactionDuplicateHash(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	first := testTxn("Zomato", 250, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	_, err := store.SaveTransaction(ctx, &first)
	require.NoError(t, err)

	second := testTxn("Zomato", 250, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	_, err = store.SaveTransaction(ctx, &second)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestSaveTransactionValidation(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*model.Transaction)
	}{
		{"missing vendor", func(txn *model.Transaction) { txn.Vendor = "" }},
		{"negative amount", func(txn *model.Transaction) { txn.Amount = -5 }},
		{"zero occurred_at", func(txn *model.Transaction) { txn.OccurredAt = time.Time{} }},
		{"unknown direction", func(txn *model.Transaction) { txn.Direction = "SIDEWAYS" }},
		{"non-canonical category", func(txn *model.Transaction) { txn.Category = "Misc" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := testTxn("Zomato", 250, time.Now())
			tt.mutate(&txn)
			_, err := store.SaveTransaction(ctx, &txn)
			assert.Error(t, err)
		})
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	store := newTestStorage(t)
	_, err := store.GetTransactionByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetTransactionsFilter(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	jan := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)

	food := testTxn("Zomato", 250, jan)
	food.Category = model.CategoryFoodDining
	ride := testTxn("Uber", 180, feb)
	ride.Category = model.CategoryTransportation
	pay := testTxn("Acme Corp", 50000, jan)
	pay.Direction = model.DirectionCredit

	for _, txn := range []model.Transaction{food, ride, pay} {
		stored := txn
		_, err := store.SaveTransaction(ctx, &stored)
		require.NoError(t, err)
	}

	all, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, "Uber", all[0].Vendor)

	byCategory, err := store.GetTransactions(ctx, service.TransactionFilter{Category: model.CategoryFoodDining})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Zomato", byCategory[0].Vendor)

	debits, err := store.GetTransactions(ctx, service.TransactionFilter{Direction: model.DirectionDebit})
	require.NoError(t, err)
	assert.Len(t, debits, 2)

	limited, err := store.GetTransactions(ctx, service.TransactionFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	since := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	recent, err := store.GetTransactions(ctx, service.TransactionFilter{StartDate: &since})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Uber", recent[0].Vendor)
}

func TestUpdateTransaction(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	txn := testTxn("ZOMATO ONLINE", 250, time.Now().UTC())
	id, err := store.SaveTransaction(ctx, &txn)
	require.NoError(t, err)

	vendor := "Zomato"
	category := model.CategoryFoodDining
	updated, err := store.UpdateTransaction(ctx, id, service.TransactionUpdate{
		Vendor:   &vendor,
		Category: &category,
	})
	require.NoError(t, err)
	assert.Equal(t, "Zomato", updated.Vendor)
	assert.Equal(t, model.CategoryFoodDining, updated.Category)

	// Other fields untouched.
	assert.Equal(t, 250.0, updated.Amount)

	bad := "Not A Category"
	_, err = store.UpdateTransaction(ctx, id, service.TransactionUpdate{Category: &bad})
	assert.Error(t, err)

	_, err = store.UpdateTransaction(ctx, "missing", service.TransactionUpdate{Vendor: &vendor})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	txn := testTxn("Zomato", 250, time.Now().UTC())
	id, err := store.SaveTransaction(ctx, &txn)
	require.NoError(t, err)

	require.NoError(t, store.DeleteTransaction(ctx, id))
	assert.ErrorIs(t, store.DeleteTransaction(ctx, id), common.ErrNotFound)

	_, err = store.GetTransactionByID(ctx, id)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveTransactionsBatchSkipsDuplicates(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	occurred := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	batch := []model.Transaction{
		testTxn("Zomato", 250, occurred),
		testTxn("Zomato", 250, occurred), // same hash, skipped
		testTxn("Uber", 180, occurred),
	}

	require.NoError(t, store.SaveTransactions(ctx, batch))

	all, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestObservations(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.RecordObservation(ctx, "Zomato", model.CategoryFoodDining))
	require.NoError(t, store.RecordObservation(ctx, "Zomato", model.CategoryFoodDining))
	require.NoError(t, store.RecordObservation(ctx, "Zomato", model.CategoryShopping))
	require.NoError(t, store.RecordObservation(ctx, "Uber", model.CategoryTransportation))

	observations, err := store.GetObservations(ctx)
	require.NoError(t, err)
	// Most frequently confirmed category wins per vendor.
	assert.Equal(t, model.CategoryFoodDining, observations["Zomato"])
	assert.Equal(t, model.CategoryTransportation, observations["Uber"])

	assert.Error(t, store.RecordObservation(ctx, "Zomato", "Misc"))
}

func TestModelFitRoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	fits := []model.CategoryFit{
		{Category: model.CategoryFoodDining, Observations: 12, FitScore: 0.75},
		{Category: model.CategoryTransportation, Observations: 4, FitScore: 1.0},
	}
	require.NoError(t, store.SaveModelFit(ctx, fits))

	got, err := store.GetModelFit(ctx)
	require.NoError(t, err)
	assert.Equal(t, fits, got)

	// Saving again replaces, not appends.
	require.NoError(t, store.SaveModelFit(ctx, fits[:1]))
	got, err = store.GetModelFit(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestBeginTx(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	batch := []model.Transaction{testTxn("Zomato", 250, time.Now().UTC())}
	require.NoError(t, tx.SaveTransactions(ctx, batch))
	require.NoError(t, tx.Commit())

	all, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
