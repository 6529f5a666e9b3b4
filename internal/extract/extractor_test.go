package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsift/finsift/internal/model"
)

var receivedAt = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

func TestExtract(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantVendor    string
		wantAmount    float64
		wantDirection model.TransactionDirection
	}{
		{
			name:          "account debit with explicit date",
			text:          "Your account debited by Rs.250 at Zomato on 2025-01-10",
			wantVendor:    "Zomato",
			wantAmount:    250.0,
			wantDirection: model.DirectionDebit,
		},
		{
			name:          "upi payment",
			text:          "Rs.1,499.00 paid to Amazon Pay via UPI ref 403912345678",
			wantVendor:    "Amazon Pay",
			wantAmount:    1499.0,
			wantDirection: model.DirectionDebit,
		},
		{
			name:          "salary credit",
			text:          "INR 50,000.00 credited to your account from Acme Corp Salary",
			wantVendor:    "Acme Corp Salary",
			wantAmount:    50000.0,
			wantDirection: model.DirectionCredit,
		},
		{
			name:          "dollar amount",
			text:          "$12.50 spent at Starbucks using your card",
			wantVendor:    "Starbucks",
			wantAmount:    12.5,
			wantDirection: model.DirectionDebit,
		},
		{
			name:          "ambiguous direction defaults to debit",
			text:          "Transaction of Rs.300 at Big Bazaar",
			wantVendor:    "Big Bazaar",
			wantAmount:    300.0,
			wantDirection: model.DirectionDebit,
		},
	}

	e := NewDefault()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, failure := e.Extract(tt.text, receivedAt)
			require.Nil(t, failure)
			require.NotNil(t, txn)
			assert.Equal(t, tt.wantVendor, txn.Vendor)
			assert.Equal(t, tt.wantAmount, txn.Amount)
			assert.Equal(t, tt.wantDirection, txn.Direction)
			assert.Equal(t, tt.text, txn.SourceText)
			assert.NotEmpty(t, txn.Hash)
		})
	}
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantReason model.FailureReason
	}{
		{
			name:       "no amount at all",
			text:       "Your payment was successful, thank you",
			wantReason: model.FailurePatternNotFound,
		},
		{
			name:       "two conflicting amounts",
			text:       "Rs.250 and Rs.480 debited at two merchants",
			wantReason: model.FailureAmbiguousAmount,
		},
		{
			name:       "amount without vendor",
			text:       "Rs.990 debited successfully",
			wantReason: model.FailureMissingVendor,
		},
	}

	e := NewDefault()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, failure := e.Extract(tt.text, receivedAt)
			assert.Nil(t, txn)
			require.NotNil(t, failure)
			assert.Equal(t, tt.wantReason, failure.Reason)
			assert.NotEmpty(t, failure.Suggestions)
		})
	}
}

func TestExtractBalanceAmountIgnored(t *testing.T) {
	e := NewDefault()
	txn, failure := e.Extract("Rs.250 debited at Zomato. Avl bal Rs.12,340.55", receivedAt)
	require.Nil(t, failure)
	assert.Equal(t, 250.0, txn.Amount)
	assert.Equal(t, "Zomato", txn.Vendor)
}

func TestExtractExplicitDate(t *testing.T) {
	e := NewDefault()

	txn, failure := e.Extract("Rs.250 debited at Zomato on 2025-01-10", receivedAt)
	require.Nil(t, failure)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), txn.OccurredAt)

	txn, failure = e.Extract("Ksh65.00 paid to Naivas on 17/9/25", receivedAt)
	require.Nil(t, failure)
	assert.Equal(t, 2025, txn.OccurredAt.Year())
	assert.Equal(t, time.September, txn.OccurredAt.Month())
	assert.Equal(t, 17, txn.OccurredAt.Day())
}

func TestExtractDateFallsBackToReceived(t *testing.T) {
	e := NewDefault()
	txn, failure := e.Extract("Rs.250 debited at Zomato", receivedAt)
	require.Nil(t, failure)
	assert.Equal(t, receivedAt, txn.OccurredAt)
	assert.Equal(t, receivedAt, txn.ObservedAt)
}

func TestExtractMetadata(t *testing.T) {
	e := NewDefault()
	txn, failure := e.Extract("Rs.899 paid to Netflix via UPI ref NF8891234X", receivedAt)
	require.Nil(t, failure)
	assert.Equal(t, "UPI", txn.PaymentMethod)
	assert.Equal(t, "NF8891234X", txn.BankRef)
}

func TestExtractNeverPanics(t *testing.T) {
	e := NewDefault()
	inputs := []string{
		"",
		"Rs.",
		"Rs.99999999999999999999999999 debited at Overflow",
		"at to from towards Rs.10",
		"\x00\xff garbage Rs.5 at X",
	}
	for _, text := range inputs {
		assert.NotPanics(t, func() {
			_, _ = e.Extract(text, receivedAt)
		})
	}
}
