package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finsift/finsift/internal/model"
)

func txn(id, vendor string, amount float64, occurredAt time.Time) model.Transaction {
	return model.Transaction{
		ID:         id,
		Vendor:     vendor,
		Amount:     amount,
		OccurredAt: occurredAt,
		ObservedAt: occurredAt,
		Direction:  model.DirectionDebit,
	}
}

func TestIsDuplicate(t *testing.T) {
	base := time.Date(2025, 1, 10, 14, 30, 15, 0, time.UTC)

	tests := []struct {
		name     string
		a        model.Transaction
		b        model.Transaction
		wantSame bool
	}{
		{
			name:     "identical ids",
			a:        txn("t1", "Zomato", 250, base),
			b:        txn("t1", "Different Vendor", 999, base.AddDate(0, 1, 0)),
			wantSame: true,
		},
		{
			name:     "vendor case-insensitive within window",
			a:        txn("t1", "ZOMATO", 250, base),
			b:        txn("t2", "zomato", 250, base.Add(30*time.Second)),
			wantSame: true,
		},
		{
			name:     "outside one minute window",
			a:        txn("t1", "Zomato", 250, base),
			b:        txn("t2", "Zomato", 250, base.Add(2*time.Minute)),
			wantSame: false,
		},
		{
			name:     "different amounts",
			a:        txn("t1", "Zomato", 250, base),
			b:        txn("t2", "Zomato", 251, base),
			wantSame: false,
		},
		{
			name:     "date-only timestamps fall back to calendar day",
			a:        txn("t1", "Zomato", 250, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)),
			b:        txn("t2", "Zomato", 250, time.Date(2025, 1, 10, 18, 45, 0, 0, time.UTC)),
			wantSame: true,
		},
		{
			name:     "date-only on different days",
			a:        txn("t1", "Zomato", 250, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)),
			b:        txn("t2", "Zomato", 250, time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)),
			wantSame: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The check must be symmetric in both argument orders.
			assert.Equal(t, tt.wantSame, IsDuplicate(tt.a, []model.Transaction{tt.b}))
			assert.Equal(t, tt.wantSame, IsDuplicate(tt.b, []model.Transaction{tt.a}))
		})
	}
}

func TestResolveKeepsMostComplete(t *testing.T) {
	base := time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)

	bare := txn("t1", "Zomato", 250, base)
	withRef := txn("t2", "Zomato", 250, base.Add(20*time.Second))
	withRef.BankRef = "UPI4039123"

	resolved := Resolve([]model.Transaction{bare, withRef})
	assert.Len(t, resolved, 1)
	assert.Equal(t, "t2", resolved[0].ID)

	// Order must not change the winner.
	resolved = Resolve([]model.Transaction{withRef, bare})
	assert.Len(t, resolved, 1)
	assert.Equal(t, "t2", resolved[0].ID)
}

func TestResolveTieBreaksOnObservedAt(t *testing.T) {
	base := time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)

	older := txn("t1", "Zomato", 250, base)
	older.ObservedAt = base
	newer := txn("t2", "Zomato", 250, base.Add(10*time.Second))
	newer.ObservedAt = base.Add(time.Hour)

	resolved := Resolve([]model.Transaction{older, newer})
	assert.Len(t, resolved, 1)
	assert.Equal(t, "t2", resolved[0].ID)
}

func TestResolveIdempotent(t *testing.T) {
	base := time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)

	batch := []model.Transaction{
		txn("t1", "Zomato", 250, base),
		txn("t2", "Zomato", 250, base.Add(15*time.Second)),
		txn("t3", "Uber", 180, base),
		txn("t4", "Netflix", 649, base.AddDate(0, 0, 3)),
	}

	once := Resolve(batch)
	twice := Resolve(once)
	assert.Equal(t, once, twice)
	assert.Len(t, once, 3)
}

func TestResolveEmptyAndSingle(t *testing.T) {
	assert.Empty(t, Resolve(nil))

	single := []model.Transaction{txn("t1", "Zomato", 250, time.Now())}
	assert.Equal(t, single, Resolve(single))
}
