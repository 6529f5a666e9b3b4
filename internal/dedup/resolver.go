// Package dedup decides whether extracted transactions duplicate records
// already in the store, and picks the representative to retain.
package dedup

import (
	"strings"
	"time"

	"github.com/finsift/finsift/internal/model"
)

// window is the timestamp tolerance for two records to count as one event.
const window = time.Minute

// IsDuplicate reports whether candidate is already represented in existing.
// The check is symmetric: IsDuplicate(a, [b]) == IsDuplicate(b, [a]).
func IsDuplicate(candidate model.Transaction, existing []model.Transaction) bool {
	for i := range existing {
		if same(candidate, existing[i]) {
			return true
		}
	}
	return false
}

// Resolve removes duplicates from a batch, retaining the most complete
// representative of each group. It is idempotent: resolving an already
// deduplicated batch is a no-op.
func Resolve(txns []model.Transaction) []model.Transaction {
	kept := make([]model.Transaction, 0, len(txns))

	for _, candidate := range txns {
		duplicate := false
		for i := range kept {
			if !same(candidate, kept[i]) {
				continue
			}
			duplicate = true
			if better(candidate, kept[i]) {
				kept[i] = candidate
			}
			break
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}

	return kept
}

// same applies the duplicate criteria: identical IDs, or matching vendor and
// amount within a one-minute window. When either timestamp carries no
// intra-day resolution the window degrades to same calendar day.
func same(a, b model.Transaction) bool {
	if a.ID != "" && a.ID == b.ID {
		return true
	}
	if !strings.EqualFold(strings.TrimSpace(a.Vendor), strings.TrimSpace(b.Vendor)) {
		return false
	}
	if a.Amount != b.Amount {
		return false
	}

	if dateOnly(a.OccurredAt) || dateOnly(b.OccurredAt) {
		ay, am, ad := a.OccurredAt.Date()
		by, bm, bd := b.OccurredAt.Date()
		return ay == by && am == bm && ad == bd
	}

	delta := a.OccurredAt.Sub(b.OccurredAt)
	if delta < 0 {
		delta = -delta
	}
	return delta <= window
}

// better prefers the record with more complete metadata; a bank reference
// outweighs everything else. Ties go to the most recently observed record.
func better(a, b model.Transaction) bool {
	sa, sb := completeness(a), completeness(b)
	if sa != sb {
		return sa > sb
	}
	return a.ObservedAt.After(b.ObservedAt)
}

func completeness(t model.Transaction) int {
	score := 0
	if t.BankRef != "" {
		score += 4
	}
	if t.Category != "" {
		score++
	}
	if t.PaymentMethod != "" {
		score++
	}
	return score
}

// dateOnly reports whether a timestamp has no intra-day component, which is
// the shape produced when only an explicit date token could be parsed.
func dateOnly(ts time.Time) bool {
	return ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0
}
