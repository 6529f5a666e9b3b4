// Package filter decides whether a raw notification text is a genuine
// transaction message before any extraction is attempted.
package filter

import (
	"regexp"

	"github.com/finsift/finsift/internal/model"
)

// RuleKind separates scoring rules by the direction they push the verdict.
type RuleKind string

const (
	// KindTransaction rules add confidence when matched.
	KindTransaction RuleKind = "transaction"
	// KindSuppression rules subtract confidence and carry a rejection reason.
	KindSuppression RuleKind = "suppression"
)

// Rule is one entry of the declarative scoring table. Every matched keyword
// contributes the rule's weight once.
type Rule struct {
	Name     string
	Kind     RuleKind
	Reason   model.FilterReason
	Keywords []string
	Weight   float64
	Priority int // Higher priority suppression rules win the reason slot
}

// DefaultRules returns the scoring table used by the default filter.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "transaction vocabulary",
			Kind:     KindTransaction,
			Reason:   model.ReasonOK,
			Keywords: []string{"debited", "credited", "paid", "spent", "withdrawn", "purchase", "sent to", "received", "txn", "transaction of"},
			Weight:   0.25,
		},
		{
			Name:     "one-time password",
			Kind:     KindSuppression,
			Reason:   model.ReasonOTP,
			Keywords: []string{"otp", "one time password", "one-time password", "verification code", "do not share"},
			Weight:   0.35,
			Priority: 100,
		},
		{
			Name:     "promotional",
			Kind:     KindSuppression,
			Reason:   model.ReasonPromotional,
			Keywords: []string{"offer", "cashback eligible", "discount", "sale ends", "coupon", "win ", "congratulations", "t&c apply"},
			Weight:   0.35,
			Priority: 90,
		},
		{
			Name:     "balance alert",
			Kind:     KindSuppression,
			Reason:   model.ReasonBalanceAlert,
			Keywords: []string{"minimum balance", "balance below", "avl bal", "available balance is", "low balance"},
			Weight:   0.35,
			Priority: 80,
		},
	}
}

// trustedSenders matches sender IDs used by banks and payment providers.
// Indian DLT headers look like "VM-HDFCBK"; the generic alternatives cover
// bank/UPI/wallet names appearing directly.
var trustedSenders = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z]{2}-[A-Z0-9]{4,8}$`),
	regexp.MustCompile(`(?i)(bank|hdfc|icici|sbi|axis|kotak|upi|paytm|phonepe|gpay|mpesa)`),
}

// TrustedSender reports whether the sender looks like a bank or payment
// provider header.
func TrustedSender(sender string) bool {
	if sender == "" {
		return false
	}
	for _, re := range trustedSenders {
		if re.MatchString(sender) {
			return true
		}
	}
	return false
}
