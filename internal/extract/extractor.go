// Package extract turns raw notification text into candidate transactions
// using an ordered set of pattern rules.
package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/finsift/finsift/internal/model"
)

// Rule captures one message shape. Rules are tried in priority order (highest
// first); the first rule yielding both an amount and a vendor wins.
type Rule struct {
	vendorRe *regexp.Regexp
	Name     string
	Priority int
}

// DefaultRules returns the built-in rule set, most specific formats first.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "card or account debit",
			Priority: 100,
			vendorRe: regexp.MustCompile(`(?i)(?:debited|spent|paid)\b.{0,80}?\b(?:at|to|towards)\s+([A-Za-z0-9&@' .\-]+)`),
		},
		{
			Name:     "upi transfer",
			Priority: 90,
			vendorRe: regexp.MustCompile(`(?i)(?:sent|paid)\s+to\s+([A-Za-z0-9&@' .\-]+)`),
		},
		{
			Name:     "credit received",
			Priority: 80,
			vendorRe: regexp.MustCompile(`(?i)(?:credited|received|refunded)\b.{0,80}?\bfrom\s+([A-Za-z0-9&@' .\-]+)`),
		},
		{
			Name:     "generic preposition fallback",
			Priority: 10,
			vendorRe: regexp.MustCompile(`(?i)\b(?:at|to|from|towards)\s+([A-Za-z0-9&@' .\-]+)`),
		},
	}
}

// Extractor applies the rule set to raw message text.
type Extractor struct {
	rules []Rule
}

// New creates an extractor with the given rules, sorted by priority.
func New(rules []Rule) *Extractor {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	for i := 0; i < len(sorted)-1; i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].Priority > sorted[i].Priority {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	return &Extractor{rules: sorted}
}

// NewDefault creates an extractor with the built-in rules.
func NewDefault() *Extractor {
	return New(DefaultRules())
}

// Extract parses text into a transaction candidate. Malformed input never
// panics; every failure degrades to a typed ParseFailure.
func (e *Extractor) Extract(text string, receivedAt time.Time) (*model.Transaction, *model.ParseFailure) {
	amounts := matchAmounts(text)
	if len(amounts) == 0 {
		return nil, &model.ParseFailure{
			Reason: model.FailurePatternNotFound,
			Suggestions: []string{
				"no currency amount found (expected a token like Rs.250 or $12.50)",
				"check the message contains transaction vocabulary (debited, paid, credited)",
			},
		}
	}
	if len(amounts) > 1 {
		return nil, &model.ParseFailure{
			Reason: model.FailureAmbiguousAmount,
			Suggestions: []string{
				"multiple distinct amounts found; cannot pick the transaction amount",
				"balance and limit figures are excluded automatically, the rest conflict",
			},
		}
	}

	for _, rule := range e.rules {
		m := rule.vendorRe.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		vendor := cleanVendor(m[1])
		if vendor == "" {
			continue
		}

		lower := strings.ToLower(text)
		txn := &model.Transaction{
			Vendor:        vendor,
			Amount:        amounts[0],
			OccurredAt:    matchDate(text, receivedAt),
			ObservedAt:    receivedAt,
			Direction:     matchDirection(lower),
			SourceText:    text,
			PaymentMethod: matchPaymentMethod(text),
			BankRef:       matchBankRef(text),
		}
		txn.Hash = txn.GenerateHash()
		return txn, nil
	}

	return nil, &model.ParseFailure{
		Reason: model.FailureMissingVendor,
		Suggestions: []string{
			"an amount was found but no counterparty after at/to/from/towards",
			"add the merchant name after a preposition, e.g. 'paid to Zomato'",
		},
	}
}
