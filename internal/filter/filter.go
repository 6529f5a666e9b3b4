package filter

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/finsift/finsift/internal/model"
)

const (
	// validThreshold is the minimum confidence for a message to pass.
	validThreshold = 0.4
	// senderBonus is added when the sender matches a trusted pattern.
	senderBonus = 0.15
	// duplicatePenalty is subtracted when the text near-duplicates a recent one.
	duplicatePenalty = 0.2
	// duplicateSimilarity is the token-overlap ratio treated as a re-send.
	duplicateSimilarity = 0.8
	// amountBonus is added when the text carries a currency-prefixed amount.
	amountBonus = 0.2
)

var amountPattern = regexp.MustCompile(`(?i)(rs\.?|inr|₹|\$|ksh|usd)\s*\d`)

// Filter scores messages against a declarative rule table. It holds no
// mutable state and is safe for concurrent use.
type Filter struct {
	rules []Rule
}

// New creates a filter from the given scoring rules.
func New(rules []Rule) *Filter {
	return &Filter{rules: rules}
}

// NewDefault creates a filter with the built-in rule table.
func NewDefault() *Filter {
	return New(DefaultRules())
}

// Analyze decides whether text is a genuine transaction notification.
// The verdict is deterministic for identical input and has no side effects.
// The received timestamp is part of the contract but does not affect scoring.
func (f *Filter) Analyze(text, sender string, _ time.Time, recent []string) model.FilterVerdict {
	lower := strings.ToLower(text)

	var (
		score            float64
		txnHits          int
		detected         []string
		suppression      *Rule
		suppressionScore float64
	)

	for i := range f.rules {
		rule := &f.rules[i]
		for _, kw := range rule.Keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			detected = append(detected, strings.TrimSpace(kw))
			switch rule.Kind {
			case KindTransaction:
				score += rule.Weight
				txnHits++
			case KindSuppression:
				score -= rule.Weight
				suppressionScore += rule.Weight
				if suppression == nil || rule.Priority > suppression.Priority {
					suppression = rule
				}
			}
		}
	}

	if amountPattern.MatchString(lower) {
		score += amountBonus
	}
	if TrustedSender(sender) {
		score += senderBonus
	}
	for _, prev := range recent {
		if tokenSimilarity(lower, strings.ToLower(prev)) >= duplicateSimilarity {
			score -= duplicatePenalty
			break
		}
	}

	score = clamp01(score)
	sort.Strings(detected)

	verdict := model.FilterVerdict{
		Confidence:       score,
		DetectedKeywords: detected,
	}

	// A suppression hit that outweighs the transaction signal always rejects;
	// otherwise validity needs the threshold plus at least one transaction hit.
	suppressionDominates := suppression != nil && suppressionScore >= float64(txnHits)*0.25
	verdict.IsValid = score > validThreshold && txnHits > 0 && !suppressionDominates

	switch {
	case verdict.IsValid:
		verdict.Reason = model.ReasonOK
	case suppression != nil:
		verdict.Reason = suppression.Reason
	case txnHits == 0:
		verdict.Reason = model.ReasonNoKeywords
	default:
		verdict.Reason = model.ReasonLowSignal
	}

	return verdict
}

// tokenSimilarity computes the Jaccard overlap of the word sets of two texts.
func tokenSimilarity(a, b string) float64 {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(wordsA))
	for _, w := range wordsA {
		setA[w] = struct{}{}
	}

	setB := make(map[string]struct{}, len(wordsB))
	intersect := 0
	for _, w := range wordsB {
		if _, dup := setB[w]; dup {
			continue
		}
		setB[w] = struct{}{}
		if _, ok := setA[w]; ok {
			intersect++
		}
	}

	union := len(setA) + len(setB) - intersect
	return float64(intersect) / float64(union)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
