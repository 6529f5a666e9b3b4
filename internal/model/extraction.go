package model

import "fmt"

// FailureReason identifies why extraction could not produce a transaction.
type FailureReason string

const (
	// FailurePatternNotFound means no extraction rule matched the text.
	FailurePatternNotFound FailureReason = "PATTERN_NOT_FOUND"
	// FailureAmbiguousAmount means more than one plausible amount was found.
	FailureAmbiguousAmount FailureReason = "AMBIGUOUS_AMOUNT"
	// FailureMissingVendor means an amount was found but no counterparty.
	FailureMissingVendor FailureReason = "MISSING_VENDOR"
)

// ParseFailure is a typed extraction failure with remediation suggestions,
// ordered most useful first.
type ParseFailure struct {
	Reason      FailureReason
	Suggestions []string
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("extraction failed: %s", f.Reason)
}

// ClassificationResult carries a category decision together with the full
// probability distribution it was drawn from. Probabilities always cover the
// canonical category set and sum to 1.
type ClassificationResult struct {
	Probabilities map[string]float64
	Category      string
	Confidence    float64
}
