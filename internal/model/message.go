package model

import "time"

// RawMessage is an incoming notification text before any processing.
// It is never persisted as-is.
type RawMessage struct {
	ReceivedAt time.Time
	Text       string
	Sender     string
}

// FilterReason explains a validity filter verdict. The value is the single
// signal that most influenced the decision.
type FilterReason string

const (
	// ReasonOK means the message looks like a genuine transaction notification.
	ReasonOK FilterReason = "OK"
	// ReasonOTP means the message is a one-time-password notification.
	ReasonOTP FilterReason = "OTP"
	// ReasonPromotional means the message is marketing material.
	ReasonPromotional FilterReason = "PROMOTIONAL"
	// ReasonBalanceAlert means the message only reports an account balance.
	ReasonBalanceAlert FilterReason = "BALANCE_ALERT"
	// ReasonNoKeywords means no transaction vocabulary was found at all.
	ReasonNoKeywords FilterReason = "NO_KEYWORDS"
	// ReasonLowSignal means some transaction vocabulary was found but the
	// overall confidence stayed below the acceptance threshold.
	ReasonLowSignal FilterReason = "LOW_SIGNAL"
)

// FilterVerdict is the validity filter's decision for one RawMessage.
type FilterVerdict struct {
	Reason           FilterReason
	DetectedKeywords []string
	Confidence       float64
	IsValid          bool
}
