// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// TransactionDirection indicates whether money left or entered the account.
type TransactionDirection string

const (
	// DirectionDebit represents an outflow (spend).
	DirectionDebit TransactionDirection = "DEBIT"
	// DirectionCredit represents an inflow (income, refund).
	DirectionCredit TransactionDirection = "CREDIT"
)

// Transaction represents a single financial transaction extracted from a
// notification message.
type Transaction struct {
	OccurredAt    time.Time
	ObservedAt    time.Time
	ID            string
	Vendor        string
	Category      string
	SourceText    string // Raw message the transaction was extracted from
	PaymentMethod string // UPI, card, netbanking, wallet when detectable
	BankRef       string // Bank reference number if the message carried one
	Hash          string
	Direction     TransactionDirection
	Amount        float64
	Confidence    float64
	IsRecurring   bool
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.OccurredAt.Format("2006-01-02"),
		t.Amount,
		strings.ToLower(t.Vendor),
		t.Direction)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// IsDebit reports whether the transaction is an outflow.
func (t *Transaction) IsDebit() bool {
	return t.Direction == DirectionDebit
}
