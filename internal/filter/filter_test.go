package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsift/finsift/internal/model"
)

func TestAnalyze(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		text       string
		sender     string
		recent     []string
		wantValid  bool
		wantReason model.FilterReason
	}{
		{
			name:       "genuine debit notification",
			text:       "Your account debited by Rs.250 at Zomato on 2025-01-10",
			sender:     "VM-HDFCBK",
			wantValid:  true,
			wantReason: model.ReasonOK,
		},
		{
			name:       "otp message",
			text:       "Your OTP is 4532, do not share",
			wantValid:  false,
			wantReason: model.ReasonOTP,
		},
		{
			name:       "promotional message",
			text:       "Mega sale ends tonight! Extra discount with coupon SAVE20, T&C apply",
			wantValid:  false,
			wantReason: model.ReasonPromotional,
		},
		{
			name:       "balance alert",
			text:       "Your avl bal is Rs.1,240.50. Maintain minimum balance to avoid charges",
			wantValid:  false,
			wantReason: model.ReasonBalanceAlert,
		},
		{
			name:       "no keywords at all",
			text:       "Hey, are we still on for lunch tomorrow?",
			wantValid:  false,
			wantReason: model.ReasonNoKeywords,
		},
		{
			name:       "transaction keyword without amount stays low signal",
			text:       "Amount debited towards your registered biller",
			wantValid:  false,
			wantReason: model.ReasonLowSignal,
		},
		{
			name:       "suppression dominates mixed message",
			text:       "Use OTP 9921 to confirm the amount to be debited, do not share",
			wantValid:  false,
			wantReason: model.ReasonOTP,
		},
	}

	f := NewDefault()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := f.Analyze(tt.text, tt.sender, now, tt.recent)
			assert.Equal(t, tt.wantValid, verdict.IsValid)
			assert.Equal(t, tt.wantReason, verdict.Reason)
			assert.GreaterOrEqual(t, verdict.Confidence, 0.0)
			assert.LessOrEqual(t, verdict.Confidence, 1.0)
		})
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	f := NewDefault()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	text := "Rs.500 debited at Amazon via UPI"

	first := f.Analyze(text, "VM-HDFCBK", now, nil)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, f.Analyze(text, "VM-HDFCBK", now, nil))
	}
}

func TestAnalyzeNearDuplicatePenalty(t *testing.T) {
	f := NewDefault()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	text := "Rs.250 debited at Zomato via UPI ref 12345678"

	fresh := f.Analyze(text, "", now, nil)
	resent := f.Analyze(text, "", now, []string{text})
	assert.Less(t, resent.Confidence, fresh.Confidence)
}

func TestAnalyzeDetectedKeywords(t *testing.T) {
	f := NewDefault()
	verdict := f.Analyze("Rs.120 paid to Swiggy, purchase successful", "", time.Now(), nil)
	require.True(t, verdict.IsValid)
	assert.Contains(t, verdict.DetectedKeywords, "paid")
	assert.Contains(t, verdict.DetectedKeywords, "purchase")
}

func TestTrustedSender(t *testing.T) {
	assert.True(t, TrustedSender("VM-HDFCBK"))
	assert.True(t, TrustedSender("MPESA"))
	assert.False(t, TrustedSender("+919812345678"))
	assert.False(t, TrustedSender(""))
}

func TestRecentMessagesRing(t *testing.T) {
	r := NewRecentMessages(3)
	assert.Empty(t, r.Items())

	r.Add("a")
	r.Add("b")
	assert.Equal(t, []string{"a", "b"}, r.Items())

	r.Add("c")
	r.Add("d") // evicts "a"
	assert.Equal(t, []string{"b", "c", "d"}, r.Items())

	r.Add("e")
	assert.Equal(t, []string{"c", "d", "e"}, r.Items())
}
