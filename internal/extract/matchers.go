package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/finsift/finsift/internal/model"
)

// amountRe matches a currency-prefixed numeric token, tolerant of thousands
// separators and an optional fractional part.
var amountRe = regexp.MustCompile(`(?i)(?:rs\.?|inr|₹|\$|ksh|usd)\s*([\d,]+(?:\.\d{1,2})?)`)

// balanceContextRe marks amounts that describe a balance or limit rather than
// the transaction itself.
var balanceContextRe = regexp.MustCompile(`(?i)(?:avl|available|new|a/c)?\s*(?:bal(?:ance)?|limit)\s*(?:is|:)?\s*$`)

// matchAmounts returns the distinct transaction amounts in text, excluding
// tokens that sit in a balance/limit clause.
func matchAmounts(text string) []float64 {
	matches := amountRe.FindAllStringSubmatchIndex(text, -1)
	seen := make(map[float64]struct{})
	var amounts []float64

	for _, m := range matches {
		start := m[0]
		ctxStart := start - 25
		if ctxStart < 0 {
			ctxStart = 0
		}
		if balanceContextRe.MatchString(text[ctxStart:start]) {
			continue
		}

		raw := strings.ReplaceAll(text[m[2]:m[3]], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		amounts = append(amounts, v)
	}

	return amounts
}

// vendorStopRe ends a vendor capture at trailing boilerplate.
var vendorStopRe = regexp.MustCompile(`(?i)\s+(?:on|via|using|ref|upi|a/c|avl|bal|balance|info|not you|call|sms)\b.*$`)

// cleanVendor trims punctuation and boilerplate from a captured vendor token.
func cleanVendor(raw string) string {
	v := vendorStopRe.ReplaceAllString(raw, "")
	v = strings.Trim(v, " .,;:-*")
	// Normalize runs of whitespace left by the SMS gateway.
	return strings.Join(strings.Fields(v), " ")
}

var dateRes = []struct {
	re      *regexp.Regexp
	layouts []string
}{
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), []string{"2006-01-02"}},
	{regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`), []string{"02/01/2006", "2/1/2006", "02/01/06", "2/1/06"}},
	{regexp.MustCompile(`\d{1,2}-[A-Za-z]{3}-\d{2,4}`), []string{"02-Jan-2006", "2-Jan-2006", "02-Jan-06", "2-Jan-06"}},
}

// matchDate finds an explicit date token in text. A missing or unparseable
// token falls back to the message's received timestamp.
func matchDate(text string, receivedAt time.Time) time.Time {
	for _, d := range dateRes {
		token := d.re.FindString(text)
		if token == "" {
			continue
		}
		for _, layout := range d.layouts {
			if ts, err := time.Parse(layout, token); err == nil {
				return ts
			}
		}
	}
	return receivedAt
}

var (
	debitWords  = []string{"debited", "paid", "spent", "withdrawn", "purchase", "sent"}
	creditWords = []string{"credited", "received", "deposited", "refunded", "refund"}
)

// matchDirection infers debit vs credit from the message vocabulary.
// Ambiguous messages default to DEBIT; outbound spend dominates real traffic
// and the fallback is deliberate (see the direction bias tests).
func matchDirection(lower string) model.TransactionDirection {
	for _, w := range creditWords {
		if strings.Contains(lower, w) {
			for _, d := range debitWords {
				if strings.Contains(lower, d) {
					return model.DirectionDebit
				}
			}
			return model.DirectionCredit
		}
	}
	return model.DirectionDebit
}

var methodRes = []struct {
	re     *regexp.Regexp
	method string
}{
	{regexp.MustCompile(`(?i)\bupi\b`), "UPI"},
	{regexp.MustCompile(`(?i)credit\s*card|debit\s*card|\bcard\b`), "card"},
	{regexp.MustCompile(`(?i)net\s*banking|netbanking|neft|imps|rtgs`), "netbanking"},
	{regexp.MustCompile(`(?i)\bwallet\b|paytm|phonepe|mpesa`), "wallet"},
}

func matchPaymentMethod(text string) string {
	for _, m := range methodRes {
		if m.re.MatchString(text) {
			return m.method
		}
	}
	return ""
}

var bankRefRe = regexp.MustCompile(`(?i)\b(?:ref(?:erence)?(?:\s*no)?\.?|utr)\s*:?\s*([A-Za-z0-9]{6,20})`)

func matchBankRef(text string) string {
	m := bankRefRe.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.ToUpper(m[1])
}
