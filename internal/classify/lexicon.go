// Package classify maps vendor names to spending categories using a curated
// lexicon with a statistical fallback.
package classify

import (
	"strings"

	"github.com/finsift/finsift/internal/model"
)

// lexiconEntry maps a normalized vendor substring to a canonical category.
// Longer (more specific) substrings are matched first.
type lexiconEntry struct {
	substring string
	category  string
}

// defaultLexicon is the curated vendor lexicon loaded at startup. Retraining
// the statistical fallback never touches it.
func defaultLexicon() []lexiconEntry {
	table := map[string][]string{
		model.CategoryFoodDining: {
			"zomato", "swiggy", "dominos", "mcdonald", "kfc", "pizza", "starbucks",
			"cafe", "restaurant", "dunkin", "subway", "burger", "biryani", "eatfit",
		},
		model.CategoryShopping: {
			"amazon", "flipkart", "myntra", "ajio", "nykaa", "ikea", "decathlon",
			"reliance retail", "dmart", "big bazaar", "croma", "mall",
		},
		model.CategoryTransportation: {
			"uber", "ola", "rapido", "metro", "irctc", "redbus", "petrol", "fuel",
			"indian oil", "hpcl", "bpcl", "shell", "fastag", "parking",
		},
		model.CategoryEntertainment: {
			"netflix", "spotify", "hotstar", "prime video", "bookmyshow", "pvr",
			"inox", "youtube", "playstation", "steam", "cinema",
		},
		model.CategoryHealthcare: {
			"apollo", "pharmeasy", "netmeds", "1mg", "practo", "hospital",
			"clinic", "pharmacy", "chemist", "diagnostic", "lab",
		},
		model.CategoryBillsUtilities: {
			"airtel", "jio", "vodafone", "vi ", "bsnl", "electricity", "tata power",
			"bescom", "broadband", "dth", "gas", "water bill", "postpaid", "recharge",
		},
		model.CategoryFinancial: {
			"mutual fund", "zerodha", "groww", "upstox", "sip", "lic", "insurance",
			"premium", "emi", "loan", "credit card payment", "fd ", "nps",
		},
		model.CategoryTravel: {
			"makemytrip", "goibibo", "cleartrip", "indigo", "air india", "vistara",
			"spicejet", "oyo", "airbnb", "booking.com", "hotel", "resort", "yatra",
		},
		model.CategoryEducation: {
			"udemy", "coursera", "byjus", "unacademy", "upgrad", "school", "college",
			"university", "tuition", "academy", "books",
		},
	}

	var entries []lexiconEntry
	for category, substrings := range table {
		for _, s := range substrings {
			entries = append(entries, lexiconEntry{substring: s, category: category})
		}
	}
	// Longest substring first so "credit card payment" beats "card".
	for i := 0; i < len(entries)-1; i++ {
		for j := i + 1; j < len(entries); j++ {
			if len(entries[j].substring) > len(entries[i].substring) {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}
	return entries
}

// normalizeVendor lowercases and collapses a vendor name for matching.
func normalizeVendor(vendor string) string {
	lower := strings.ToLower(strings.TrimSpace(vendor))
	return strings.Join(strings.Fields(lower), " ")
}

// lookupLexicon returns the category for vendor, or "" when no entry matches.
func lookupLexicon(entries []lexiconEntry, vendor string) string {
	norm := normalizeVendor(vendor)
	if norm == "" {
		return ""
	}
	for _, e := range entries {
		if strings.Contains(norm, e.substring) {
			return e.category
		}
	}
	return ""
}
