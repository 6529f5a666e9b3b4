package model

// Canonical spending categories. The set is closed: classification never
// produces a category outside this list, and the names are part of the wire
// contract shared with every consumer of the store.
const (
	CategoryFoodDining     = "Food & Dining"
	CategoryShopping       = "Shopping"
	CategoryTransportation = "Transportation"
	CategoryEntertainment  = "Entertainment"
	CategoryHealthcare     = "Healthcare"
	CategoryBillsUtilities = "Bills & Utilities"
	CategoryFinancial      = "Financial"
	CategoryTravel         = "Travel"
	CategoryEducation      = "Education"
	CategoryOther          = "Other"
)

// Categories returns the canonical category set in stable order.
func Categories() []string {
	return []string{
		CategoryFoodDining,
		CategoryShopping,
		CategoryTransportation,
		CategoryEntertainment,
		CategoryHealthcare,
		CategoryBillsUtilities,
		CategoryFinancial,
		CategoryTravel,
		CategoryEducation,
		CategoryOther,
	}
}

// ValidCategory reports whether name belongs to the canonical set.
func ValidCategory(name string) bool {
	for _, c := range Categories() {
		if c == name {
			return true
		}
	}
	return false
}
