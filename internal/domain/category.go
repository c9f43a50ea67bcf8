package domain

import "strings"

// Category is a transaction category drawn from a fixed set per Kind.
type Category string

// Income categories.
const (
	CategorySalary      Category = "Salary"
	CategoryFreelance   Category = "Freelance"
	CategoryInvestment  Category = "Investment"
	CategoryGift        Category = "Gift"
	CategoryOtherIncome Category = "Other Income"
)

// Expense categories.
const (
	CategoryFood          Category = "Food"
	CategoryHousing       Category = "Housing"
	CategoryTransport     Category = "Transport"
	CategoryUtilities     Category = "Utilities"
	CategoryEntertainment Category = "Entertainment"
	CategoryShopping      Category = "Shopping"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryTravel        Category = "Travel"
	CategoryOther         Category = "Other"
)

var incomeCategories = []Category{
	CategorySalary,
	CategoryFreelance,
	CategoryInvestment,
	CategoryGift,
	CategoryOtherIncome,
}

var expenseCategories = []Category{
	CategoryFood,
	CategoryHousing,
	CategoryTransport,
	CategoryUtilities,
	CategoryEntertainment,
	CategoryShopping,
	CategoryHealth,
	CategoryEducation,
	CategoryTravel,
	CategoryOther,
}

// Categories returns the categories valid for the given kind, in display order.
// The returned slice is a copy.
func Categories(k Kind) []Category {
	var src []Category
	switch k {
	case KindIncome:
		src = incomeCategories
	case KindExpense:
		src = expenseCategories
	default:
		return nil
	}
	out := make([]Category, len(src))
	copy(out, src)
	return out
}

// ValidFor reports whether c belongs to the set valid for k.
func (c Category) ValidFor(k Kind) bool {
	for _, candidate := range Categories(k) {
		if candidate == c {
			return true
		}
	}
	return false
}

// NormalizeCategory maps free-form category text onto the enumerated set for k,
// matching case-insensitively. Unknown names fall back to the kind's catch-all.
func NormalizeCategory(k Kind, name string) Category {
	norm := strings.ToUpper(strings.TrimSpace(name))
	for _, c := range Categories(k) {
		if strings.ToUpper(string(c)) == norm {
			return c
		}
	}
	if k == KindIncome {
		return CategoryOtherIncome
	}
	return CategoryOther
}
