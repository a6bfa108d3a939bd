package category

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/wichananm65/grocery-store/internal/validation"
)

// DefaultCategories is written on first use of an empty store.
var DefaultCategories = []string{
	"Fruits & Vegetables",
	"Dairy & Bakery",
	"Staples",
	"Snacks & Beverages",
	"Personal Care",
	"Household",
}

var namePattern = regexp.MustCompile(`^[A-Za-z ]{2,}$`)

// checkName validates a new category name against existing ones. The entry
// at index skip is ignored so a rename may change only the letter case.
func checkName(name string, existing []string, skip int) error {
	if name == "" {
		return validation.New("name", "is required")
	}
	if !namePattern.MatchString(name) {
		return validation.New("name", "must be at least 2 characters of letters and spaces")
	}
	fold := cases.Fold()
	key := fold.String(name)
	for i, c := range existing {
		if i == skip {
			continue
		}
		if fold.String(strings.TrimSpace(c)) == key {
			return validation.New("name", "category already exists")
		}
	}
	return nil
}
