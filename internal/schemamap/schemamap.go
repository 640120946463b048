// Package schemamap resolves an arbitrary input table's columns onto the
// canonical transaction schema, either automatically by exact header match
// or by suggesting a best-guess assignment for manual review.
package schemamap

import (
	"strings"

	"pisopatrol/dashboard/internal/dasherror"
)

// None is the sentinel assignment for an optional field with no source column.
const None = ""

// Mapping assigns one raw column name to each canonical field. Optional
// fields (Subcategory, Type, Account) may be None.
type Mapping struct {
	Date        string
	Amount      string
	Category    string
	Subcategory string
	Type        string
	Account     string
}

// Complete reports whether all required fields are assigned.
func (m Mapping) Complete() bool {
	return m.Date != None && m.Amount != None && m.Category != None
}

// Normalize fills optional assignments the way the cleaner expects them:
// an unmapped Subcategory falls back to the Category column. Type and
// Account stay None; the cleaner applies inference and sentinels for those.
func (m Mapping) Normalize() Mapping {
	if m.Subcategory == None {
		m.Subcategory = m.Category
	}
	return m
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// AutoMap matches normalized headers exactly against the canonical field
// names. All required fields (date, amount, category) must match or the
// whole attempt fails with a MappingError; there is no partial automation.
func AutoMap(headers []string) (Mapping, error) {
	var m Mapping
	for _, h := range headers {
		switch normalizeHeader(h) {
		case "date":
			m.Date = h
		case "amount":
			m.Amount = h
		case "category":
			m.Category = h
		case "subcategory":
			m.Subcategory = h
		case "type":
			m.Type = h
		case "account":
			m.Account = h
		}
	}

	var missing []string
	if m.Date == None {
		missing = append(missing, "date")
	}
	if m.Amount == None {
		missing = append(missing, "amount")
	}
	if m.Category == None {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return Mapping{}, &dasherror.MappingError{Missing: missing}
	}

	return m.Normalize(), nil
}

// Suggest builds a best-guess assignment for manual mapping mode: for each
// field, the first header containing the field name as a substring; required
// fields fall back to the first column, optional fields to None.
func Suggest(headers []string) Mapping {
	if len(headers) == 0 {
		return Mapping{}
	}

	guess := func(keyword, fallback string) string {
		for _, h := range headers {
			if strings.Contains(normalizeHeader(h), keyword) {
				return h
			}
		}
		return fallback
	}

	first := headers[0]
	return Mapping{
		Date:        guess("date", first),
		Amount:      guess("amount", first),
		Category:    guess("category", first),
		Subcategory: guess("subcategory", None),
		Type:        guess("type", None),
		Account:     guess("account", None),
	}
}
