package types

import "fmt"

// LogCategory classifies a service log entry
type LogCategory string

const (
	LogCategoryMaintenance LogCategory = "Maintenance"
	LogCategoryIncident    LogCategory = "Incident"
	LogCategoryNote        LogCategory = "Note"
)

// AllLogCategories returns all valid log categories
func AllLogCategories() []LogCategory {
	return []LogCategory{
		LogCategoryMaintenance,
		LogCategoryIncident,
		LogCategoryNote,
	}
}

// IsValid checks if the log category is valid
func (c LogCategory) IsValid() bool {
	switch c {
	case LogCategoryMaintenance, LogCategoryIncident, LogCategoryNote:
		return true
	default:
		return false
	}
}

// String returns the string representation of the log category
func (c LogCategory) String() string {
	return string(c)
}

// ParseLogCategory parses a string into a LogCategory
func ParseLogCategory(s string) (LogCategory, error) {
	category := LogCategory(s)
	if !category.IsValid() {
		return "", fmt.Errorf("invalid log category: %s", s)
	}
	return category, nil
}
