package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"edutrack/internal/apperror"
)

// Field limits carried over from the storage schema contracts.
const (
	MaxFirstNameLength      = 30
	MaxLastNameLength       = 30
	MaxSubjectNameLength    = 100
	MaxTextLength           = 1000
	MaxAssignmentNameLength = 50
)

const dateLayout = "2006-01-02"

// maxGrade bounds grades to five digits with two decimal places.
var maxGrade = decimal.RequireFromString("999.99")

func validateRequiredName(field, value string, max int) error {
	if value == "" {
		return apperror.ValidationFailed(field, fmt.Sprintf("%s is required", field))
	}
	if len(value) > max {
		return apperror.ValidationFailed(field, fmt.Sprintf("%s must be %d characters or less", field, max))
	}
	return nil
}

func validateText(field, value string) error {
	if len(value) > MaxTextLength {
		return apperror.ValidationFailed(field, fmt.Sprintf("%s must be %d characters or less", field, MaxTextLength))
	}
	return nil
}

func validateDate(field, value string) error {
	if _, err := time.Parse(dateLayout, value); err != nil {
		return apperror.ValidationFailed(field, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
	}
	return nil
}

func validateGrade(g decimal.Decimal) error {
	if g.IsNegative() {
		return apperror.ValidationFailed("grade", "grade must not be negative")
	}
	if g.GreaterThan(maxGrade) {
		return apperror.ValidationFailed("grade", "grade must be 999.99 or less")
	}
	if !g.Equal(g.Round(2)) {
		return apperror.ValidationFailed("grade", "grade must have at most 2 decimal places")
	}
	return nil
}
