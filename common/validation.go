package common

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a single field-level rejection of a record
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RecordError attributes a failure to one imported record
type RecordError struct {
	Index     int    `json:"index"`
	RowNumber int    `json:"row_number,omitempty"`
	Name      string `json:"name"`
	Message   string `json:"message"`
}

// RecordErrorsJSON converts record errors to a JSON string for storage
func RecordErrorsJSON(errs []RecordError) string {
	if len(errs) == 0 {
		return ""
	}
	data, _ := json.Marshal(errs)
	return string(data)
}

// ParseRecordErrors is the inverse of RecordErrorsJSON. Empty or corrupt input
// yields no errors.
func ParseRecordErrors(s string) []RecordError {
	if s == "" {
		return nil
	}
	var errs []RecordError
	if err := json.Unmarshal([]byte(s), &errs); err != nil {
		return nil
	}
	return errs
}

// Email validation regex (simplified RFC 5322)
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if email format is valid
func ValidateEmail(email string) bool {
	if email == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

// ValidateRequired checks if a string field is not empty
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
		}
	}
	return nil
}

// ValidateOptionalEmail accepts an absent or blank email, otherwise checks format
func ValidateOptionalEmail(field, value string) *ValidationError {
	value = strings.TrimSpace(value)
	if value == "" || ValidateEmail(value) {
		return nil
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s %q is not a valid email address", field, value),
	}
}

// ValidateEnum checks if value is in allowed list
func ValidateEnum(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")),
	}
}
