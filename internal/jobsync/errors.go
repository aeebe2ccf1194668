package jobsync

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is returned when a command is rejected locally. No request
// is sent for a command that fails validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is a local validation failure.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// fromValidator converts the first validator failure into a ValidationError.
func fromValidator(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return fmt.Errorf("validation failed: %w", err)
	}

	fe := errs[0]
	field := fe.Field()
	// dive reports slice elements as Networks[2]
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}

	return &ValidationError{Field: field, Message: validationMessage(field, fe)}
}

func validationMessage(field string, fe validator.FieldError) string {
	switch {
	case field == "Query":
		return "Enter a search query"
	case field == "MaxPosts":
		return "Max posts must be greater than 0"
	case field == "Request":
		return "Enter the request to analyze"
	case field == "Networks" && fe.Tag() == "scrapenetwork":
		return fmt.Sprintf("Unknown network %q (choose from %s)", fe.Value(), strings.Join(ScrapeNetworks, ", "))
	case field == "Networks":
		return "Select at least one network"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
