package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/jakehq/jaketodo/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("todo_status", validateTodoStatus); err != nil {
		panic(fmt.Sprintf("failed to register todo_status validator: %v", err))
	}
}

// validateTodoStatus validates that a string is a valid TodoStatus enum value
func validateTodoStatus(fl validator.FieldLevel) bool {
	switch models.TodoStatus(fl.Field().String()) {
	case models.TodoStatusPending, models.TodoStatusCompleted:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateDescription rejects empty or whitespace-only descriptions.
func ValidateDescription(description string) error {
	if SanitizeText(description) == "" {
		return &models.ValidationError{Field: "description", Reason: "must not be empty"}
	}
	return nil
}

// ValidatePriority rejects priorities outside 1..4.
func ValidatePriority(priority int) error {
	if priority < models.PriorityHighest || priority > models.PriorityLowest {
		return &models.ValidationError{
			Field:  "priority",
			Reason: fmt.Sprintf("must be between %d and %d", models.PriorityHighest, models.PriorityLowest),
		}
	}
	return nil
}

// ValidateStatus validates a TodoStatus string value
func ValidateStatus(value string) error {
	if err := Validate.Var(value, "todo_status"); err != nil {
		return &models.ValidationError{Field: "status", Reason: "must be 'pending' or 'completed'"}
	}
	return nil
}
