package validator

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	minNameLength = 2
	minAge        = 1
	maxAge        = 120
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error aggregates every violated field of a submission, so callers can
// report all problems at once instead of only the first.
type Error struct {
	Fields []FieldError `json:"errors"`
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

// Submission runs the structural admission checks on a raw enrollment
// request. It returns the normalized CPF and a non-nil *Error listing every
// violated field when the input is malformed. No I/O is performed.
func Submission(name string, age int, cpf string) (string, *Error) {
	var fields []FieldError

	if msg := checkName(name); msg != "" {
		fields = append(fields, FieldError{Field: "name", Message: msg})
	}
	if age < minAge || age > maxAge {
		fields = append(fields, FieldError{Field: "age", Message: fmt.Sprintf("age must be between %d and %d", minAge, maxAge)})
	}

	normalized := NormalizeCPF(cpf)
	if !ValidCPF(cpf) {
		fields = append(fields, FieldError{Field: "cpf", Message: "cpf must be a valid 11-digit document number"})
	}

	if len(fields) > 0 {
		return "", &Error{Fields: fields}
	}
	return normalized, nil
}

func checkName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "name must not be empty"
	}
	if len([]rune(trimmed)) < minNameLength {
		return fmt.Sprintf("name must have at least %d characters", minNameLength)
	}
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			return ""
		}
	}
	return "name must contain at least one letter"
}
