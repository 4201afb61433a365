package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every ValidationError via errors.Is.
	ErrValidation = errors.New("validation error")
	// ErrUnknownInsightKind is returned when a summary is requested for an unsupported kind.
	ErrUnknownInsightKind = errors.New("unknown insight kind")
)

// ValidationError reports a record whose required field is structurally absent.
// Malformed but present content never produces a ValidationError.
type ValidationError struct {
	Index int    // 入力スライス内の位置
	Field string // JSON上のフィールド名
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %d: required field %q is missing", e.Index, e.Field)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func requireString(index int, field, value string) error {
	if value == "" {
		return &ValidationError{Index: index, Field: field}
	}
	return nil
}
