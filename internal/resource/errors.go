package resource

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInFlight     = errors.New("a submission is already in flight")
	ErrNotLoaded    = errors.New("form is still loading")
	ErrSubmitted    = errors.New("form already submitted")
	ErrInvalid      = errors.New("form has invalid fields")
	ErrNotFound     = errors.New("data tidak ditemukan")
	ErrNotSupported = errors.New("operation not supported by this resource")
)

// FieldErrors maps field key to its first validation message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error {
	return ErrInvalid
}

// RuleError is a business rule that spans fields, such as a minimum number
// of selected relation ids. It is shown as a banner rather than per field.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func (e *RuleError) Unwrap() error {
	return ErrInvalid
}

func Rule(msg string) error {
	return &RuleError{Message: msg}
}
