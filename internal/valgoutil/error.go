// Package valgoutil turns valgo validations into plain errors.
package valgoutil

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cohesivestack/valgo"
)

// GetDetails returns one "name: message, message" line per invalid value,
// sorted by name.
func GetDetails(err *valgo.Error) []string {
	if err == nil || err.Errors() == nil {
		return []string{}
	}

	details := make([]string, 0, len(err.Errors()))
	for _, v := range err.Errors() {
		messages := slices.Clone(v.Messages())
		slices.Sort(messages)
		details = append(details, fmt.Sprintf("%s: %s", v.Name(), strings.Join(messages, ", ")))
	}
	slices.Sort(details)
	return details
}

// Error ties a failed validation to a package sentinel, so callers can
// match either with errors.Is and errors.As.
type Error struct {
	Sentinel error
	Details  *valgo.Error
}

func (e *Error) Error() string {
	return e.Sentinel.Error() + ": " + strings.Join(GetDetails(e.Details), "; ")
}

func (e *Error) Unwrap() []error {
	return []error{e.Sentinel, e.Details}
}

// ToError returns nil when v is valid and an *Error wrapping sentinel otherwise.
func ToError(v *valgo.Validation, sentinel error) error {
	if v.Valid() {
		return nil
	}
	var verr *valgo.Error
	if err := v.ToError(); !errors.As(err, &verr) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return &Error{Sentinel: sentinel, Details: verr}
}
