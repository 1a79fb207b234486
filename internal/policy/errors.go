package policy

import (
	"errors"
	"fmt"
)

// ErrConfigNotFound matches every NotFoundError.
var ErrConfigNotFound = errors.New("configuration not found")

// NotFoundError names a missing rule file, section or country.
type NotFoundError struct {
	Resource    string
	CountryCode string
	Path        string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrConfigNotFound, e.Resource)
	if e.CountryCode != "" {
		msg += fmt.Sprintf(" for country %q", e.CountryCode)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	return msg
}

// Is makes errors.Is(err, ErrConfigNotFound) true.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrConfigNotFound
}
