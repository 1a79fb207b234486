package deal

import (
	"errors"
	"fmt"
)

// ErrNotComputed is returned when results are read before Compute.
var ErrNotComputed = errors.New("deal outputs not computed: call Compute first")

// ValidationError rejects an input field that breaks the input contract.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}
