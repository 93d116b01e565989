package hyli

import (
	"errors"
	"fmt"
)

// ValidationError indicates caller-supplied data violated a length or format
// invariant; the input is deterministically wrong and must not be retried
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s; %s", e.Field, e.Message)
}

// NotFoundError indicates the node does not know the requested resource; it
// is the only recoverable ledger client error and gates contract registration
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// IsNotFound returns true if the given error is a NotFoundError
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
