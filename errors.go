package countries

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a requested identifier (country code, city
// name, coordinate resolution) has no matching record. It is the recoverable
// "no match" result of a lookup, not a dataset failure: callers decide the
// fallback, typically via errors.As.
type NotFoundError struct {
	Kind string // "country", "city", "coordinates", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// notFound is a convenience constructor for NotFoundError.
func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// MalformedDataError reports that a dataset resource exists but failed to
// parse, or is structurally empty where a non-empty structure is mandatory.
// It is fatal for the single load that produced it and is never cached: a
// later load of the same identifier retries from the byte source.
type MalformedDataError struct {
	Resource string
	Err      error
}

func (e *MalformedDataError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed dataset %s", e.Resource)
	}
	return fmt.Sprintf("malformed dataset %s: %v", e.Resource, e.Err)
}

func (e *MalformedDataError) Unwrap() error { return e.Err }

// ValidationError reports a record under construction missing a mandatory
// field. It is raised before the record becomes usable, so no consumer can
// observe a partially valid entity.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: field %q %s", e.Field, e.Reason)
}

// errAs is errors.As without the target-variable boilerplate.
func errAs[T error](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}
