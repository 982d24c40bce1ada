package finder

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is matched by NotFoundError.
	ErrNotFound = errors.New("finder: record not found")
	// ErrNoAttributes indicates a query without attribute names.
	ErrNoAttributes = errors.New("finder: at least one attribute is required")
	// ErrUnknownColumn indicates a predicate on a column the owner does not have.
	ErrUnknownColumn = errors.New("finder: unknown column")
)

// NotFoundError is returned by strict finders that matched nothing.
type NotFoundError struct {
	Model      string
	Attributes []string
	Values     []any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("finder: couldn't find %s with provided values of %s", e.Model, strings.Join(e.Attributes, ", "))
}

// Is lets errors.Is match ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UnknownColumnError names the attribute that is neither translated nor an
// owner column.
type UnknownColumnError struct {
	Model     string
	Attribute string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("finder: %s has no attribute %q", e.Model, e.Attribute)
}

func (e *UnknownColumnError) Unwrap() error {
	return ErrUnknownColumn
}
