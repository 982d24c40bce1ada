package registry

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNoAttributes indicates a declaration without translated attributes.
	ErrNoAttributes = errors.New("registry: at least one translated attribute is required")
	// ErrModelNotTranslatable indicates a lookup for a type that never declared translations.
	ErrModelNotTranslatable = errors.New("registry: model does not declare translated attributes")
	// ErrUnknownAttribute indicates an attribute name missing from the declaration.
	ErrUnknownAttribute = errors.New("registry: attribute is not translated")
	// ErrInvalidOwner indicates the owner description is incomplete.
	ErrInvalidOwner = errors.New("registry: model owner requires name and table")
	// ErrDuplicateModel indicates a model name already taken by another type.
	ErrDuplicateModel = errors.New("registry: model name already registered")
)

// DuplicateModelError reports two Go types declared under the same model
// name. It unwraps to ErrDuplicateModel.
type DuplicateModelError struct {
	Name     string
	Existing reflect.Type
	Type     reflect.Type
}

func (e *DuplicateModelError) Error() string {
	return fmt.Sprintf("registry: model %q is already registered by %v, cannot register %v", e.Name, e.Existing, e.Type)
}

func (e *DuplicateModelError) Unwrap() error {
	return ErrDuplicateModel
}

// UnknownAttributeError names the attribute and model involved in a
// configuration mistake. It unwraps to ErrUnknownAttribute.
type UnknownAttributeError struct {
	Model     string
	Attribute string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("registry: %s does not translate %q", e.Model, e.Attribute)
}

func (e *UnknownAttributeError) Unwrap() error {
	return ErrUnknownAttribute
}
