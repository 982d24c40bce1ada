package migrations

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-globalize/internal/registry"
)

// ErrModelNotTranslatable is returned when no model declaration is supplied.
var ErrModelNotTranslatable = registry.ErrModelNotTranslatable

// ErrUnsupportedDialect is returned for databases without a column mapping.
var ErrUnsupportedDialect = errors.New("migrations: unsupported dialect")

// MissingTranslatedFieldError reports a field that is not a translated
// attribute of the model.
type MissingTranslatedFieldError struct {
	Model string
	Field string
}

func (e *MissingTranslatedFieldError) Error() string {
	return fmt.Sprintf("migrations: %s is not a translated attribute of %s", e.Field, e.Model)
}

// BadFieldTypeError reports a translated field whose column type cannot be
// stored in a translation table.
type BadFieldTypeError struct {
	Model string
	Field string
	Type  registry.FieldType
}

func (e *BadFieldTypeError) Error() string {
	return fmt.Sprintf("migrations: bad field type %q for %s.%s, only string and text are supported", e.Type, e.Model, e.Field)
}
