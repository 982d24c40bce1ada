package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-globalize/pkg/interfaces"
)

// WithFields returns logger with fields attached when it implements
// interfaces.FieldsLogger. Other loggers, and empty field sets, pass
// through unchanged.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fieldsLogger.WithFields(maps.Clone(fields))
}

// FromContext binds ctx to logger and attaches the fields annotated on ctx
// with ContextWithFields, such as the request locale.
func FromContext(ctx context.Context, logger interfaces.Logger) interfaces.Logger {
	if logger == nil || ctx == nil {
		return logger
	}
	return WithFields(logger.WithContext(ctx), ContextFields(ctx))
}
