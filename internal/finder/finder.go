package finder

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-globalize/internal/locale"
	"github.com/goliatone/go-globalize/internal/logging"
	"github.com/goliatone/go-globalize/internal/registry"
	"github.com/goliatone/go-globalize/pkg/interfaces"
)

// Option configures a Finder.
type Option[T any] func(*Finder[T])

// WithLogger sets the finder logger.
func WithLogger[T any](logger interfaces.Logger) Option[T] {
	return func(f *Finder[T]) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Finder runs dynamic finders for a bun model T, typically a struct pointer.
type Finder[T any] struct {
	db      bun.IDB
	model   *registry.Model
	builder *Builder
	logger  interfaces.Logger
}

// New returns a finder for model over db.
func New[T any](db bun.IDB, model *registry.Model, resolver locale.FallbackResolver, opts ...Option[T]) *Finder[T] {
	f := &Finder[T]{
		db:      db,
		model:   model,
		builder: NewBuilder(model, resolver),
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Builder exposes the query builder.
func (f *Finder[T]) Builder() *Builder {
	return f.builder
}

// Find runs q. First and Last kinds return at most one record. Strict
// queries return a *NotFoundError when nothing matched.
func (f *Finder[T]) Find(ctx context.Context, q Query) ([]T, error) {
	plan, err := f.builder.Plan(q)
	if err != nil {
		return nil, err
	}

	var records []T
	sel := f.db.NewSelect().Model(&records)
	sel = f.builder.Apply(sel, plan)
	sel = f.builder.Order(sel, q.Kind)

	if err := sel.Scan(ctx); err != nil {
		f.logger.Error("finder.query.failed", "model", f.model.Name(), "attributes", q.Attributes, "error", err)
		return nil, fmt.Errorf("find %s by %v: %w", f.model.Name(), q.Attributes, err)
	}
	f.logger.Debug("finder.query", "model", f.model.Name(), "kind", q.Kind.String(), "locales", plan.Locales, "results", len(records))

	if q.Strict && len(records) == 0 {
		return nil, &NotFoundError{Model: f.model.Name(), Attributes: q.Attributes, Values: q.Values}
	}
	return records, nil
}

// First returns the first match, or false when nothing matched.
func (f *Finder[T]) First(ctx context.Context, q Query) (T, bool, error) {
	var zero T
	records, err := f.Find(ctx, q)
	if err != nil || len(records) == 0 {
		return zero, false, err
	}
	return records[0], true, nil
}

// WithTranslations returns the owners that have a complete translation
// row in code.
func (f *Finder[T]) WithTranslations(ctx context.Context, code string) ([]T, error) {
	var records []T
	sel := f.db.NewSelect().Model(&records)
	sel = f.builder.ApplyWithTranslations(sel, code)
	sel = f.builder.Order(sel, KindAll)
	if err := sel.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select %s with %s translations: %w", f.model.Name(), code, err)
	}
	return records, nil
}
