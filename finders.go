package globalize

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-globalize/internal/finder"
	"github.com/goliatone/go-globalize/internal/migrations"
	"github.com/goliatone/go-globalize/internal/registry"
)

type (
	// FinderQuery describes a finder call. An empty Locale means the
	// active locale.
	FinderQuery = finder.Query
	// FinderKind selects first, last or all matches.
	FinderKind = finder.Kind
	// ModelOption customises a model declaration.
	ModelOption = registry.Option
	// FieldType is the column type of a translated attribute.
	FieldType = registry.FieldType
	// Fields maps translated attributes to column types.
	Fields = migrations.Fields
)

const (
	FindFirst = finder.KindFirst
	FindLast  = finder.KindLast
	FindAll   = finder.KindAll

	FieldString = registry.FieldString
	FieldText   = registry.FieldText
)

var (
	WithTableName     = registry.WithTableName
	WithForeignKey    = registry.WithForeignKey
	WithFieldType     = registry.WithFieldType
	WithRules         = registry.WithRules
	WithDefaultLocale = registry.WithDefaultLocale
)

// Query runs a finder query, filling in the active locale when q has none.
func (r *Repository[T]) Query(ctx context.Context, q FinderQuery) ([]T, error) {
	q.Locale = r.activeLocale(ctx, q.Locale)
	return r.finder.Find(ctx, q)
}

// FindBy returns the first record whose attributes equal values. Translated
// attributes match in any locale of the active fallback chain.
func (r *Repository[T]) FindBy(ctx context.Context, attributes []string, values ...any) (T, bool, error) {
	return r.first(ctx, FinderQuery{Kind: FindFirst, Attributes: attributes, Values: values})
}

// FindLastBy is FindBy ordered by descending primary key.
func (r *Repository[T]) FindLastBy(ctx context.Context, attributes []string, values ...any) (T, bool, error) {
	return r.first(ctx, FinderQuery{Kind: FindLast, Attributes: attributes, Values: values})
}

// MustFindBy is FindBy returning a *NotFoundError when nothing matched.
func (r *Repository[T]) MustFindBy(ctx context.Context, attributes []string, values ...any) (T, error) {
	var zero T
	records, err := r.Query(ctx, FinderQuery{Kind: FindFirst, Strict: true, Attributes: attributes, Values: values})
	if err != nil {
		return zero, err
	}
	return records[0], nil
}

// FindAllBy returns every matching record ordered by primary key.
func (r *Repository[T]) FindAllBy(ctx context.Context, attributes []string, values ...any) ([]T, error) {
	return r.Query(ctx, FinderQuery{Kind: FindAll, Attributes: attributes, Values: values})
}

// FindByName runs a dynamic finder such as "find_all_by_subject_and_blog_id"
// or "find_by_subject!".
func (r *Repository[T]) FindByName(ctx context.Context, name string, values ...any) ([]T, error) {
	match, ok := finder.ParseName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFinder, name)
	}
	return r.Query(ctx, finder.FromMatch(match, values...))
}

// WithTranslations returns the records with a complete translation row in
// code, or in the active locale when code is empty. The rows are loaded
// into each record so reading them needs no further queries.
func (r *Repository[T]) WithTranslations(ctx context.Context, code string) ([]T, error) {
	active := r.activeLocale(ctx, code)
	records, err := r.finder.WithTranslations(ctx, active)
	if err != nil || len(records) == 0 {
		return records, err
	}

	ids := make([]uuid.UUID, len(records))
	for i, rec := range records {
		ids[i] = rec.GetID()
	}
	rows, err := r.store.ListForOwners(ctx, r.model, ids, active)
	if err != nil {
		return nil, err
	}
	byOwner := make(map[uuid.UUID]*Row, len(rows))
	for _, row := range rows {
		byOwner[row.OwnerID] = row
	}
	for _, rec := range records {
		if row, ok := byOwner[rec.GetID()]; ok {
			rec.globalizeTranslations().attributeCache().Load(active, row)
		}
	}
	return records, nil
}

func (r *Repository[T]) first(ctx context.Context, q FinderQuery) (T, bool, error) {
	var zero T
	records, err := r.Query(ctx, q)
	if err != nil || len(records) == 0 {
		return zero, false, err
	}
	return records[0], true, nil
}
