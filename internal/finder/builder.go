package finder

import (
	"strings"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-globalize/internal/locale"
	"github.com/goliatone/go-globalize/internal/registry"
)

// Query describes a dynamic finder call.
type Query struct {
	Kind       Kind
	Strict     bool
	Attributes []string
	Values     []any
	// Locale is the active locale. Its fallback chain is matched when a
	// predicate targets a translated attribute.
	Locale string
}

// FromMatch builds a query from a parsed finder name.
func FromMatch(match Match, values ...any) Query {
	return Query{
		Kind:       match.Kind,
		Strict:     match.Strict,
		Attributes: match.Attributes,
		Values:     values,
	}
}

// Predicate is one equality condition of a plan.
type Predicate struct {
	Attribute  string
	Value      any
	Translated bool
}

// Plan is the resolved form of a query. Translated is set when any
// requested attribute is translated, even one dropped for lack of a value,
// and then Locales holds the chain the join is restricted to.
type Plan struct {
	Predicates []Predicate
	Locales    []string
	Translated bool
}

// Joins reports whether the plan needs the translation table.
func (p Plan) Joins() bool {
	return p.Translated
}

// Builder turns finder queries into bun select clauses for one model.
type Builder struct {
	model    *registry.Model
	resolver locale.FallbackResolver
}

// NewBuilder returns a builder for model.
func NewBuilder(model *registry.Model, resolver locale.FallbackResolver) *Builder {
	return &Builder{model: model, resolver: resolver}
}

// Plan splits the query into owner and translated predicates. Attributes
// and values are paired positionally and the shorter list wins, so extra
// values are ignored. An unpaired translated attribute still scopes the
// query to the locale chain.
func (b *Builder) Plan(q Query) (Plan, error) {
	if len(q.Attributes) == 0 {
		return Plan{}, ErrNoAttributes
	}

	n := min(len(q.Attributes), len(q.Values))
	plan := Plan{Predicates: make([]Predicate, 0, n)}
	for i, raw := range q.Attributes {
		name := strings.TrimSpace(raw)
		translated := b.model.IsTranslated(name)
		if !translated && !b.model.HasColumn(name) {
			return Plan{}, &UnknownColumnError{Model: b.model.Name(), Attribute: name}
		}
		plan.Translated = plan.Translated || translated
		if i >= n {
			continue
		}
		plan.Predicates = append(plan.Predicates, Predicate{
			Attribute:  name,
			Value:      Param(q.Values[i]),
			Translated: translated,
		})
	}
	if plan.Translated {
		plan.Locales = b.resolver.Resolve(q.Locale)
	}
	return plan, nil
}

// Apply adds the plan's join and predicates to q. The select must already
// target the owner model.
func (b *Builder) Apply(q *bun.SelectQuery, plan Plan) *bun.SelectQuery {
	owner := bun.Ident(b.model.Alias())
	table := bun.Ident(b.model.TranslationTable())

	if plan.Joins() {
		q = b.join(q)
	}
	for _, predicate := range plan.Predicates {
		qualifier := owner
		if predicate.Translated {
			qualifier = table
		}
		if predicate.Value == nil {
			q = q.Where("?.? IS NULL", qualifier, bun.Ident(predicate.Attribute))
			continue
		}
		q = q.Where("?.? = ?", qualifier, bun.Ident(predicate.Attribute), predicate.Value)
	}
	if plan.Joins() {
		q = q.Where("?.? IN (?)", table, bun.Ident("locale"), bun.In(plan.Locales))
	}
	return q
}

// ApplyWithTranslations restricts q to owners that have a complete row in
// code: the row exists and every required attribute is set.
func (b *Builder) ApplyWithTranslations(q *bun.SelectQuery, code string) *bun.SelectQuery {
	table := bun.Ident(b.model.TranslationTable())
	q = b.join(q).Where("?.? = ?", table, bun.Ident("locale"), locale.Normalize(code))
	for _, attribute := range b.model.RequiredAttributes() {
		q = q.Where("?.? IS NOT NULL", table, bun.Ident(attribute))
	}
	return q
}

// Order sorts q by primary key, descending for KindLast, and limits
// single-record kinds to one row.
func (b *Builder) Order(q *bun.SelectQuery, kind Kind) *bun.SelectQuery {
	owner := bun.Ident(b.model.Alias())
	pk := bun.Ident(b.model.PrimaryKey())
	switch kind {
	case KindLast:
		return q.OrderExpr("?.? DESC", owner, pk).Limit(1)
	case KindAll:
		return q.OrderExpr("?.? ASC", owner, pk)
	default:
		return q.OrderExpr("?.? ASC", owner, pk).Limit(1)
	}
}

// join adds the translation table. DISTINCT keeps an owner that matches
// in several chain locales from appearing twice.
func (b *Builder) join(q *bun.SelectQuery) *bun.SelectQuery {
	table := bun.Ident(b.model.TranslationTable())
	return q.Distinct().Join("JOIN ? AS ? ON ?.? = ?.?",
		table, table,
		table, bun.Ident(b.model.ForeignKey()),
		bun.Ident(b.model.Alias()), bun.Ident(b.model.PrimaryKey()),
	)
}
