package translations

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-globalize/internal/locale"
	"github.com/goliatone/go-globalize/internal/logging"
	"github.com/goliatone/go-globalize/internal/registry"
	"github.com/goliatone/go-globalize/pkg/interfaces"
)

// Translation is the outcome of a lookup: the value, the locale that
// supplied it and the locale that was asked for.
type Translation struct {
	Value           any
	Locale          string
	RequestedLocale string
	Found           bool
}

// Fallback reports whether the value came from a locale other than the
// requested one.
func (t Translation) Fallback() bool {
	return t.Found && t.Locale != t.RequestedLocale
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithAdapterLogger sets the logger used for store lookups.
func WithAdapterLogger(logger interfaces.Logger) AdapterOption {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Adapter reads and writes translated attributes of one record through its
// AttributeCache, falling back along the resolver chain and loading rows
// lazily from the store.
type Adapter struct {
	model    *registry.Model
	store    Store
	resolver locale.FallbackResolver
	cache    *AttributeCache
	ownerID  uuid.UUID
	logger   interfaces.Logger
}

// NewAdapter binds cache to a record identified by ownerID. A nil ownerID
// marks an unsaved record: no store lookups are made for it.
func NewAdapter(model *registry.Model, store Store, resolver locale.FallbackResolver, cache *AttributeCache, ownerID uuid.UUID, opts ...AdapterOption) *Adapter {
	if cache == nil {
		cache = NewAttributeCache()
	}
	a := &Adapter{
		model:    model,
		store:    store,
		resolver: resolver,
		cache:    cache,
		ownerID:  ownerID,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Cache exposes the underlying cache.
func (a *Adapter) Cache() *AttributeCache {
	return a.cache
}

// Fetch returns the value of attribute for code, or for the first fallback
// locale that has a translation. A row holding NULL still counts as a
// translation. When nothing is found Fetch returns nil and no error.
func (a *Adapter) Fetch(ctx context.Context, code, attribute string) (any, error) {
	result, err := a.Lookup(ctx, code, attribute)
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}

// Lookup is Fetch with the resolution details.
func (a *Adapter) Lookup(ctx context.Context, code, attribute string) (Translation, error) {
	if err := a.model.CheckAttribute(attribute); err != nil {
		return Translation{}, err
	}

	chain := a.resolver.Resolve(code)
	if len(chain) == 0 {
		return Translation{}, ErrLocaleRequired
	}
	requested := chain[0]

	if err := a.load(ctx, a.pending(chain, attribute)); err != nil {
		return Translation{}, err
	}

	for _, candidate := range chain {
		if value, ok := a.cache.Read(candidate, attribute); ok {
			return Translation{Value: value, Locale: candidate, RequestedLocale: requested, Found: true}, nil
		}
		if present, _ := a.cache.RowState(candidate); present {
			return Translation{Locale: candidate, RequestedLocale: requested, Found: true}, nil
		}
	}
	return Translation{RequestedLocale: requested}, nil
}

// pending lists the chain locales that must be loaded before the walk can
// decide: every locale ahead of the first cached hit whose row state is
// still unknown.
func (a *Adapter) pending(chain []string, attribute string) []string {
	var out []string
	for _, candidate := range chain {
		if _, ok := a.cache.Read(candidate, attribute); ok {
			break
		}
		if present, known := a.cache.RowState(candidate); known {
			if present {
				break
			}
			continue
		}
		out = append(out, candidate)
	}
	return out
}

func (a *Adapter) load(ctx context.Context, locales []string) error {
	if len(locales) == 0 || a.ownerID == uuid.Nil || a.store == nil {
		return nil
	}

	rows, err := a.store.ListByLocales(ctx, a.model, a.ownerID, locales)
	if err != nil {
		a.logger.Error("translations.fetch.failed", "model", a.model.Name(), "locales", locales, "error", err)
		return err
	}
	a.logger.Debug("translations.fetch", "model", a.model.Name(), "locales", locales, "rows", len(rows))

	byLocale := make(map[string]*Row, len(rows))
	for _, row := range rows {
		byLocale[row.Locale] = row
	}
	for _, code := range locales {
		a.cache.Load(code, byLocale[code])
	}
	return nil
}

// Write stages value for attribute under code. Writes always replace the
// cached value, whether or not it was dirty.
func (a *Adapter) Write(code, attribute string, value any) error {
	if err := a.model.CheckAttribute(attribute); err != nil {
		return err
	}
	normalized := locale.Normalize(code)
	if normalized == "" {
		return fmt.Errorf("%w: writing %s.%s", ErrLocaleRequired, a.model.Name(), attribute)
	}
	a.cache.Write(normalized, attribute, value)
	return nil
}

// Reset discards cached values and unflushed writes.
func (a *Adapter) Reset() {
	a.cache.Reset()
}

// DirtyLocales lists locales with unflushed writes.
func (a *Adapter) DirtyLocales() []string {
	return a.cache.DirtyLocales()
}

// Preload seeds the cache with rows fetched elsewhere, such as a scoped query.
func (a *Adapter) Preload(rows []*Row) {
	for _, row := range rows {
		if row == nil {
			continue
		}
		a.cache.Load(row.Locale, row)
	}
}
