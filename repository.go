package globalize

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/goliatone/go-globalize/internal/finder"
	"github.com/goliatone/go-globalize/internal/locale"
	"github.com/goliatone/go-globalize/internal/logging"
	"github.com/goliatone/go-globalize/internal/migrations"
	"github.com/goliatone/go-globalize/internal/registry"
	"github.com/goliatone/go-globalize/internal/translations"
	"github.com/goliatone/go-globalize/pkg/interfaces"
)

// Repository reads and writes records of one translatable model together
// with their translation rows.
type Repository[T Record] struct {
	module       *Module
	model        *registry.Model
	table        *schema.Table
	store        *translations.BunStore
	finder       *finder.Finder[T]
	records      repository.Repository[T]
	cacheService cache.CacheService
	cachePrefix  string
	logger       interfaces.Logger
}

// Translates declares attributes of T as translated and returns the
// repository for T. T must be a pointer to a bun model struct that embeds
// Translations. Declaring the same type again returns the existing
// repository and ignores the new arguments.
func Translates[T Record](m *Module, attributes []string, opts ...ModelOption) (*Repository[T], error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, typ)
	}
	if existing, ok := m.repository(typ); ok {
		return existing.(*Repository[T]), nil
	}

	table := m.db.Table(typ.Elem())
	owner := registry.Owner{
		Name:    typ.Elem().Name(),
		Table:   table.Name,
		Alias:   table.Alias,
		Columns: make([]string, 0, len(table.Fields)),
		Type:    typ,
	}
	for _, field := range table.Fields {
		owner.Columns = append(owner.Columns, field.Name)
	}
	if len(table.PKs) > 0 {
		owner.PrimaryKey = table.PKs[0].Name
	}

	model, created, err := m.registry.Translates(owner, attributes, opts...)
	if err != nil {
		return nil, err
	}

	logger := logging.WithModel(logging.RepositoryLogger(m.loggerProvider), model.Name())
	repo := &Repository[T]{
		module: m,
		model:  model,
		table:  table,
		store:  translations.NewBunStore(m.db),
		finder: finder.New[T](m.db, model, m.resolver, finder.WithLogger[T](logging.FinderLogger(m.loggerProvider))),
		logger: logger,
	}
	repo.records = repo.newRecordRepository()
	if created {
		logger.Debug("globalize.translates", "table", model.TranslationTable(), "attributes", model.AttributeNames())
	}
	return m.register(typ, model.Name(), repo, repo).(*Repository[T]), nil
}

func (r *Repository[T]) newRecordRepository() repository.Repository[T] {
	elem := reflect.TypeFor[T]().Elem()
	pk := r.model.PrimaryKey()
	base := repository.MustNewRepository(r.module.db, repository.ModelHandlers[T]{
		NewRecord: func() T {
			return reflect.New(elem).Interface().(T)
		},
		GetID: func(rec T) uuid.UUID {
			return rec.GetID()
		},
		SetID: func(rec T, id uuid.UUID) {
			rec.SetID(id)
		},
		GetIdentifier: func() string {
			return pk
		},
		GetIdentifierValue: func(rec T) string {
			return rec.GetID().String()
		},
	})
	if r.module.cacheService == nil || r.module.keySerializer == nil {
		return base
	}
	r.cacheService = r.module.cacheService
	r.cachePrefix = r.model.Table() + cache.KeySeparator
	return repositorycache.New(base, r.module.cacheService, r.module.keySerializer)
}

// Model returns the model declaration.
func (r *Repository[T]) Model() *registry.Model {
	return r.model
}

// TranslationTableName returns the name of the translation table.
func (r *Repository[T]) TranslationTableName() string {
	return r.model.TranslationTable()
}

// TranslatedAttributeNames returns the translated attributes in declaration order.
func (r *Repository[T]) TranslatedAttributeNames() []string {
	return r.model.AttributeNames()
}

// RequiredAttributes lists translated attributes carrying validation.Required.
func (r *Repository[T]) RequiredAttributes() []string {
	return r.model.RequiredAttributes()
}

// Locale returns the locale reads and writes use under ctx.
func (r *Repository[T]) Locale(ctx context.Context) string {
	return r.activeLocale(ctx, "")
}

// SetLocale sets the model default locale. An empty code clears it.
func (r *Repository[T]) SetLocale(code string) {
	r.model.SetLocale(code)
}

// WithLocale runs fn with code as the locale of this model. Other models
// and the request locale are unaffected.
func (r *Repository[T]) WithLocale(ctx context.Context, code string, fn func(ctx context.Context) error) error {
	return fn(r.LocaleContext(ctx, code))
}

// LocaleContext derives a context in which this model uses code.
func (r *Repository[T]) LocaleContext(ctx context.Context, code string) context.Context {
	return locale.WithScopedLocale(ctx, r.model.Name(), code)
}

// activeLocale picks, in order: the explicit code, the model scope carried
// by ctx, the model default, the request locale and the process default.
func (r *Repository[T]) activeLocale(ctx context.Context, explicit string) string {
	if code := locale.Normalize(explicit); code != "" {
		return code
	}
	if code, ok := locale.ScopedFromContext(ctx, r.model.Name()); ok {
		if code = locale.Normalize(code); code != "" {
			return code
		}
	}
	if code := r.model.Locale(); code != "" {
		return code
	}
	if code, ok := locale.FromContext(ctx); ok {
		if code = locale.Normalize(code); code != "" {
			return code
		}
	}
	return r.module.resolver.DefaultLocale()
}

func (r *Repository[T]) adapter(rec T) *translations.Adapter {
	state := rec.globalizeTranslations().attributeCache()
	return translations.NewAdapter(r.model, r.store, r.module.resolver, state, rec.GetID(),
		translations.WithAdapterLogger(logging.TranslationsLogger(r.module.loggerProvider)))
}

// Read returns attribute in the active locale, falling back along the chain.
func (r *Repository[T]) Read(ctx context.Context, rec T, attribute string) (any, error) {
	return r.ReadIn(ctx, rec, "", attribute)
}

// ReadIn returns attribute in code, or the active locale when code is empty.
func (r *Repository[T]) ReadIn(ctx context.Context, rec T, code, attribute string) (any, error) {
	if isNilRecord(rec) {
		return nil, ErrNilRecord
	}
	return r.adapter(rec).Fetch(ctx, r.activeLocale(ctx, code), attribute)
}

// Lookup is ReadIn with the locale that supplied the value.
func (r *Repository[T]) Lookup(ctx context.Context, rec T, code, attribute string) (Translation, error) {
	if isNilRecord(rec) {
		return Translation{}, ErrNilRecord
	}
	return r.adapter(rec).Lookup(ctx, r.activeLocale(ctx, code), attribute)
}

// Meta describes how attribute resolves for code.
func (r *Repository[T]) Meta(ctx context.Context, rec T, code, attribute string) (interfaces.TranslationMeta, error) {
	result, err := r.Lookup(ctx, rec, code, attribute)
	if err != nil {
		return interfaces.TranslationMeta{}, err
	}
	return interfaces.TranslationMeta{
		RequestedLocale: result.RequestedLocale,
		ResolvedLocale:  result.Locale,
		FallbackUsed:    result.Fallback(),
		Found:           result.Found,
	}, nil
}

// Write stages attribute for the active locale. It is stored by Save.
func (r *Repository[T]) Write(ctx context.Context, rec T, attribute string, value any) error {
	return r.WriteIn(ctx, rec, "", attribute, value)
}

// WriteIn stages attribute for code, or the active locale when code is empty.
func (r *Repository[T]) WriteIn(ctx context.Context, rec T, code, attribute string, value any) error {
	if isNilRecord(rec) {
		return ErrNilRecord
	}
	return r.adapter(rec).Write(r.activeLocale(ctx, code), attribute, value)
}

// Assign stages several attributes for the active locale.
func (r *Repository[T]) Assign(ctx context.Context, rec T, values map[string]any) error {
	return r.AssignLocale(ctx, rec, "", values)
}

// AssignLocale stages several attributes for code. Unknown attributes are
// rejected before anything is staged.
func (r *Repository[T]) AssignLocale(ctx context.Context, rec T, code string, values map[string]any) error {
	if isNilRecord(rec) {
		return ErrNilRecord
	}
	for attribute := range values {
		if err := r.model.CheckAttribute(attribute); err != nil {
			return err
		}
	}
	adapter := r.adapter(rec)
	active := r.activeLocale(ctx, code)
	for _, attribute := range sortedKeys(values) {
		if err := adapter.Write(active, attribute, values[attribute]); err != nil {
			return err
		}
	}
	return nil
}

// TranslatedAttributes returns every translated attribute in the active locale.
func (r *Repository[T]) TranslatedAttributes(ctx context.Context, rec T) (map[string]any, error) {
	if isNilRecord(rec) {
		return nil, ErrNilRecord
	}
	adapter := r.adapter(rec)
	active := r.activeLocale(ctx, "")
	out := make(map[string]any, len(r.model.AttributeNames()))
	for _, attribute := range r.model.AttributeNames() {
		value, err := adapter.Fetch(ctx, active, attribute)
		if err != nil {
			return nil, err
		}
		out[attribute] = value
	}
	return out, nil
}

// Attributes returns the owner columns merged with the translated
// attributes of the active locale.
func (r *Repository[T]) Attributes(ctx context.Context, rec T) (map[string]any, error) {
	translated, err := r.TranslatedAttributes(ctx, rec)
	if err != nil {
		return nil, err
	}
	strct := reflect.ValueOf(rec).Elem()
	out := make(map[string]any, len(r.table.Fields)+len(translated))
	for _, field := range r.table.Fields {
		out[field.Name] = field.Value(strct).Interface()
	}
	for attribute, value := range translated {
		out[attribute] = value
	}
	return out, nil
}

// AvailableLocales lists the locales with a stored translation row.
func (r *Repository[T]) AvailableLocales(ctx context.Context, rec T) ([]string, error) {
	if isNilRecord(rec) {
		return nil, ErrNilRecord
	}
	if rec.GetID() == uuid.Nil {
		return nil, nil
	}
	return r.store.Locales(ctx, r.model, rec.GetID())
}

// TranslatedLocales lists stored locales plus locales with unsaved writes.
func (r *Repository[T]) TranslatedLocales(ctx context.Context, rec T) ([]string, error) {
	stored, err := r.AvailableLocales(ctx, rec)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(stored))
	out := append([]string(nil), stored...)
	for _, code := range stored {
		seen[code] = struct{}{}
	}
	for _, code := range rec.globalizeTranslations().DirtyLocales() {
		if _, ok := seen[code]; !ok {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Save writes the owner row and every staged translation in one
// transaction. Records without an id get a new one. When anything fails the
// transaction rolls back and staged values stay pending.
func (r *Repository[T]) Save(ctx context.Context, rec T) error {
	if isNilRecord(rec) {
		return ErrNilRecord
	}
	state := rec.globalizeTranslations().attributeCache()
	assigned := false
	if rec.GetID() == uuid.Nil {
		rec.SetID(uuid.New())
		assigned = true
	}
	ownerID := rec.GetID()
	logger := logging.WithRecord(r.contextLogger(ctx), ownerID, "")

	var results []translations.FlushResult
	err := r.module.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := r.writeOwner(ctx, tx, rec, assigned); err != nil {
			return err
		}
		flushed, err := r.module.coordinator.Flush(ctx, r.store.WithTx(tx), r.model, ownerID, state)
		if err != nil {
			return err
		}
		results = flushed
		return nil
	})
	if err != nil {
		if assigned {
			rec.SetID(uuid.Nil)
		}
		logger.Error("globalize.save.failed", "error", err)
		return err
	}

	for _, result := range results {
		state.MarkFlushed(result.Locale, result.Persisted)
		if result.Row != nil {
			state.Load(result.Locale, result.Row)
		}
	}
	r.invalidate(ctx)
	logger.Debug("globalize.save", "locales", len(results))
	return nil
}

func (r *Repository[T]) writeOwner(ctx context.Context, tx bun.Tx, rec T, isNew bool) error {
	if !isNew {
		exists, err := tx.NewSelect().Model(rec).WherePK().Exists(ctx)
		if err != nil {
			return fmt.Errorf("check %s: %w", r.model.Name(), err)
		}
		if exists {
			if len(r.table.DataFields) == 0 {
				return nil
			}
			if _, err := tx.NewUpdate().Model(rec).WherePK().Exec(ctx); err != nil {
				return fmt.Errorf("update %s: %w", r.model.Name(), err)
			}
			return nil
		}
	}
	if _, err := tx.NewInsert().Model(rec).Exec(ctx); err != nil {
		return fmt.Errorf("insert %s: %w", r.model.Name(), err)
	}
	return nil
}

// SetTranslations stores values keyed by locale and attribute right away,
// creating rows that do not exist yet. Every locale is validated before
// anything is written.
func (r *Repository[T]) SetTranslations(ctx context.Context, rec T, values map[string]map[string]any) error {
	if isNilRecord(rec) {
		return ErrNilRecord
	}
	ownerID := rec.GetID()
	if ownerID == uuid.Nil {
		return ErrRecordNotSaved
	}

	staged := translations.NewAttributeCache()
	for _, code := range sortedKeys(values) {
		normalized := locale.Normalize(code)
		if normalized == "" {
			return ErrLocaleRequired
		}
		for attribute, value := range values[code] {
			if err := r.model.CheckAttribute(attribute); err != nil {
				return err
			}
			staged.Write(normalized, attribute, value)
		}
	}

	var results []translations.FlushResult
	err := r.module.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		flushed, err := r.module.coordinator.Flush(ctx, r.store.WithTx(tx), r.model, ownerID, staged)
		results = flushed
		return err
	})
	logger := logging.WithRecord(r.contextLogger(ctx), ownerID, "")
	if err != nil {
		logger.Error("globalize.set_translations.failed", "error", err)
		return err
	}

	state := rec.globalizeTranslations().attributeCache()
	for _, result := range results {
		if result.Row != nil {
			state.Load(result.Locale, result.Row)
		}
	}
	r.invalidate(ctx)
	logger.Debug("globalize.set_translations", "locales", len(results))
	return nil
}

// SetTranslationsByID loads the record with id and applies SetTranslations.
func (r *Repository[T]) SetTranslationsByID(ctx context.Context, id uuid.UUID, values map[string]map[string]any) error {
	rec, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	return r.SetTranslations(ctx, rec, values)
}

// Reload replaces rec with the stored owner row and discards cached
// translations, including unsaved writes. It always reads the database.
func (r *Repository[T]) Reload(ctx context.Context, rec T) error {
	if isNilRecord(rec) {
		return ErrNilRecord
	}
	if rec.GetID() == uuid.Nil {
		return ErrRecordNotSaved
	}
	fresh := reflect.New(reflect.TypeFor[T]().Elem()).Interface().(T)
	fresh.SetID(rec.GetID())
	if err := r.module.db.NewSelect().Model(fresh).WherePK().Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s %s", ErrRecordNotFound, r.model.Name(), rec.GetID())
		}
		return fmt.Errorf("reload %s: %w", r.model.Name(), err)
	}
	state := rec.globalizeTranslations().attributeCache()
	reflect.ValueOf(rec).Elem().Set(reflect.ValueOf(fresh).Elem())
	rec.globalizeTranslations().cache = state
	state.Reset()
	return nil
}

// Find returns the record with id.
func (r *Repository[T]) Find(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	rec, err := r.records.GetByID(ctx, id.String())
	if err != nil {
		return zero, r.mapRepositoryError(err, id)
	}
	return detach(rec), nil
}

// All returns every record of the model.
func (r *Repository[T]) All(ctx context.Context) ([]T, error) {
	records, _, err := r.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.model.Name(), err)
	}
	out := make([]T, len(records))
	for i, rec := range records {
		out[i] = detach(rec)
	}
	return out, nil
}

// Delete removes the record and its translation rows.
func (r *Repository[T]) Delete(ctx context.Context, rec T) error {
	if isNilRecord(rec) {
		return ErrNilRecord
	}
	ownerID := rec.GetID()
	if ownerID == uuid.Nil {
		return ErrRecordNotSaved
	}
	err := r.module.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := r.store.WithTx(tx).DeleteByOwner(ctx, r.model, ownerID); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model(rec).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("delete %s: %w", r.model.Name(), err)
		}
		return nil
	})
	logger := logging.WithRecord(r.contextLogger(ctx), ownerID, "")
	if err != nil {
		logger.Error("globalize.delete.failed", "error", err)
		return err
	}
	rec.globalizeTranslations().attributeCache().Reset()
	r.invalidate(ctx)
	logger.Debug("globalize.delete")
	return nil
}

func (r *Repository[T]) contextLogger(ctx context.Context) interfaces.Logger {
	return logging.FromContext(ctx, r.logger)
}

func (r *Repository[T]) invalidate(ctx context.Context) {
	if r.cacheService == nil || r.cachePrefix == "" {
		return
	}
	if err := r.cacheService.DeleteByPrefix(ctx, r.cachePrefix); err != nil {
		r.logger.Warn("globalize.cache.invalidate_failed", "error", err)
	}
}

func (r *Repository[T]) mapRepositoryError(err error, id uuid.UUID) error {
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return fmt.Errorf("%w: %s %s", ErrRecordNotFound, r.model.Name(), id)
	}
	return fmt.Errorf("%s repository error: %w", r.model.Name(), err)
}

// CreateTranslationTable creates the translation table. A nil fields map
// uses the declared attribute types.
func (r *Repository[T]) CreateTranslationTable(ctx context.Context, fields Fields) error {
	logger := logging.WithFields(logging.MigrationsLogger(r.module.loggerProvider), map[string]any{"table": r.model.TranslationTable()})
	if err := migrations.CreateTranslationTable(ctx, r.module.db, r.model, fields); err != nil {
		logger.Error("globalize.schema.create_failed", "error", err)
		return err
	}
	logger.Info("globalize.schema.created")
	return nil
}

// DropTranslationTable drops the translation table.
func (r *Repository[T]) DropTranslationTable(ctx context.Context) error {
	logger := logging.WithFields(logging.MigrationsLogger(r.module.loggerProvider), map[string]any{"table": r.model.TranslationTable()})
	if err := migrations.DropTranslationTable(ctx, r.module.db, r.model); err != nil {
		logger.Error("globalize.schema.drop_failed", "error", err)
		return err
	}
	logger.Info("globalize.schema.dropped")
	return nil
}

// TranslationTableSQL renders the translation table DDL for the module database.
func (r *Repository[T]) TranslationTableSQL(fields Fields) (string, error) {
	return migrations.TranslationTableSQL(r.module.db.Dialect().Name(), r.model, fields)
}

func isNilRecord[T Record](rec T) bool {
	v := reflect.ValueOf(rec)
	return !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil())
}

// detach copies rec so records handed out by the read cache never share
// translation state.
func detach[T Record](rec T) T {
	v := reflect.ValueOf(rec)
	if !v.IsValid() || v.IsNil() {
		return rec
	}
	copied := reflect.New(v.Elem().Type())
	copied.Elem().Set(v.Elem())
	out := copied.Interface().(T)
	out.globalizeTranslations().cache = nil
	return out
}
