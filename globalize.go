package globalize

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-globalize/internal/commands"
	translationscmd "github.com/goliatone/go-globalize/internal/commands/translations"
	"github.com/goliatone/go-globalize/internal/locale"
	"github.com/goliatone/go-globalize/internal/logging"
	"github.com/goliatone/go-globalize/internal/logging/gologger"
	"github.com/goliatone/go-globalize/internal/registry"
	"github.com/goliatone/go-globalize/internal/translations"
	"github.com/goliatone/go-globalize/pkg/interfaces"
)

// Option customises a Module.
type Option func(*Module)

// WithLoggerProvider sets the provider used for module loggers.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.loggerProvider = provider
	}
}

// WithCacheService enables the owner-record read cache with an existing
// go-repository-cache service.
func WithCacheService(service cache.CacheService, serializer cache.KeySerializer) Option {
	return func(m *Module) {
		m.cacheService = service
		m.keySerializer = serializer
	}
}

// WithResolver replaces the fallback resolver built from the config.
func WithResolver(resolver locale.FallbackResolver) Option {
	return func(m *Module) {
		if resolver != nil {
			m.resolver = resolver
		}
	}
}

// WithCoordinatorOptions configures the translation flush coordinator.
func WithCoordinatorOptions(opts ...translations.CoordinatorOption) Option {
	return func(m *Module) {
		m.coordinatorOpts = append(m.coordinatorOpts, opts...)
	}
}

// Module owns the model registry, the fallback resolver and the database
// handle shared by every translatable repository.
type Module struct {
	cfg             Config
	db              *bun.DB
	registry        *registry.Registry
	resolver        locale.FallbackResolver
	loggerProvider  interfaces.LoggerProvider
	logger          interfaces.Logger
	cacheService    cache.CacheService
	keySerializer   cache.KeySerializer
	coordinatorOpts []translations.CoordinatorOption
	coordinator     *translations.Coordinator

	mu      sync.RWMutex
	repos   map[reflect.Type]any
	setters map[string]interfaces.TranslationSetter
}

// New validates cfg and builds a module over db.
func New(cfg Config, db *bun.DB, opts ...Option) (*Module, error) {
	if db == nil {
		return nil, fmt.Errorf("globalize: database is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{
		cfg:      cfg,
		db:       db,
		registry: registry.New(),
		resolver: cfg.Resolver(),
		repos:    make(map[reflect.Type]any),
		setters:  make(map[string]interfaces.TranslationSetter),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.loggerProvider == nil {
		provider, err := gologger.FromRuntimeConfig(cfg.Logging)
		if err != nil {
			return nil, err
		}
		if provider != nil {
			m.loggerProvider = provider
		}
	}
	m.logger = logging.ModuleLogger(m.loggerProvider, logging.ModuleRoot)

	if cfg.Cache.Enabled && m.cacheService == nil {
		cacheCfg := cache.DefaultConfig()
		if cfg.Cache.TTL > 0 {
			cacheCfg.TTL = cfg.Cache.TTL
		}
		service, err := cache.NewCacheService(cacheCfg)
		if err != nil {
			return nil, fmt.Errorf("globalize: cache service: %w", err)
		}
		m.cacheService = service
		m.keySerializer = cache.NewDefaultKeySerializer()
	}

	coordinatorOpts := append([]translations.CoordinatorOption{
		translations.WithCoordinatorLogger(logging.TranslationsLogger(m.loggerProvider)),
	}, m.coordinatorOpts...)
	m.coordinator = translations.NewCoordinator(coordinatorOpts...)

	m.logger.Debug("globalize.module.ready", "default_locale", m.resolver.DefaultLocale())
	return m, nil
}

// DB returns the database handle.
func (m *Module) DB() *bun.DB {
	return m.db
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	return m.cfg
}

// Resolver returns the fallback resolver shared by reads and finders.
func (m *Module) Resolver() locale.FallbackResolver {
	return m.resolver
}

// DefaultLocale returns the process default locale.
func (m *Module) DefaultLocale() string {
	return m.resolver.DefaultLocale()
}

// FallbackChain returns the locales tried for code.
func (m *Module) FallbackChain(code string) []string {
	return m.resolver.Resolve(code)
}

// SetFallbacks replaces the fallback entry of code. It fails when the module
// runs with a resolver that cannot be reconfigured.
func (m *Module) SetFallbacks(code string, fallbacks ...string) error {
	static, ok := m.resolver.(*locale.StaticFallbackResolver)
	if !ok {
		return fmt.Errorf("globalize: resolver %T does not support reconfiguration", m.resolver)
	}
	static.Set(code, fallbacks...)
	return nil
}

// Models lists the registered model names.
func (m *Module) Models() []string {
	models := m.registry.Models()
	out := make([]string, len(models))
	for i, model := range models {
		out[i] = model.Name()
	}
	return out
}

// Model returns the registered model called name.
func (m *Module) Model(name string) (*registry.Model, error) {
	return m.registry.LookupName(name)
}

// Translatable reports whether the type of v has been declared.
func (m *Module) Translatable(v any) bool {
	typ := reflect.TypeOf(v)
	if typ == nil {
		return false
	}
	return m.registry.Translatable(typ)
}

// TranslationSetter returns the setter registered for a model name.
func (m *Module) TranslationSetter(model string) (interfaces.TranslationSetter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	setter, ok := m.setters[strings.TrimSpace(model)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotTranslatable, model)
	}
	return setter, nil
}

// SetTranslationsHandler returns a go-command handler that applies
// translations to any registered model.
func (m *Module) SetTranslationsHandler(opts ...commands.HandlerOption[translationscmd.SetTranslationsCommand]) *translationscmd.SetTranslationsHandler {
	return translationscmd.NewSetTranslationsHandler(m, commands.CommandLogger(m.loggerProvider, "translations"), opts...)
}

// WithLocale returns a context whose request locale is code. Model scoped
// locales and explicit arguments still take precedence. The locale is also
// attached to the log fields of operations run under the context.
func WithLocale(ctx context.Context, code string) context.Context {
	ctx = logging.ContextWithFields(ctx, map[string]any{"request_locale": locale.Normalize(code)})
	return locale.WithLocale(ctx, code)
}

// LocaleFromContext returns the request locale carried by ctx.
func LocaleFromContext(ctx context.Context) (string, bool) {
	return locale.FromContext(ctx)
}

// NormalizeLocale returns the canonical form of code.
func NormalizeLocale(code string) string {
	return locale.Normalize(code)
}

func (m *Module) repository(typ reflect.Type) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	repo, ok := m.repos[typ]
	return repo, ok
}

func (m *Module) register(typ reflect.Type, name string, repo any, setter interfaces.TranslationSetter) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.repos[typ]; ok {
		return existing
	}
	m.repos[typ] = repo
	m.setters[name] = setter
	return repo
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Scoped runs fn with code as the request locale and returns its result.
func Scoped[R any](ctx context.Context, code string, fn func(ctx context.Context) (R, error)) (R, error) {
	return locale.Scoped(ctx, code, fn)
}
