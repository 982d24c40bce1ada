package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-globalize/internal/adapters/storage"
	"github.com/goliatone/go-globalize/internal/logging"
	"github.com/goliatone/go-globalize/internal/logging/gologger"
	"github.com/goliatone/go-globalize/internal/manifest"
	"github.com/goliatone/go-globalize/internal/registry"
	"github.com/goliatone/go-globalize/internal/runtimeconfig"
	"github.com/goliatone/go-globalize/pkg/interfaces"
)

// EnvPrefix prefixes environment overrides, e.g. GLOBALIZE_STORAGE_DSN.
const EnvPrefix = "GLOBALIZE"

// Options captures what the CLI resolved from flags.
type Options struct {
	// ManifestFile is required by commands that work on models.
	ManifestFile string
	// Viper holds config file values, env overrides and bound flags.
	Viper *viper.Viper
}

// Environment is the state shared by CLI commands.
type Environment struct {
	Config   runtimeconfig.Config
	Manifest *manifest.Manifest
	Registry *registry.Registry
	Logger   interfaces.Logger
}

// NewViper returns a viper instance seeded with the default configuration
// and wired to GLOBALIZE_ environment variables. When file is set it is
// read as the configuration file.
func NewViper(file string) (*viper.Viper, error) {
	defaults := runtimeconfig.DefaultConfig()

	v := viper.New()
	v.SetDefault("default_locale", defaults.DefaultLocale)
	v.SetDefault("locales", defaults.Locales)
	v.SetDefault("parent_fallbacks", defaults.ParentFallbacks)
	v.SetDefault("storage.driver", defaults.Storage.Driver)
	v.SetDefault("storage.dsn", defaults.Storage.DSN)
	v.SetDefault("storage.debug", defaults.Storage.Debug)
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("logging.provider", defaults.Logging.Provider)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file = strings.TrimSpace(file); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	return v, nil
}

// ConfigFromViper maps viper keys onto the runtime configuration.
func ConfigFromViper(v *viper.Viper) runtimeconfig.Config {
	cfg := runtimeconfig.Config{
		DefaultLocale:   v.GetString("default_locale"),
		Locales:         v.GetStringSlice("locales"),
		Fallbacks:       v.GetStringMapStringSlice("fallbacks"),
		ParentFallbacks: v.GetBool("parent_fallbacks"),
		Storage: runtimeconfig.StorageConfig{
			Driver: v.GetString("storage.driver"),
			DSN:    v.GetString("storage.dsn"),
			Debug:  v.GetBool("storage.debug"),
		},
		Cache: runtimeconfig.CacheConfig{
			Enabled: v.GetBool("cache.enabled"),
			TTL:     v.GetDuration("cache.ttl"),
		},
		Logging: runtimeconfig.LoggingConfig{
			Provider: v.GetString("logging.provider"),
			Level:    v.GetString("logging.level"),
			Format:   v.GetString("logging.format"),
			Focus:    v.GetStringSlice("logging.focus"),
		},
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Minute
	}
	return cfg
}

// Build validates the configuration and loads the manifest when one is set.
func Build(opts Options) (*Environment, error) {
	v := opts.Viper
	if v == nil {
		var err error
		if v, err = NewViper(""); err != nil {
			return nil, err
		}
	}
	cfg := ConfigFromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var provider interfaces.LoggerProvider
	if p, err := gologger.FromRuntimeConfig(cfg.Logging); err != nil {
		return nil, err
	} else if p != nil {
		provider = p
	}

	env := &Environment{
		Config:   cfg,
		Registry: registry.New(),
		Logger:   logging.ModuleLogger(provider, logging.ModuleCLI),
	}

	if file := strings.TrimSpace(opts.ManifestFile); file != "" {
		m, err := manifest.Load(file)
		if err != nil {
			return nil, err
		}
		if _, err := m.Register(env.Registry); err != nil {
			return nil, err
		}
		env.Manifest = m
	}
	return env, nil
}

// Models returns the named models, or every manifest model when names is
// empty.
func (e *Environment) Models(names []string) ([]*registry.Model, error) {
	if e.Manifest == nil {
		return nil, fmt.Errorf("a manifest is required")
	}
	if len(names) == 0 {
		return e.Registry.Models(), nil
	}
	out := make([]*registry.Model, 0, len(names))
	for _, name := range names {
		model, err := e.Registry.LookupName(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, name)
		}
		out = append(out, model)
	}
	return out, nil
}

// OpenDB opens the configured database.
func (e *Environment) OpenDB(ctx context.Context) (*bun.DB, error) {
	return storage.Open(ctx, e.Config.Storage)
}

// Dialect maps the configured driver onto a bun dialect name without
// opening a connection.
func (e *Environment) Dialect() (dialect.Name, error) {
	switch runtimeconfig.NormalizeDriver(e.Config.Storage.Driver) {
	case "sqlite3":
		return dialect.SQLite, nil
	case "postgres":
		return dialect.PG, nil
	default:
		return dialect.Invalid, fmt.Errorf("%w: %s", storage.ErrUnsupportedDriver, e.Config.Storage.Driver)
	}
}
