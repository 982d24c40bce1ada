package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-globalize/internal/locale"
)

var ErrDefaultLocaleRequired = errors.New("globalize config: default locale is required")
var ErrFallbackLocaleInvalid = errors.New("globalize config: fallback entries require a locale")
var ErrStorageDriverUnknown = errors.New("globalize config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("globalize config: storage dsn is required")
var ErrCacheTTLInvalid = errors.New("globalize config: cache ttl must be zero or positive")
var ErrLoggingProviderUnknown = errors.New("globalize config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("globalize config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("globalize config: logging format is invalid")

// Config aggregates locale behaviour and adapter bindings for the module.
type Config struct {
	DefaultLocale string
	// Locales lists the locales the host application serves. It is
	// informational; reads and writes accept any locale.
	Locales []string
	// Fallbacks maps a locale to the locales tried after it.
	Fallbacks map[string][]string
	// ParentFallbacks inserts BCP-47 parents (es-mx -> es) into chains.
	ParentFallbacks bool
	Storage         StorageConfig
	Cache           CacheConfig
	Logging         LoggingConfig
}

// StorageConfig selects the database driver used by the CLI and helpers.
type StorageConfig struct {
	Driver string
	DSN    string
	Debug  bool
}

// CacheConfig captures the owner-record read cache toggles.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider string
	Level    string
	Format   string
	// Focus limits go-logger output to the named module loggers, e.g.
	// "globalize.finder".
	Focus []string
}

// DefaultConfig returns defaults suitable for tests and local tooling.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
		Locales:       []string{"en"},
		Fallbacks:     map[string][]string{},
		Storage: StorageConfig{
			Driver: "sqlite3",
			DSN:    "file:globalize.db?cache=shared&_fk=1",
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "noop",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if locale.Normalize(cfg.DefaultLocale) == "" {
		return ErrDefaultLocaleRequired
	}
	for code := range cfg.Fallbacks {
		if locale.Normalize(code) == "" {
			return ErrFallbackLocaleInvalid
		}
	}
	switch NormalizeDriver(cfg.Storage.Driver) {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if cfg.Cache.TTL < 0 {
		return ErrCacheTTLInvalid
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// Resolver builds the fallback resolver described by the config.
func (cfg Config) Resolver() *locale.StaticFallbackResolver {
	return locale.NewStaticFallbackResolver(cfg.DefaultLocale,
		locale.WithParentFallbacks(cfg.ParentFallbacks),
		locale.WithFallbacks(cfg.Fallbacks),
	)
}

// NormalizeDriver maps driver aliases onto the registered sql driver names.
func NormalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return "sqlite3"
	case "postgres", "postgresql", "pg":
		return "postgres"
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "noop", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
