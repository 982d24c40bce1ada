package runtimeconfig_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-globalize/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresDefaultLocale(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.DefaultLocale = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrDefaultLocaleRequired) {
		t.Fatalf("expected ErrDefaultLocaleRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "oracle"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestConfigValidate_AcceptsDriverAliases(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "PostgreSQL"
	cfg.Storage.DSN = "postgres://localhost/globalize"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if got := runtimeconfig.NormalizeDriver(cfg.Storage.Driver); got != "postgres" {
		t.Fatalf("expected postgres, got %q", got)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsNegativeTTL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.TTL = -1

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCacheTTLInvalid) {
		t.Fatalf("expected ErrCacheTTLInvalid, got %v", err)
	}
}

func TestConfigResolverUsesFallbacks(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Fallbacks = map[string][]string{"de-AT": {"de"}}
	cfg.ParentFallbacks = true

	got := cfg.Resolver().Resolve("es-MX")
	if !reflect.DeepEqual(got, []string{"es-mx", "es", "en"}) {
		t.Fatalf("unexpected parent chain %v", got)
	}
	got = cfg.Resolver().Resolve("de-at")
	if !reflect.DeepEqual(got, []string{"de-at", "de", "en"}) {
		t.Fatalf("unexpected configured chain %v", got)
	}
}
