package locale

import "sync"

// FallbackResolver resolves the ordered list of locales probed for a request.
type FallbackResolver interface {
	Resolve(locale string) []string
	DefaultLocale() string
}

var _ FallbackResolver = (*StaticFallbackResolver)(nil)

// ResolverOption configures a StaticFallbackResolver.
type ResolverOption func(*StaticFallbackResolver)

// WithParentFallbacks inserts BCP-47 parents (de-at -> de) right after the
// requested locale and before any configured fallbacks.
func WithParentFallbacks(enabled bool) ResolverOption {
	return func(r *StaticFallbackResolver) {
		r.parents = enabled
	}
}

// WithFallbacks seeds the resolver with a locale -> fallbacks table.
func WithFallbacks(table map[string][]string) ResolverOption {
	return func(r *StaticFallbackResolver) {
		for code, fallbacks := range table {
			r.set(code, fallbacks...)
		}
	}
}

// StaticFallbackResolver resolves chains from a static configuration table.
// Every chain starts with the requested locale, has no duplicates and ends
// with the default locale.
type StaticFallbackResolver struct {
	mu            sync.RWMutex
	defaultLocale string
	chains        map[string][]string
	parents       bool
}

// NewStaticFallbackResolver builds a resolver anchored on defaultLocale.
func NewStaticFallbackResolver(defaultLocale string, opts ...ResolverOption) *StaticFallbackResolver {
	r := &StaticFallbackResolver{
		defaultLocale: Normalize(defaultLocale),
		chains:        make(map[string][]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// DefaultLocale returns the normalised process default.
func (r *StaticFallbackResolver) DefaultLocale() string {
	if r == nil {
		return ""
	}
	return r.defaultLocale
}

// Set registers the fallbacks tried after locale. Calling Set again replaces
// the previous entry.
func (r *StaticFallbackResolver) Set(locale string, fallbacks ...string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set(locale, fallbacks...)
}

func (r *StaticFallbackResolver) set(locale string, fallbacks ...string) {
	code := Normalize(locale)
	if code == "" {
		return
	}
	if r.chains == nil {
		r.chains = make(map[string][]string)
	}
	chain := make([]string, 0, len(fallbacks))
	for _, fb := range NormalizeAll(fallbacks) {
		if fb == code {
			continue
		}
		chain = append(chain, fb)
	}
	r.chains[code] = chain
}

// Resolve returns a fresh copy of the chain for locale. An empty locale
// resolves to the default chain.
func (r *StaticFallbackResolver) Resolve(locale string) []string {
	if r == nil {
		return nil
	}
	code := Normalize(locale)
	if code == "" {
		code = r.defaultLocale
	}
	if code == "" {
		return nil
	}

	r.mu.RLock()
	configured := r.chains[code]
	r.mu.RUnlock()

	candidates := make([]string, 0, len(configured)+4)
	candidates = append(candidates, code)
	if r.parents {
		candidates = append(candidates, parents(code)...)
	}
	candidates = append(candidates, configured...)

	seen := make(map[string]struct{}, len(candidates)+1)
	out := make([]string, 0, len(candidates)+1)
	for _, candidate := range candidates {
		if candidate == r.defaultLocale {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}
	if r.defaultLocale != "" {
		out = append(out, r.defaultLocale)
	}
	return out
}

// Table returns a copy of the configured fallback table.
func (r *StaticFallbackResolver) Table() map[string][]string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]string, len(r.chains))
	for code, chain := range r.chains {
		copied := make([]string, len(chain))
		copy(copied, chain)
		out[code] = copied
	}
	return out
}
