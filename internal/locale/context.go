package locale

import "context"

type contextKey string

const (
	requestLocaleKey contextKey = "globalize.locale"
	scopedLocaleKey  contextKey = "globalize.locale.scoped"
)

// WithLocale returns a context whose request locale is code. The request
// locale applies to every translatable model that has no narrower override.
func WithLocale(ctx context.Context, code string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestLocaleKey, Normalize(code))
}

// FromContext returns the request locale carried by ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	code, ok := ctx.Value(requestLocaleKey).(string)
	if !ok || code == "" {
		return "", false
	}
	return code, true
}

// WithScopedLocale returns a context carrying a locale override for a single
// model type, identified by scope.
func WithScopedLocale(ctx context.Context, scope, code string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	existing, _ := ctx.Value(scopedLocaleKey).(map[string]string)
	merged := make(map[string]string, len(existing)+1)
	for key, value := range existing {
		merged[key] = value
	}
	merged[scope] = Normalize(code)
	return context.WithValue(ctx, scopedLocaleKey, merged)
}

// ScopedFromContext returns the override registered for scope.
func ScopedFromContext(ctx context.Context, scope string) (string, bool) {
	if ctx == nil {
		return "", false
	}
	scoped, _ := ctx.Value(scopedLocaleKey).(map[string]string)
	code, ok := scoped[scope]
	if !ok || code == "" {
		return "", false
	}
	return code, true
}

// Scoped runs fn with a context whose request locale is code and returns the
// block's result. The caller's context is never mutated, so the previous
// locale is in effect again as soon as fn returns, panics included.
func Scoped[R any](ctx context.Context, code string, fn func(context.Context) (R, error)) (R, error) {
	return fn(WithLocale(ctx, code))
}
