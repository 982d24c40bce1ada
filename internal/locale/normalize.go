package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Normalize returns the canonical form used to compare and persist locale
// identifiers. Well formed BCP-47 tags are canonicalised through x/text and
// lowercased ("en_US" and "EN-us" both become "en-us"). Anything the parser
// rejects is treated as an opaque identifier and only trimmed and lowercased.
func Normalize(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return ""
	}
	candidate := strings.ReplaceAll(trimmed, "_", "-")
	tag, err := language.Parse(candidate)
	if err != nil {
		return strings.ToLower(trimmed)
	}
	return strings.ToLower(tag.String())
}

// Equal reports whether two locale identifiers normalise to the same value.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// NormalizeAll normalises every entry, dropping blanks and duplicates while
// keeping the first occurrence order.
func NormalizeAll(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		normalized := Normalize(code)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

// parents returns the BCP-47 parent chain for a normalised locale, most
// specific first, excluding the locale itself and the root tag.
func parents(code string) []string {
	tag, err := language.Parse(code)
	if err != nil {
		return nil
	}
	var out []string
	for {
		parent := tag.Parent()
		if parent == language.Und || parent == tag {
			break
		}
		normalized := strings.ToLower(parent.String())
		if normalized == "" || normalized == code {
			break
		}
		out = append(out, normalized)
		tag = parent
	}
	return out
}
