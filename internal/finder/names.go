package finder

import (
	"regexp"
	"strings"
)

// Kind selects how many records a finder returns.
type Kind int

const (
	KindFirst Kind = iota
	KindLast
	KindAll
)

func (k Kind) String() string {
	switch k {
	case KindLast:
		return "last"
	case KindAll:
		return "all"
	default:
		return "first"
	}
}

// Match is a parsed dynamic finder name.
type Match struct {
	Kind       Kind
	Attributes []string
	Strict     bool
}

var (
	finderName = regexp.MustCompile(`^find_(all_|last_)?by_([_a-zA-Z]\w*)$`)
	strictName = regexp.MustCompile(`^find_by_([_a-zA-Z]\w*)!$`)
)

// ParseName parses names such as "find_by_subject", "find_all_by_subject_and_blog_id"
// or "find_by_subject!" into a Match. The strict form only exists for
// single-record lookups.
func ParseName(name string) (Match, bool) {
	name = strings.TrimSpace(name)
	if m := strictName.FindStringSubmatch(name); m != nil {
		return Match{Kind: KindFirst, Attributes: splitAttributes(m[1]), Strict: true}, true
	}
	m := finderName.FindStringSubmatch(name)
	if m == nil {
		return Match{}, false
	}
	kind := KindFirst
	switch m[1] {
	case "all_":
		kind = KindAll
	case "last_":
		kind = KindLast
	}
	return Match{Kind: kind, Attributes: splitAttributes(m[2])}, true
}

func splitAttributes(raw string) []string {
	parts := strings.Split(raw, "_and_")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
