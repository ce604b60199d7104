package genre

import (
	"encoding/json"
	"strings"
)

// Allowlist is the read-only set of genre names known to the store.
// It is built once at startup and shared by every request.
type Allowlist struct {
	names []string
	index map[string]string
}

// NewAllowlist builds an allowlist, trimming blanks and dropping duplicates.
// Lookups are case-insensitive; the first spelling seen is canonical.
func NewAllowlist(names []string) Allowlist {
	a := Allowlist{
		names: make([]string, 0, len(names)),
		index: make(map[string]string, len(names)),
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, ok := a.index[key]; ok {
			continue
		}
		a.index[key] = n
		a.names = append(a.names, n)
	}
	return a
}

// Names returns a copy of the genre names in load order.
func (a Allowlist) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Len returns the number of genres.
func (a Allowlist) Len() int { return len(a.names) }

// IsEmpty reports whether no genres are known.
func (a Allowlist) IsEmpty() bool { return len(a.names) == 0 }

// Canonical returns the stored spelling of v, if v is a known genre.
func (a Allowlist) Canonical(v string) (string, bool) {
	c, ok := a.index[strings.ToLower(strings.TrimSpace(v))]
	return c, ok
}

// String renders the allowlist as a JSON array for prompt text.
func (a Allowlist) String() string {
	data, err := json.Marshal(a.Names())
	if err != nil {
		return "[]"
	}
	return string(data)
}
