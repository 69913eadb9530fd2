// Package params implements the Postgres parameter model (C1): typed
// single/multi values, deterministic merge, and rendering.
package params

import (
	"fmt"
	"sort"
	"strings"
)

// Value is a Postgres configuration value: either a single scalar or an
// ordered set of names. The zero Value is an empty Single.
type Value struct {
	multi bool
	set   map[string]struct{}
	order []string // insertion order, used only by Combine to rebuild the union; rendering never reads it
	single string
}

// Single constructs a single-valued Value.
func Single(v string) Value {
	return Value{single: v}
}

// Multi constructs a multi-valued Value from the given names. Order of
// input does not matter; rendering always sorts.
func Multi(names ...string) Value {
	v := Value{multi: true, set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := v.set[n]; !ok {
			v.order = append(v.order, n)
		}
		v.set[n] = struct{}{}
	}
	return v
}

// IsMulti reports whether v holds a Multi value.
func (v Value) IsMulti() bool { return v.multi }

// String returns the raw single value. Only meaningful when !IsMulti().
func (v Value) String() string { return v.single }

// Names returns the multi value's members, unsorted. Only meaningful
// when IsMulti().
func (v Value) Names() []string {
	out := make([]string, 0, len(v.set))
	for n := range v.set {
		out = append(out, n)
	}
	return out
}

// ParseRaw turns a raw Postgres GUC string reported by the server (e.g.
// `SHOW ALL`) into a Value: a string containing a comma parses as a
// Multi, otherwise a Single. This is a content-based classification
// used only when reading values back from the database, where no name
// table is consulted.
func ParseRaw(raw string) Value {
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		names := make([]string, 0, len(parts))
		for _, p := range parts {
			names = append(names, strings.TrimSpace(p))
		}
		return Multi(names...)
	}
	return Single(raw)
}

// NewValue classifies a user-supplied raw value by parameter name, per
// the MULTI_VALUE_NAMES table (spec.md §3): a fixed set of names is
// always Multi regardless of whether the raw string contains a comma;
// every other name is always Single.
func NewValue(name, raw string) Value {
	if IsMultiValueName(name) {
		parts := strings.Split(raw, ",")
		names := make([]string, 0, len(parts))
		for _, p := range parts {
			names = append(names, strings.TrimSpace(p))
		}
		return Multi(names...)
	}
	return Single(raw)
}

// ErrSingleValueNotMergeable is returned by Combine when either operand
// is a Single value.
type ErrSingleValueNotMergeable struct{ Name string }

func (e *ErrSingleValueNotMergeable) Error() string {
	return fmt.Sprintf("parameter %q: single values are not mergeable", e.Name)
}

// Combine set-unions two Multi values. It is an error to combine when
// either side is Single (spec.md §4.1 merge).
func Combine(name string, a, b Value) (Value, error) {
	if !a.multi || !b.multi {
		return Value{}, &ErrSingleValueNotMergeable{Name: name}
	}
	names := make([]string, 0, len(a.set)+len(b.set))
	names = append(names, a.order...)
	names = append(names, b.order...)
	return Multi(names...), nil
}

// PriorityList is the fixed ordering applied ahead of alphabetical
// sort when rendering a Multi value (spec.md §3, §4.1).
var PriorityList = []string{"citus", "pg_stat_statements", "pg_stat_kcache"}

func priorityIndex(name string) (int, bool) {
	for i, p := range PriorityList {
		if p == name {
			return i, true
		}
	}
	return 0, false
}

// SortedNames returns the Multi value's members ordered per PriorityList
// then alphabetically.
func SortedNames(names []string) []string {
	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, oki := priorityIndex(out[i])
		pj, okj := priorityIndex(out[j])
		switch {
		case oki && okj:
			return pi < pj
		case oki && !okj:
			return true
		case !oki && okj:
			return false
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// Render produces the `name = 'value'` Postgres configuration line.
// Multi values render as a comma-joined, priority-then-alphabetically
// sorted list.
func Render(name string, v Value) string {
	if v.multi {
		names := SortedNames(v.Names())
		return fmt.Sprintf("%s = '%s'", name, strings.Join(names, ","))
	}
	return fmt.Sprintf("%s = '%s'", name, v.single)
}

// RenderRaw returns just the value portion as Postgres would render
// it in a .conf assignment (used by callers that want to embed the
// value without the `name = ` prefix).
func (v Value) RenderRaw() string {
	if v.multi {
		return strings.Join(SortedNames(v.Names()), ",")
	}
	return v.single
}
