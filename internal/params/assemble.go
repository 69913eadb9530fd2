package params

import (
	"sort"

	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

// NamedValue pairs a parameter name with its resolved Value.
type NamedValue struct {
	Name  string
	Value Value
}

// Layer is an ordered list of NamedValue; only the last entry for a
// given name within a single layer wins.
type Layer []NamedValue

func (l Layer) byName() map[string]Value {
	out := make(map[string]Value, len(l))
	for _, nv := range l {
		out[nv.Name] = nv.Value
	}
	return out
}

func layerFromParameters(ps []dbv1beta1.Parameter) Layer {
	l := make(Layer, 0, len(ps))
	for _, p := range ps {
		l = append(l, NamedValue{Name: p.Name, Value: NewValue(p.Name, p.Value)})
	}
	return l
}

// StackCatalog resolves a named Stack template to its contribution of
// stack-level parameters. The core ships no concrete catalog (static
// Stack templates are out of scope per spec.md §1); callers that have
// one inject it here.
type StackCatalog interface {
	Lookup(name string) ([]dbv1beta1.Parameter, error)
}

// NoStackCatalog is the default StackCatalog: every lookup returns no
// parameters and no error.
type NoStackCatalog struct{}

func (NoStackCatalog) Lookup(string) ([]dbv1beta1.Parameter, error) { return nil, nil }

// RequiredLoadTable maps an extension name to the shared_preload_libraries
// entry it requires, when it requires one at all.
type RequiredLoadTable map[string]string

// Assemble produces the final, deterministically-ordered parameter
// list for db, per the seven-step algorithm in spec.md §4.1.
func Assemble(db *dbv1beta1.Database, required RequiredLoadTable, catalog StackCatalog) ([]NamedValue, error) {
	if catalog == nil {
		catalog = NoStackCatalog{}
	}

	// Step 1: compute stack layer, runtime layer.
	stackLayer := Layer{}
	if db.Spec.Stack != nil {
		if db.Spec.Stack.Name != "" {
			catalogParams, err := catalog.Lookup(db.Spec.Stack.Name)
			if err != nil {
				return nil, err
			}
			stackLayer = append(stackLayer, layerFromParameters(catalogParams)...)
		}
		stackLayer = append(stackLayer, layerFromParameters(db.Spec.Stack.Parameters)...)
	}
	runtimeLayer := layerFromParameters(db.Spec.RuntimeConfig)
	overrideLayer := layerFromParameters(db.Spec.OverrideConfig)

	// Step 2: walk enabled extensions, collect required shared_preload_libraries.
	var derivedLibs []string
	seenLib := map[string]struct{}{}
	for _, ext := range db.Spec.Extensions {
		lib, ok := required[ext.Name]
		if !ok {
			continue
		}
		if !anyLocationEnabled(ext) {
			continue
		}
		if _, dup := seenLib[lib]; dup {
			continue
		}
		seenLib[lib] = struct{}{}
		derivedLibs = append(derivedLibs, lib)
	}
	derived := Multi(derivedLibs...)

	// Step 3: merge derived into runtime for shared_preload_libraries.
	runtimeMap := runtimeLayer.byName()
	const sharedPreload = "shared_preload_libraries"
	if existing, ok := runtimeMap[sharedPreload]; ok {
		combined, err := Combine(sharedPreload, existing, derived)
		if err != nil {
			return nil, err
		}
		runtimeMap[sharedPreload] = combined
	} else if len(derivedLibs) > 0 {
		runtimeMap[sharedPreload] = derived
	}

	// Step 4: for each MULTI_VALUE_NAME, merge stack ∪ runtime.
	stackMap := stackLayer.byName()
	multiMerged := map[string]Value{}
	for _, name := range MultiValueNames {
		s, sok := stackMap[name]
		r, rok := runtimeMap[name]
		switch {
		case sok && rok:
			combined, err := Combine(name, s, r)
			if err != nil {
				return nil, err
			}
			multiMerged[name] = combined
		case sok:
			multiMerged[name] = s
		case rok:
			multiMerged[name] = r
		}
	}

	// Step 5: fold layers into a single name-keyed map, in order
	// stack -> runtime -> multi-merged -> overrides.
	folded := map[string]Value{}
	for name, v := range stackMap {
		folded[name] = v
	}
	for name, v := range runtimeMap {
		folded[name] = v
	}
	for name, v := range multiMerged {
		folded[name] = v
	}
	for _, nv := range overrideLayer {
		folded[nv.Name] = nv.Value
	}

	// Step 6: drop any disallowed name.
	for name := range folded {
		if IsDisallowed(name) {
			delete(folded, name)
		}
	}

	// Step 7: return sorted by name.
	names := make([]string, 0, len(folded))
	for name := range folded {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]NamedValue, 0, len(names))
	for _, name := range names {
		out = append(out, NamedValue{Name: name, Value: folded[name]})
	}
	return out, nil
}

func anyLocationEnabled(ext dbv1beta1.Extension) bool {
	for _, loc := range ext.Locations {
		if loc.Enabled {
			return true
		}
	}
	return false
}
