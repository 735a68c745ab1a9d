package units

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed units.cue
var defaultCatalogCUE []byte

// Port is one connection point of a graph unit. Key is the serialized port
// key ("0", "comparison", ...); Default is present only for value inputs
// that carry one.
type Port struct {
	Kind    string      `json:"kind"`
	Key     string      `json:"key"`
	Default interface{} `json:"default,omitempty"`
}

// Unit is the declarative schema of one graph-unit type.
type Unit struct {
	Name     string
	Class    string `json:"class"`
	Accessor string `json:"accessor,omitempty"`
	Ports    []Port `json:"ports"`
}

// Registry maps symbolic unit-type names to their port schemas, plus the
// void-member table used by InvokeMember analysis. Loaded once, read-only.
type Registry struct {
	Context *cue.Context
	Value   cue.Value

	units       map[string]*Unit
	voidMethods map[string]map[string]bool
}

// Load builds the registry from the embedded catalog unified with any
// system, user, and project overrides, in that order.
func Load(projectRoot string) (*Registry, error) {
	ctx := cuecontext.New()

	val := ctx.CompileBytes(defaultCatalogCUE, cue.Filename("units.cue"))
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("embedded unit catalog is invalid: %w", err)
	}

	// Layered overrides, same order a schema lookup walks: system, home,
	// then project. Missing files are skipped.
	paths := []string{"/usr/share/uvst/units.cue"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".local/share/uvst/units.cue"))
	}
	if projectRoot != "" {
		paths = append(paths, filepath.Join(projectRoot, ".uvs_units.cue"))
	}

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		overlay := ctx.CompileBytes(content, cue.Filename(path))
		if overlay.Err() != nil {
			return nil, fmt.Errorf("unit catalog override %s: %w", path, overlay.Err())
		}
		val = val.Unify(overlay)
		if err := val.Err(); err != nil {
			return nil, fmt.Errorf("merging unit catalog override %s: %w", path, err)
		}
	}

	r := &Registry{Context: ctx, Value: val}
	if err := r.decode(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) decode() error {
	unitsVal := r.Value.LookupPath(cue.ParsePath("#Units"))
	if err := unitsVal.Err(); err != nil {
		return fmt.Errorf("unit catalog has no #Units: %w", err)
	}

	r.units = make(map[string]*Unit)
	iter, err := unitsVal.Fields(cue.All())
	if err != nil {
		return err
	}
	for iter.Next() {
		name := iter.Selector().Unquoted()
		var u Unit
		if err := iter.Value().Decode(&u); err != nil {
			return fmt.Errorf("unit %s: %w", name, err)
		}
		u.Name = name
		r.units[name] = &u
	}

	voidVal := r.Value.LookupPath(cue.ParsePath("#VoidMethods"))
	r.voidMethods = make(map[string]map[string]bool)
	if voidVal.Exists() {
		var table map[string][]string
		if err := voidVal.Decode(&table); err != nil {
			return fmt.Errorf("void method table: %w", err)
		}
		for typeName, methods := range table {
			set := make(map[string]bool, len(methods))
			for _, m := range methods {
				set[m] = true
			}
			r.voidMethods[typeName] = set
		}
	}

	return nil
}

// Unit returns the schema of a unit-type name.
func (r *Registry) Unit(name string) (*Unit, bool) {
	u, ok := r.units[name]
	return u, ok
}

// Names returns all registered unit-type names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.units))
	for n := range r.units {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsComparison reports whether the unit collapses its outputs into a single
// comparison accessor.
func (r *Registry) IsComparison(name string) bool {
	u, ok := r.units[name]
	return ok && u.Class == "comparison"
}

// IsMultiInput reports whether the unit indexes its value inputs
// (multiInputs[n]) instead of exposing per-port accessors.
func (r *Registry) IsMultiInput(name string) bool {
	u, ok := r.units[name]
	return ok && u.Class == "multi_input"
}

// IsVoidMethod reports whether typeName.method is known to return void.
func (r *Registry) IsVoidMethod(typeName, method string) bool {
	return r.voidMethods[typeName][method]
}
