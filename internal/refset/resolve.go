package refset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// Module-granularity layout: one catalog per engine subsystem.
	modulesDirName = "Modules"
	// Prefix of auxiliary package catalogs worth loading from --extra-refs.
	auxPrefix = "Unity.VisualScripting"
)

// Facade catalogs aggregating all engine subsystems, used only when the
// module-granularity layout is absent. Loading both representations would
// bind the same types twice.
var facadeFiles = []string{
	"UnityEngine" + CatalogExt,
	"UnityEditor" + CatalogExt,
}

type layout int

const (
	layoutModules layout = iota
	layoutFacades
)

// Set is the resolved reference-assembly set for one validation run. Built
// once per invocation and read-only afterwards.
type Set struct {
	Assemblies []string

	types      map[string]*TypeDef   // metadata full name -> def
	simple     map[string][]string   // simple name -> namespaces declaring it
	namespaces map[string]bool       // prefix-closed
}

func newSet() *Set {
	return &Set{
		types:      make(map[string]*TypeDef),
		simple:     make(map[string][]string),
		namespaces: make(map[string]bool),
	}
}

// Resolve assembles the reference set: embedded core runtime catalogs, then
// the module layout (or the facade fallback) under refDir, then auxiliary
// catalogs. refDir must exist (checked by the caller as a usage condition);
// auxDir is optional and silently skipped when absent. An empty reference
// layout is not an error here: unresolved symbols surface later as ordinary
// binding diagnostics.
func Resolve(refDir, auxDir string) (*Set, error) {
	s := newSet()

	for _, c := range CoreCatalogs() {
		s.add(c)
	}

	switch detectLayout(refDir) {
	case layoutModules:
		if err := s.loadDir(filepath.Join(refDir, modulesDirName), ""); err != nil {
			return nil, err
		}
	case layoutFacades:
		for _, name := range facadeFiles {
			path := filepath.Join(refDir, name)
			if _, err := os.Stat(path); err != nil {
				continue // absence of a facade is not an error
			}
			if c, err := LoadCatalog(path); err == nil {
				s.add(c)
			}
		}
	}

	if auxDir != "" {
		if fi, err := os.Stat(auxDir); err == nil && fi.IsDir() {
			if err := s.loadDir(auxDir, auxPrefix); err != nil {
				return nil, err
			}
		}
	}

	return s, nil
}

// detectLayout picks the loading strategy once: the module directory wins
// whenever it exists and holds at least one catalog.
func detectLayout(refDir string) layout {
	entries, err := os.ReadDir(filepath.Join(refDir, modulesDirName))
	if err != nil {
		return layoutFacades
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), CatalogExt) {
			return layoutModules
		}
	}
	return layoutFacades
}

func (s *Set) loadDir(dir, prefix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), CatalogExt) {
			continue
		}
		if prefix != "" && !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		c, err := LoadCatalog(filepath.Join(dir, name))
		if err != nil {
			// A malformed catalog resolves nothing; the missing symbols
			// will show up as binding diagnostics.
			continue
		}
		s.add(c)
	}
	return nil
}

func (s *Set) add(c *Catalog) {
	s.Assemblies = append(s.Assemblies, c.Name)
	for i := range c.Types {
		t := &c.Types[i]
		if _, exists := s.types[t.FullName]; exists {
			continue // first catalog wins
		}
		s.types[t.FullName] = t

		ns, name := splitTypeName(t.FullName)
		s.simple[name] = append(s.simple[name], ns)
		for len(ns) > 0 {
			s.namespaces[ns] = true
			idx := strings.LastIndex(ns, ".")
			if idx == -1 {
				break
			}
			ns = ns[:idx]
		}
	}
}

func splitTypeName(full string) (ns, name string) {
	idx := strings.LastIndex(full, ".")
	if idx == -1 {
		return "", full
	}
	return full[:idx], full[idx+1:]
}

// Type looks up a metadata full name.
func (s *Set) Type(fullName string) (*TypeDef, bool) {
	t, ok := s.types[fullName]
	return t, ok
}

// HasNamespace reports whether ns (or any type below it) is known.
func (s *Set) HasNamespace(ns string) bool {
	return s.namespaces[ns]
}

// ResolveName resolves a (possibly qualified) type name against the global
// namespace and each imported namespace, in that order.
func (s *Set) ResolveName(name string, usings []string) (*TypeDef, bool) {
	if t, ok := s.types[name]; ok {
		return t, true
	}
	for _, u := range usings {
		if t, ok := s.types[u+"."+name]; ok {
			return t, true
		}
	}
	return nil, false
}

// TypeCount reports how many distinct types the set can bind.
func (s *Set) TypeCount() int {
	return len(s.types)
}
