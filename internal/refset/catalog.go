package refset

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Catalog schema version - increment when the .apidef format changes
const catalogSchemaVersion uint16 = 1

// Extension of API catalog files produced by `uvst pack`.
const CatalogExt = ".apidef"

// Member is an exported member of a type. ReturnsVoid matters for port-key
// analysis: void methods have no result port.
type Member struct {
	Name        string
	Kind        string // "method", "property", "field", "event"
	ReturnsVoid bool
}

// TypeDef is one exported type of an assembly. FullName is the metadata
// name, so generic types carry their arity suffix (List`1). A catalog may
// list a type without enumerating all of its members; only types marked
// Complete participate in missing-member checks.
type TypeDef struct {
	FullName string
	Kind     string // "class", "struct", "interface", "enum", "delegate"
	Complete bool
	Members  []Member
}

func (t *TypeDef) HasMember(name string) bool {
	for _, m := range t.Members {
		if m.Name == name {
			return true
		}
	}
	return false
}

func (t *TypeDef) Member(name string) (Member, bool) {
	for _, m := range t.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// Catalog is the decoded form of one .apidef reference artifact.
type Catalog struct {
	Schema uint16
	Name   string
	Types  []TypeDef
}

// LoadCatalog reads and decodes a single .apidef file.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c Catalog
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding catalog %s: %w", path, err)
	}
	if c.Schema != catalogSchemaVersion {
		return nil, fmt.Errorf("catalog %s has schema %d, want %d", path, c.Schema, catalogSchemaVersion)
	}
	return &c, nil
}

// WriteCatalog encodes a catalog to path. Used by `uvst pack` and by tests
// building reference fixtures.
func WriteCatalog(path string, c *Catalog) error {
	c.Schema = catalogSchemaVersion
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
