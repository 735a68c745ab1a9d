package refset

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed core_api.json
var coreManifestJSON []byte

type coreManifest struct {
	Assemblies []Catalog `json:"assemblies"`
}

// CoreCatalogs returns the embedded trusted-platform assemblies restricted
// to core runtime libraries: names starting with "System." plus the two
// legacy core assemblies. The full manifest is large and mostly irrelevant
// to a single-file check; the name filter keeps the noise out without
// losing basic system types.
func CoreCatalogs() []*Catalog {
	var m coreManifest
	if err := json.Unmarshal(coreManifestJSON, &m); err != nil {
		panic(fmt.Sprintf("failed to parse embedded core manifest: %v", err))
	}

	var out []*Catalog
	for i := range m.Assemblies {
		c := &m.Assemblies[i]
		if !isCoreAssembly(c.Name) {
			continue
		}
		c.Schema = catalogSchemaVersion
		out = append(out, c)
	}
	return out
}

func isCoreAssembly(name string) bool {
	if strings.HasPrefix(name, "System.") {
		return true
	}
	return name == "mscorlib" || name == "netstandard"
}
