package refset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Pack converts a JSON API manifest into one .apidef catalog per assembly
// under outDir. The manifest uses the same shape as the embedded core one:
//
//	{"assemblies": [{"Name": ..., "Types": [...]}, ...]}
//
// It returns the written file paths in manifest order.
func Pack(manifestPath, outDir string) ([]string, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m coreManifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", manifestPath, err)
	}
	if len(m.Assemblies) == 0 {
		return nil, fmt.Errorf("manifest %s declares no assemblies", manifestPath)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	var written []string
	for i := range m.Assemblies {
		c := &m.Assemblies[i]
		if c.Name == "" {
			return nil, fmt.Errorf("manifest %s: assembly %d has no name", manifestPath, i)
		}
		c.Schema = catalogSchemaVersion

		path := filepath.Join(outDir, c.Name+CatalogExt)
		if err := WriteCatalog(path, c); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}
