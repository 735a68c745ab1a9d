package unity

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Install locates the reference assemblies of one editor installation.
// Version is the directory name actually used, which may differ from the
// requested one when discovery fell back to another install.
type Install struct {
	Version    string
	ManagedDir string
}

// FindManagedDir locates <base>/<version>/Managed. When that exact install
// is absent it scans base for any install directory carrying a Managed
// subdirectory, newest version name first, so a minor editor upgrade does
// not break the toolchain until the configured version catches up.
func FindManagedDir(base, version string) (Install, error) {
	exact := filepath.Join(base, version, "Managed")
	if fi, err := os.Stat(exact); err == nil && fi.IsDir() {
		return Install{Version: version, ManagedDir: exact}, nil
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return Install{}, fmt.Errorf("editor base directory not readable: %w", err)
	}

	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(versions)))

	for _, v := range versions {
		managed := filepath.Join(base, v, "Managed")
		if fi, err := os.Stat(managed); err == nil && fi.IsDir() {
			return Install{Version: v, ManagedDir: managed}, nil
		}
	}

	return Install{}, fmt.Errorf("no editor install with a Managed directory under %s", base)
}
