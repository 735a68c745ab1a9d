package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the project-level configuration file, looked up at the
// project root.
const FileName = "uvst.toml"

// Config carries the settings the subcommands would otherwise need on
// every invocation. All fields are optional; zero values mean "not
// configured" and commands fall back to their flags.
type Config struct {
	Unity UnityConfig `toml:"unity"`
	Refs  RefsConfig  `toml:"refs"`

	// Extra conditional-compilation symbols, added to the built-in set.
	Symbols []string `toml:"symbols"`
}

type UnityConfig struct {
	// EditorBase is the directory holding one subdirectory per installed
	// editor version.
	EditorBase string `toml:"editor_base"`
	Version    string `toml:"version"`
}

type RefsConfig struct {
	Dir    string `toml:"dir"`
	AuxDir string `toml:"aux_dir"`
}

// Load reads configuration for a project: the user-level file under
// ~/.config/uvst/ first, then the project file on top of it. A missing
// file contributes nothing; a malformed one is an error.
func Load(projectRoot string) (*Config, error) {
	cfg := &Config{}

	if home, err := os.UserHomeDir(); err == nil {
		if err := mergeFile(cfg, filepath.Join(home, ".config", "uvst", FileName)); err != nil {
			return nil, err
		}
	}
	if err := mergeFile(cfg, filepath.Join(projectRoot, FileName)); err != nil {
		return nil, err
	}

	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var layer Config
	if err := toml.Unmarshal(raw, &layer); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if layer.Unity.EditorBase != "" {
		cfg.Unity.EditorBase = layer.Unity.EditorBase
	}
	if layer.Unity.Version != "" {
		cfg.Unity.Version = layer.Unity.Version
	}
	if layer.Refs.Dir != "" {
		cfg.Refs.Dir = layer.Refs.Dir
	}
	if layer.Refs.AuxDir != "" {
		cfg.Refs.AuxDir = layer.Refs.AuxDir
	}
	if len(layer.Symbols) > 0 {
		cfg.Symbols = layer.Symbols
	}
	return nil
}

// Write serializes cfg to the project file. `uvst init` writes a commented
// template instead, so this is for tooling that manages the file
// programmatically.
func Write(projectRoot string, cfg *Config) error {
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(projectRoot, FileName), raw, 0644)
}
