package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/uvs-community/uvs-dev-tools/internal/check"
	"github.com/uvs-community/uvs-dev-tools/internal/config"
	"github.com/uvs-community/uvs-dev-tools/internal/diag"
	"github.com/uvs-community/uvs-dev-tools/internal/logger"
	"github.com/uvs-community/uvs-dev-tools/internal/lsp"
	"github.com/uvs-community/uvs-dev-tools/internal/portcheck"
	"github.com/uvs-community/uvs-dev-tools/internal/refset"
	"github.com/uvs-community/uvs-dev-tools/internal/units"
	"github.com/uvs-community/uvs-dev-tools/internal/unity"
	"github.com/uvs-community/uvs-dev-tools/internal/validator"
)

func main() {
	if len(os.Args) < 2 {
		logger.Println("Usage: uvst <command> [arguments]")
		logger.Println("Commands: validate, check, ports, pack, lsp, init")
		logger.Println("  validate <source-file> --refs <dir> [--extra-refs <dir>]")
		logger.Println("  check <source-files...>")
		logger.Println("  ports <source-files...>")
		logger.Println("  pack <manifest.json> [-o output_dir]")
		logger.Println("  init")
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "validate":
		os.Exit(validator.Run(os.Args[2:], os.Stdout, os.Stderr))
	case "check":
		os.Exit(runCheck(os.Args[2:], os.Stdout, os.Stderr))
	case "ports":
		os.Exit(runPorts(os.Args[2:], os.Stdout, os.Stderr))
	case "pack":
		runPack(os.Args[2:])
	case "lsp":
		runLSP()
	case "init":
		runInit()
	default:
		logger.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

// refDirs resolves the reference directories: explicit config first, then
// editor-install discovery. An empty result is not fatal; the compile layer
// reports itself as skipped.
func refDirs(cfg *config.Config) (refDir, auxDir string) {
	refDir = cfg.Refs.Dir
	auxDir = cfg.Refs.AuxDir

	if refDir == "" && cfg.Unity.EditorBase != "" {
		inst, err := unity.FindManagedDir(cfg.Unity.EditorBase, cfg.Unity.Version)
		if err != nil {
			logger.Printf("Editor discovery failed: %v\n", err)
			return "", auxDir
		}
		if inst.Version != cfg.Unity.Version {
			logger.Printf("Editor %s not found, using %s\n", cfg.Unity.Version, inst.Version)
		}
		refDir = inst.ManagedDir
	}
	return refDir, auxDir
}

// runCheck exits 2 before any analysis for caller misuse (no arguments,
// unreadable source), 1 when a layer found errors, 0 otherwise.
func runCheck(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "Usage: uvst check <source-files...>")
		return 2
	}

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 2
	}
	registry, err := units.Load(".")
	if err != nil {
		fmt.Fprintf(stderr, "Unit catalog error: %v\n", err)
		return 2
	}
	refDir, auxDir := refDirs(cfg)

	for _, file := range args {
		if _, err := os.Stat(file); err != nil {
			fmt.Fprintf(stderr, "ERROR: File not found: %s\n", file)
			return 2
		}
	}

	failed := false
	for _, file := range args {
		ok, err := check.Run(context.Background(), check.Options{
			SourcePath: file,
			RefDir:     refDir,
			AuxRefDir:  auxDir,
			Registry:   registry,
		}, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "ERROR: %v\n", err)
			return 2
		}
		if !ok {
			failed = true
		}
	}

	if failed {
		return 1
	}
	return 0
}

// runPorts mirrors the port-key checker contract: findings on stdout in the
// `  ERROR <code> (line N): ...` shape, exit 0 clean, 1 with errors, 2 for
// caller misuse.
func runPorts(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "Usage: uvst ports <source-files...>")
		return 2
	}

	registry, err := units.Load(".")
	if err != nil {
		fmt.Fprintf(stderr, "Unit catalog error: %v\n", err)
		return 2
	}
	checker := portcheck.NewChecker(registry)

	errors, warnings := 0, 0
	for _, file := range args {
		content, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(stderr, "ERROR: File not found: %s\n", file)
			return 2
		}

		for _, d := range checker.Check(string(content)) {
			label := "WARNING"
			if d.Severity == diag.SeverityError {
				label = "ERROR"
				errors++
			} else {
				warnings++
			}
			fmt.Fprintf(stdout, "  %s %s (line %d): %s\n", label, d.Code, d.Line, d.Message)
		}
	}

	if errors == 0 && warnings == 0 {
		fmt.Fprintln(stdout, "Port key check PASSED: No issues found.")
		return 0
	}

	fmt.Fprintf(stdout, "\nTotal: %d error(s), %d warning(s)\n", errors, warnings)
	if errors > 0 {
		return 1
	}
	return 0
}

func runPack(args []string) {
	if len(args) < 1 {
		logger.Println("Usage: uvst pack <manifest.json> [-o output_dir]")
		os.Exit(1)
	}

	manifest := ""
	outDir := "Modules"
	for i := 0; i < len(args); i++ {
		if args[i] == "-o" {
			if i+1 >= len(args) {
				logger.Fatalf("Error: -o requires a directory path")
			}
			i++
			outDir = args[i]
		} else if manifest == "" {
			manifest = args[i]
		}
	}
	if manifest == "" {
		logger.Fatalf("Usage: uvst pack <manifest.json> [-o output_dir]")
	}

	written, err := refset.Pack(manifest, outDir)
	if err != nil {
		logger.Fatalf("Pack failed: %v", err)
	}
	for _, path := range written {
		logger.Printf("Wrote %s\n", path)
	}
}

func runLSP() {
	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatalf("Configuration error: %v", err)
	}
	registry, err := units.Load(".")
	if err != nil {
		logger.Fatalf("Unit catalog error: %v", err)
	}

	refDir, auxDir := refDirs(cfg)
	set, err := refset.Resolve(refDir, auxDir)
	if err != nil {
		logger.Fatalf("Reference resolution failed: %v", err)
	}

	lsp.NewServer(set, registry).Run()
}

func runInit() {
	files := map[string]string{
		config.FileName: "[unity]\n" +
			"# editor_base = \"/Applications/Unity/Hub/Editor\"\n" +
			"# version = \"2022.3.10f1\"\n" +
			"\n[refs]\n" +
			"# dir = \"/path/to/Managed\"\n" +
			"# aux_dir = \"/path/to/VisualScripting\"\n",
		".uvs_units.cue": "// Project-specific unit definitions, merged over the built-in catalog.\n" +
			"#Units: {\n}\n",
	}

	for path, content := range files {
		if _, err := os.Stat(path); err == nil {
			logger.Printf("Skipping %s (already exists)\n", path)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			logger.Fatalf("Error creating file %s: %v", path, err)
		}
		logger.Printf("Created %s\n", path)
	}

	logger.Println("Project initialized successfully.")
}
