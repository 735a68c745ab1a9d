package validator

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/uvs-community/uvs-dev-tools/internal/diag"
)

const usage = "usage: uvst validate <source-file> --refs <dir> [--extra-refs <dir>]"

// Run executes the validate subcommand. It writes the diagnostic line to
// stdout and returns the process exit code: 0 clean, 1 errors found,
// 2 the tool itself could not run.
func Run(args []string, stdout, stderr io.Writer) int {
	opts := Options{Symbols: DefaultSymbols}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--refs":
			if i+1 >= len(args) {
				fmt.Fprintln(stderr, "validate: --refs requires a directory argument")
				fmt.Fprintln(stderr, usage)
				return 2
			}
			i++
			opts.RefDir = args[i]
		case arg == "--extra-refs":
			if i+1 >= len(args) {
				fmt.Fprintln(stderr, "validate: --extra-refs requires a directory argument")
				fmt.Fprintln(stderr, usage)
				return 2
			}
			i++
			opts.AuxRefDir = args[i]
		case strings.HasPrefix(arg, "--"):
			// Unknown flags are tolerated so callers can pass through
			// options meant for newer versions.
		case opts.SourcePath == "":
			opts.SourcePath = arg
		}
	}

	if opts.SourcePath == "" || opts.RefDir == "" {
		fmt.Fprintln(stderr, usage)
		return 2
	}
	if _, err := os.Stat(opts.SourcePath); err != nil {
		fmt.Fprintf(stderr, "validate: source file not found: %s\n", opts.SourcePath)
		return 2
	}
	if info, err := os.Stat(opts.RefDir); err != nil || !info.IsDir() {
		fmt.Fprintf(stderr, "validate: reference directory not found: %s\n", opts.RefDir)
		return 2
	}

	diags, err := Validate(context.Background(), opts)
	if err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 2
	}

	line, err := diag.MarshalLine(diags)
	if err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 2
	}
	fmt.Fprintln(stdout, string(line))

	if diag.HasErrors(diags) {
		return 1
	}
	return 0
}
