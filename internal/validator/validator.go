package validator

import (
	"context"
	"fmt"
	"os"

	"github.com/uvs-community/uvs-dev-tools/internal/csharp"
	"github.com/uvs-community/uvs-dev-tools/internal/diag"
	"github.com/uvs-community/uvs-dev-tools/internal/refset"
)

// DefaultSymbols is the fixed conditional-compilation symbol set: generated
// scripts are editor tooling, so editor-only regions are active.
var DefaultSymbols = []string{"UNITY_EDITOR"}

type Options struct {
	SourcePath string
	RefDir     string
	AuxRefDir  string
	Symbols    []string // nil means DefaultSymbols
}

// Validate runs the full single-shot pipeline: read, preprocess, parse,
// bind, filter. The returned diagnostics are filtered (severity >= Warning,
// denylist applied) and sorted; compilation findings are data, never a Go
// error. A non-nil error means the invocation could not run at all.
func Validate(ctx context.Context, opts Options) ([]diag.Diagnostic, error) {
	raw, err := os.ReadFile(opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	set, err := refset.Resolve(opts.RefDir, opts.AuxRefDir)
	if err != nil {
		return nil, fmt.Errorf("resolving references: %w", err)
	}

	return ValidateSource(ctx, string(raw), set, opts.Symbols)
}

// ValidateSource is the same stateless (text, reference set) -> diagnostics
// transformation over in-memory source, for callers that hold the document
// themselves (the LSP server).
func ValidateSource(ctx context.Context, source string, set *refset.Set, symbols []string) ([]diag.Diagnostic, error) {
	if symbols == nil {
		symbols = DefaultSymbols
	}

	pre := csharp.Preprocess(source, symbols)
	file, err := csharp.Parse(ctx, []byte(pre))
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}

	diags := file.SyntaxDiagnostics()
	diags = append(diags, newBinder(file, set).bind()...)

	diags = diag.Filter(diags)
	diag.Sort(diags)
	return diags, nil
}
