// Package check runs both validation layers over one generated script:
// compile validation against the reference set, then port-key analysis
// against the unit registry. It is the workflow behind `uvst check`.
package check

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/uvs-community/uvs-dev-tools/internal/diag"
	"github.com/uvs-community/uvs-dev-tools/internal/portcheck"
	"github.com/uvs-community/uvs-dev-tools/internal/refset"
	"github.com/uvs-community/uvs-dev-tools/internal/units"
	"github.com/uvs-community/uvs-dev-tools/internal/validator"
)

type Options struct {
	SourcePath string
	RefDir     string // empty skips the compile layer
	AuxRefDir  string
	Registry   *units.Registry
}

// Result carries the outcome of one layer. Skipped layers count as neither
// passed nor failed.
type Result struct {
	Name    string
	Skipped bool
	Reason  string
	Diags   []diag.Diagnostic
}

func (r Result) Failed() bool {
	return !r.Skipped && diag.HasErrors(r.Diags)
}

var (
	passMark = color.New(color.FgGreen, color.Bold).SprintFunc()
	failMark = color.New(color.FgRed, color.Bold).SprintFunc()
	skipMark = color.New(color.FgYellow).SprintFunc()
)

// Run executes both layers and writes a per-layer report to w. It returns
// false when any executed layer found errors.
func Run(ctx context.Context, opts Options, w io.Writer) (bool, error) {
	source, err := os.ReadFile(opts.SourcePath)
	if err != nil {
		return false, fmt.Errorf("reading source: %w", err)
	}

	results := []Result{
		compileLayer(ctx, string(source), opts),
		portLayer(string(source), opts.Registry),
	}

	ok := true
	for _, r := range results {
		report(w, opts.SourcePath, r)
		if r.Failed() {
			ok = false
		}
	}

	if ok {
		fmt.Fprintf(w, "\n%s %s\n", passMark("PASSED"), opts.SourcePath)
	} else {
		fmt.Fprintf(w, "\n%s %s\n", failMark("FAILED"), opts.SourcePath)
	}
	return ok, nil
}

func compileLayer(ctx context.Context, source string, opts Options) Result {
	r := Result{Name: "compile validation"}
	if opts.RefDir == "" {
		r.Skipped = true
		r.Reason = "no reference directory configured"
		return r
	}

	set, err := refset.Resolve(opts.RefDir, opts.AuxRefDir)
	if err != nil {
		r.Skipped = true
		r.Reason = err.Error()
		return r
	}

	diags, err := validator.ValidateSource(ctx, source, set, nil)
	if err != nil {
		r.Skipped = true
		r.Reason = err.Error()
		return r
	}
	r.Diags = diags
	return r
}

func portLayer(source string, registry *units.Registry) Result {
	return Result{
		Name:  "port keys",
		Diags: portcheck.NewChecker(registry).Check(source),
	}
}

func report(w io.Writer, path string, r Result) {
	if r.Skipped {
		fmt.Fprintf(w, "%s %s skipped due to setup issue: %s\n", skipMark("SKIP"), r.Name, r.Reason)
		return
	}

	for _, d := range r.Diags {
		mark := failMark("error")
		if d.Severity == diag.SeverityWarning {
			mark = skipMark("warning")
		}
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, d.Line, d.Column, mark, d.Code, d.Message)
	}
}
