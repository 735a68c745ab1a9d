package csharp

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/uvs-community/uvs-dev-tools/internal/diag"
)

// SyntaxDiagnostics maps parser error and missing-token nodes to the
// compiler's syntax diagnostic codes.
func (f *File) SyntaxDiagnostics() []diag.Diagnostic {
	var diags []diag.Diagnostic

	f.Walk(func(n *sitter.Node) bool {
		if !n.HasError() && !n.IsMissing() {
			// No error anywhere below, stop descending.
			return false
		}
		if n.IsMissing() {
			diags = append(diags, missingTokenDiagnostic(n))
			return false
		}
		if n.IsError() {
			line, col := Position(n)
			diags = append(diags, diag.Diagnostic{
				Severity: diag.SeverityError,
				Code:     "CS1003",
				Message:  fmt.Sprintf("Syntax error near '%s'", truncate(f.Text(n), 40)),
				Line:     line,
				Column:   col,
			})
			return false
		}
		return true
	})

	return diags
}

func missingTokenDiagnostic(n *sitter.Node) diag.Diagnostic {
	line, col := Position(n)
	code := "CS1003"
	msg := fmt.Sprintf("Syntax error, '%s' expected", n.Type())
	switch n.Type() {
	case ";":
		code, msg = "CS1002", "; expected"
	case "}":
		code, msg = "CS1513", "} expected"
	case ")":
		code, msg = "CS1026", ") expected"
	}
	return diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     code,
		Message:  msg,
		Line:     line,
		Column:   col,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
