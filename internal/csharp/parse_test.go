package csharp

import (
	"context"
	"testing"
)

func TestParseCleanFile(t *testing.T) {
	src := []byte("using System;\n\npublic class Empty\n{\n}\n")
	f, err := Parse(context.Background(), src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if f.Root().HasError() {
		t.Errorf("unexpected parse error in clean file: %s", f.Root())
	}
	if diags := f.SyntaxDiagnostics(); len(diags) != 0 {
		t.Errorf("expected no syntax diagnostics, got %v", diags)
	}
}

func TestParseMissingSemicolon(t *testing.T) {
	src := []byte("class C\n{\n    int x = 1\n}\n")
	f, err := Parse(context.Background(), src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	diags := f.SyntaxDiagnostics()
	if len(diags) == 0 {
		t.Fatal("expected a syntax diagnostic for missing semicolon")
	}
	for _, d := range diags {
		if d.Line < 1 || d.Column < 1 {
			t.Errorf("positions must be 1-based, got %d:%d", d.Line, d.Column)
		}
	}
}

func TestParseUnbalancedBrace(t *testing.T) {
	src := []byte("class C\n{\n    void M() {\n")
	f, err := Parse(context.Background(), src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if diags := f.SyntaxDiagnostics(); len(diags) == 0 {
		t.Error("expected syntax diagnostics for unbalanced braces")
	}
}
