package validator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/uvs-community/uvs-dev-tools/internal/diag"
	"github.com/uvs-community/uvs-dev-tools/internal/refset"
)

// unityRefDir builds a module-layout reference directory with a minimal
// engine catalog.
func unityRefDir(t *testing.T) string {
	t.Helper()
	refDir := t.TempDir()
	modDir := filepath.Join(refDir, "Modules")
	if err := os.Mkdir(modDir, 0755); err != nil {
		t.Fatal(err)
	}

	c := &refset.Catalog{
		Name: "UnityEngine.CoreModule",
		Types: []refset.TypeDef{
			{FullName: "UnityEngine.MonoBehaviour", Kind: "class"},
			{FullName: "UnityEngine.Debug", Kind: "class"},
			{FullName: "UnityEngine.Transform", Kind: "class"},
			{FullName: "UnityEngine.GameObject", Kind: "class", Complete: true, Members: []refset.Member{
				{Name: "SetActive", Kind: "method", ReturnsVoid: true},
				{Name: "GetComponent", Kind: "method"},
				{Name: "name", Kind: "property"},
			}},
		},
	}
	if err := refset.WriteCatalog(filepath.Join(modDir, "UnityEngine.CoreModule.apidef"), c); err != nil {
		t.Fatal(err)
	}
	return refDir
}

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Generated.cs")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const cleanSource = `using System;
using UnityEngine;

public class Hello : MonoBehaviour
{
    void Start()
    {
        Debug.Log("started");
    }
}
`

func TestValidateCleanFile(t *testing.T) {
	diags, err := Validate(context.Background(), Options{
		SourcePath: writeSource(t, cleanSource),
		RefDir:     unityRefDir(t),
	})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", diags)
	}
}

func TestValidateUnknownType(t *testing.T) {
	src := `using UnityEngine;

public class Broken : MonoBehaviour
{
    void Start()
    {
        var widget = new Frobnicator();
    }
}
`
	diags, err := Validate(context.Background(), Options{
		SourcePath: writeSource(t, src),
		RefDir:     unityRefDir(t),
	})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !diag.HasErrors(diags) {
		t.Fatal("expected an error diagnostic")
	}
	found := false
	for _, d := range diags {
		if d.Code == "CS0246" && d.Line == 7 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected CS0246 on line 7, got %+v", diags)
	}
}

func TestValidateMissingMember(t *testing.T) {
	src := `using UnityEngine;

public class Broken
{
    void Run()
    {
        var go = new GameObject();
        go.Frobnicate();
    }
}
`
	diags, err := Validate(context.Background(), Options{
		SourcePath: writeSource(t, src),
		RefDir:     unityRefDir(t),
	})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	found := false
	for _, d := range diags {
		if d.Code == "CS1061" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected CS1061 for Frobnicate, got %+v", diags)
	}

	// A member the catalog does list must not be flagged.
	for _, d := range diags {
		if d.Code != "CS1061" {
			continue
		}
		if d.Line != 8 {
			t.Errorf("CS1061 on unexpected line %d", d.Line)
		}
	}
}

func TestValidateDuplicateUsingIsWarningOnly(t *testing.T) {
	src := `using UnityEngine;
using UnityEngine;

public class Dup : MonoBehaviour
{
}
`
	diags, err := Validate(context.Background(), Options{
		SourcePath: writeSource(t, src),
		RefDir:     unityRefDir(t),
	})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if diag.HasErrors(diags) {
		t.Fatalf("duplicate using must not be an error: %+v", diags)
	}
	found := false
	for _, d := range diags {
		if d.Code == "CS0105" && d.Severity == diag.SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("expected CS0105 warning, got %+v", diags)
	}
}

func TestValidateUnusedUsingIsFiltered(t *testing.T) {
	src := `using UnityEngine;

public class Plain
{
}
`
	diags, err := Validate(context.Background(), Options{
		SourcePath: writeSource(t, src),
		RefDir:     unityRefDir(t),
	})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	for _, d := range diags {
		if d.Code == "CS8019" {
			t.Errorf("hidden-severity CS8019 leaked into output: %+v", d)
		}
	}
}

func TestValidateEditorOnlyRegionActive(t *testing.T) {
	src := `using UnityEngine;

public class EditorOnly : MonoBehaviour
{
#if UNITY_EDITOR
    void Start()
    {
        var widget = new Frobnicator();
    }
#endif
}
`
	diags, err := Validate(context.Background(), Options{
		SourcePath: writeSource(t, src),
		RefDir:     unityRefDir(t),
	})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !diag.HasErrors(diags) {
		t.Fatal("editor-only region must be validated")
	}
}

func TestValidateIdempotent(t *testing.T) {
	opts := Options{
		SourcePath: writeSource(t, `using UnityEngine;

public class Twice : MonoBehaviour
{
    void Start()
    {
        var a = new Frobnicator();
        var b = new Whatsit()
    }
}
`),
		RefDir: unityRefDir(t),
	}

	first, err := Validate(context.Background(), opts)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := Validate(context.Background(), opts)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	fl, _ := diag.MarshalLine(first)
	sl, _ := diag.MarshalLine(second)
	if !bytes.Equal(fl, sl) {
		t.Errorf("output differs between runs:\n%s\n%s", fl, sl)
	}
	if len(first) == 0 {
		t.Fatal("expected diagnostics from the broken source")
	}
}

func TestValidateSourceNilSymbolsDefaults(t *testing.T) {
	set, err := refset.Resolve(unityRefDir(t), "")
	if err != nil {
		t.Fatal(err)
	}
	diags, err := ValidateSource(context.Background(), "#if UNITY_EDITOR\nbroken(\n#endif\n", set, nil)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if len(diags) == 0 {
		t.Error("default symbol set must keep UNITY_EDITOR regions active")
	}
}
