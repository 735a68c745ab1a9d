package check

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/uvs-community/uvs-dev-tools/internal/refset"
	"github.com/uvs-community/uvs-dev-tools/internal/units"
)

func init() {
	color.NoColor = true
}

func testRefDir(t *testing.T) string {
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
		},
	}
	if err := refset.WriteCatalog(filepath.Join(modDir, "UnityEngine.CoreModule.apidef"), c); err != nil {
		t.Fatal(err)
	}
	return refDir
}

func testRegistry(t *testing.T) *units.Registry {
	t.Helper()
	r, err := units.Load("")
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Generated.cs")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunBothLayersPass(t *testing.T) {
	src := writeSource(t, `using UnityEngine;

public class Fine : MonoBehaviour
{
    void Start()
    {
        Debug.Log("ok");
    }
}
`)

	var out bytes.Buffer
	ok, err := Run(context.Background(), Options{
		SourcePath: src,
		RefDir:     testRefDir(t),
		Registry:   testRegistry(t),
	}, &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected pass, output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "PASSED") {
		t.Errorf("missing PASSED summary:\n%s", out.String())
	}
}

func TestRunCompileLayerFails(t *testing.T) {
	src := writeSource(t, `using UnityEngine;

public class Bad : MonoBehaviour
{
    void Start()
    {
        var widget = new Frobnicator();
    }
}
`)

	var out bytes.Buffer
	ok, err := Run(context.Background(), Options{
		SourcePath: src,
		RefDir:     testRefDir(t),
		Registry:   testRegistry(t),
	}, &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if ok {
		t.Fatal("expected failure")
	}
	if !strings.Contains(out.String(), "CS0246") || !strings.Contains(out.String(), "FAILED") {
		t.Errorf("report missing diagnostics:\n%s", out.String())
	}
}

func TestRunPortLayerFails(t *testing.T) {
	src := writeSource(t, `var eq = new Equal();
var r = eq.equal;
`)

	var out bytes.Buffer
	ok, err := Run(context.Background(), Options{
		SourcePath: src,
		Registry:   testRegistry(t),
	}, &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if ok {
		t.Fatal("expected the port layer to fail on the per-port accessor")
	}
	if !strings.Contains(out.String(), "VS-PORT-001") {
		t.Errorf("report missing port diagnostic:\n%s", out.String())
	}
}

func TestRunSkipsCompileLayerWithoutRefs(t *testing.T) {
	src := writeSource(t, `using UnknownNamespace;
`)

	var out bytes.Buffer
	ok, err := Run(context.Background(), Options{
		SourcePath: src,
		Registry:   testRegistry(t),
	}, &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !ok {
		t.Fatalf("skipped layer must not fail the run:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "skipped due to setup issue") {
		t.Errorf("missing skip notice:\n%s", out.String())
	}
}

func TestRunMissingSource(t *testing.T) {
	var out bytes.Buffer
	if _, err := Run(context.Background(), Options{SourcePath: "/no/such.cs", Registry: testRegistry(t)}, &out); err == nil {
		t.Fatal("expected an error for a missing source file")
	}
}
