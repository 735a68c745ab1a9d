package units

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded catalog: %v", err)
	}

	u, ok := r.Unit("Equal")
	if !ok {
		t.Fatal("Equal unit missing from catalog")
	}
	if u.Class != "comparison" || u.Accessor != "comparison" {
		t.Errorf("Equal schema wrong: %+v", u)
	}

	var hasOut bool
	for _, p := range u.Ports {
		if p.Kind == "valueOut" && p.Key == "comparison" {
			hasOut = true
		}
	}
	if !hasOut {
		t.Errorf("Equal has no comparison output port: %+v", u.Ports)
	}
}

func TestUnitClasses(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"ScalarSum", "GenericSum", "ScalarSubtract", "GenericSubtract"} {
		if !r.IsMultiInput(name) {
			t.Errorf("%s must be multi-input", name)
		}
	}
	if r.IsMultiInput("ScalarMultiply") {
		t.Error("ScalarMultiply is not a multi-input unit")
	}
	if !r.IsComparison("NotEqual") {
		t.Error("NotEqual must be a comparison unit")
	}
	if r.IsComparison("Less") {
		t.Error("Less keeps per-port accessors")
	}
}

func TestVoidMethodTable(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		typeName, method string
		want             bool
	}{
		{"Transform", "Rotate", true},
		{"GameObject", "SetActive", true},
		{"Debug", "Log", true},
		{"GameObject", "GetComponent", false},
		{"Transform", "position", false},
		{"Unknown", "Anything", false},
	}
	for _, c := range cases {
		if got := r.IsVoidMethod(c.typeName, c.method); got != c.want {
			t.Errorf("IsVoidMethod(%s, %s) = %v, want %v", c.typeName, c.method, got, c.want)
		}
	}
}

func TestProjectOverride(t *testing.T) {
	dir := t.TempDir()
	override := `
#Units: {
	MyCustomUnit: {
		ports: [
			{kind: "controlIn", key: "enter"},
			{kind: "controlOut", key: "exit"},
		]
	}
}
`
	if err := os.WriteFile(filepath.Join(dir, ".uvs_units.cue"), []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(dir)
	if err != nil {
		t.Fatalf("loading with override: %v", err)
	}

	if _, ok := r.Unit("MyCustomUnit"); !ok {
		t.Error("project override unit not merged")
	}
	// Base catalog still intact after unification.
	if _, ok := r.Unit("Equal"); !ok {
		t.Error("base unit lost after merge")
	}
}

func TestNamesSorted(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	names := r.Names()
	if len(names) < 10 {
		t.Fatalf("suspiciously small catalog: %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %q >= %q", names[i-1], names[i])
		}
	}
}
