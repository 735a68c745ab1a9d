package validator

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunNoArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(nil, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if stdout.Len() != 0 {
		t.Errorf("usage failure must not write to stdout: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "usage") {
		t.Errorf("stderr missing usage line: %q", stderr.String())
	}
}

func TestRunMissingRefsFlag(t *testing.T) {
	src := writeSource(t, cleanSource)
	var stdout, stderr bytes.Buffer
	if code := Run([]string{src}, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestRunMissingSourceFile(t *testing.T) {
	refDir := unityRefDir(t)
	var stdout, stderr bytes.Buffer
	code := Run([]string{"/no/such/file.cs", "--refs", refDir}, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "source file not found") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunMissingRefDir(t *testing.T) {
	src := writeSource(t, cleanSource)
	var stdout, stderr bytes.Buffer
	code := Run([]string{src, "--refs", "/no/such/dir"}, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestRunCleanFile(t *testing.T) {
	src := writeSource(t, cleanSource)
	refDir := unityRefDir(t)

	var stdout, stderr bytes.Buffer
	code := Run([]string{src, "--refs", refDir}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}
	if got := strings.TrimSpace(stdout.String()); got != "[]" {
		t.Errorf("stdout = %q, want empty JSON array", got)
	}
}

func TestRunEmptyClassAgainstCoreOnly(t *testing.T) {
	src := writeSource(t, `using System;

public class Empty
{
}
`)
	// No catalogs at all: the embedded core set alone must suffice.
	refDir := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := Run([]string{src, "--refs", refDir}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}
	if got := strings.TrimSpace(stdout.String()); got != "[]" {
		t.Errorf("stdout = %q, want empty JSON array", got)
	}
}

func TestRunBrokenFile(t *testing.T) {
	src := writeSource(t, `using UnityEngine;

public class Broken : MonoBehaviour
{
    void Start()
    {
        var widget = new Frobnicator();
    }
}
`)
	refDir := unityRefDir(t)

	var stdout, stderr bytes.Buffer
	code := Run([]string{src, "--refs", refDir}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	out := stdout.String()
	if strings.Count(out, "\n") != 1 {
		t.Errorf("output must be a single line, got %q", out)
	}
	if !strings.Contains(out, `"code":"CS0246"`) {
		t.Errorf("stdout = %q, want a CS0246 entry", out)
	}
	if !strings.Contains(out, `"severity":"Error"`) {
		t.Errorf("stdout = %q, want severity Error", out)
	}
}

func TestRunUnknownFlagsIgnored(t *testing.T) {
	src := writeSource(t, cleanSource)
	refDir := unityRefDir(t)

	var stdout, stderr bytes.Buffer
	code := Run([]string{src, "--refs", refDir, "--future-option"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}
