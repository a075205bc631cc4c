package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newProjectLayout(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "keras_cv", "src"), 0755); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestRunCLI_Resolve(t *testing.T) {
	root := newProjectLayout(t)
	target := filepath.Join(root, "keras_cv", "src", "ops", "custom_ops.so")
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := runCLI([]string{"kcv", "--root", root, "resolve", "ops/custom_ops.so"}); err != nil {
		t.Fatalf("runCLI resolve failed: %v", err)
	}
}

func TestRunCLI_Resolve_NotFound(t *testing.T) {
	root := newProjectLayout(t)

	err := runCLI([]string{"kcv", "--root", root, "resolve", "ops/missing.so"})
	if err == nil {
		t.Fatal("expected error for missing resource, got nil")
	}
	if !strings.Contains(err.Error(), "looked in") {
		t.Errorf("error should enumerate attempted paths: %v", err)
	}
	if !strings.Contains(err.Error(), filepath.Join(root, "keras_cv", "src", "ops", "missing.so")) {
		t.Errorf("error should contain the source-root candidate: %v", err)
	}
}

func TestRunCLI_Resolve_MissingArgument(t *testing.T) {
	root := newProjectLayout(t)

	err := runCLI([]string{"kcv", "--root", root, "resolve"})
	if err == nil {
		t.Fatal("expected error for missing argument, got nil")
	}
	if !strings.Contains(err.Error(), "relative-path") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunCLI_Resolve_OverrideRoot(t *testing.T) {
	root := newProjectLayout(t)
	override := t.TempDir()
	target := filepath.Join(override, "ops", "custom_ops.so")
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KERAS_CV_DATA_ROOT", override)

	if err := runCLI([]string{"kcv", "--root", root, "resolve", "ops/custom_ops.so"}); err != nil {
		t.Fatalf("runCLI resolve with override failed: %v", err)
	}
}

func TestRunCLI_InvalidConfig(t *testing.T) {
	root := newProjectLayout(t)
	if err := os.WriteFile(filepath.Join(root, ".kcv.yaml"), []byte("version-format: xml\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := runCLI([]string{"kcv", "--root", root, "resolve", "ops/custom_ops.so"})
	if err == nil {
		t.Fatal("expected error for invalid config, got nil")
	}
	if !strings.Contains(err.Error(), "version-format") {
		t.Errorf("unexpected error: %v", err)
	}
}
