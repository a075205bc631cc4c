package release

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TillBeemelmanns/keras-cv/internal/core"
	"github.com/TillBeemelmanns/keras-cv/internal/versionfile"
)

func TestOverrides_ApplyNightly_RenamesEveryOccurrence(t *testing.T) {
	dir := t.TempDir()
	versionPath := filepath.Join(dir, "version_utils.py")
	metadataPath := filepath.Join(dir, "setup.py")

	metadata := strings.Join([]string{
		`setup(`,
		`    name="keras-cv",`,
		`)`,
		``,
		`# release tooling greps for name="keras-cv" above`,
		``,
	}, "\n")
	if err := os.WriteFile(versionPath, []byte("__version__ = \"0.9.0\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(metadataPath, []byte(metadata), 0644); err != nil {
		t.Fatal(err)
	}

	fs := core.NewOSFileSystem()
	ctx := context.Background()

	ov, err := captureOverrides(ctx, fs, versionPath, metadataPath)
	if err != nil {
		t.Fatal(err)
	}

	src := versionfile.Source{Path: versionPath, Format: versionfile.FormatRegex}
	if err := ov.applyNightly(ctx, versionfile.NewWriter(fs), src, "0.9.0.dev2024061509", "keras-cv", "keras-cv-nightly"); err != nil {
		t.Fatalf("applyNightly() unexpected error: %v", err)
	}

	patched, err := os.ReadFile(metadataPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(patched), `name="keras-cv",`) {
		t.Errorf("metadata still contains the release package name:\n%s", patched)
	}
	if got := strings.Count(string(patched), `name="keras-cv-nightly"`); got != 2 {
		t.Errorf("expected both name occurrences renamed, got %d:\n%s", got, patched)
	}

	if err := ov.restore(ctx); err != nil {
		t.Fatalf("restore() unexpected error: %v", err)
	}
	restored, err := os.ReadFile(metadataPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(restored) != metadata {
		t.Errorf("metadata not restored:\n%s", restored)
	}
}
