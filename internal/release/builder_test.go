package release

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/TillBeemelmanns/keras-cv/internal/config"
	"github.com/TillBeemelmanns/keras-cv/internal/core"
)

const (
	testVersionContent = "\"\"\"Version utilities.\"\"\"\n\n__version__ = \"0.9.0\"\n"
	testSetupContent   = "from setuptools import setup\n\nsetup(\n    name=\"keras-cv\",\n    packages=[\"keras_cv\"],\n)\n"
)

// scriptedRunner records every command and delegates to fn when set.
type scriptedRunner struct {
	commands []Command
	fn       func(cmd Command) error
}

func (r *scriptedRunner) Run(ctx context.Context, cmd Command) error {
	r.commands = append(r.commands, cmd)
	if r.fn != nil {
		return r.fn(cmd)
	}
	return nil
}

// newProject lays out a minimal package tree in a temp dir.
func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	versionPath := filepath.Join(root, "keras_cv", "src", "version_utils.py")
	if err := os.MkdirAll(filepath.Dir(versionPath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(versionPath, []byte(testVersionContent), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "setup.py"), []byte(testSetupContent), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

// isPackagingStep reports whether cmd is the bazel-bin/build_pip_pkg step.
func isPackagingStep(cmd Command) bool {
	return strings.Contains(cmd.Name, "build_pip_pkg")
}

// dropWheel simulates the packaging step by writing a wheel into the
// wheels directory, named from the version currently in the version file.
func dropWheel(t *testing.T, root string) func(cmd Command) error {
	t.Helper()
	return func(cmd Command) error {
		if !isPackagingStep(cmd) {
			return nil
		}
		data, err := os.ReadFile(filepath.Join(root, "keras_cv", "src", "version_utils.py"))
		if err != nil {
			return err
		}
		version := strings.TrimSuffix(strings.Split(string(data), `__version__ = "`)[1], "\"\n")
		name := "keras_cv-" + version + "-py3-none-any.whl"
		return os.WriteFile(filepath.Join(root, "wheels", name), []byte("wheel"), 0644)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestBuilder_Build(t *testing.T) {
	root := newProject(t)
	runner := &scriptedRunner{}
	runner.fn = dropWheel(t, root)

	b := NewBuilder(core.NewOSFileSystem(), runner, nil)
	got, err := b.Build(context.Background(), root, false)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	want := filepath.Join(root, "dist", "keras_cv-0.9.0-py3-none-any.whl")
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("dist wheel not created: %v", err)
	}

	if len(runner.commands) != 3 {
		t.Fatalf("expected 3 toolchain commands, got %d: %v", len(runner.commands), runner.commands)
	}
	if runner.commands[0].Name != "python3" || runner.commands[0].Args[0] != filepath.Join("build_deps", "configure.py") {
		t.Errorf("unexpected configure step: %v", runner.commands[0])
	}
	if runner.commands[1].Name != "bazel" || !slices.Equal(runner.commands[1].Args, []string{"build", "build_pip_pkg"}) {
		t.Errorf("unexpected bazel step: %v", runner.commands[1])
	}
	packaging := runner.commands[2]
	if packaging.Name != filepath.Join(root, "bazel-bin", "build_pip_pkg") {
		t.Errorf("unexpected packaging command: %q", packaging.Name)
	}
	if !slices.Contains(packaging.Env, "BUILD_WITH_CUSTOM_OPS=true") {
		t.Errorf("packaging step missing custom-ops env toggle: %v", packaging.Env)
	}
	for _, cmd := range runner.commands {
		if cmd.Dir != root {
			t.Errorf("command %q ran in %q, want %q", cmd.Name, cmd.Dir, root)
		}
	}
}

func TestBuilder_Build_Nightly(t *testing.T) {
	root := newProject(t)

	var observedVersion, observedSetup string
	runner := &scriptedRunner{}
	drop := dropWheel(t, root)
	runner.fn = func(cmd Command) error {
		if cmd.Name == "bazel" {
			observedVersion = readFile(t, filepath.Join(root, "keras_cv", "src", "version_utils.py"))
			observedSetup = readFile(t, filepath.Join(root, "setup.py"))
		}
		return drop(cmd)
	}

	b := NewBuilder(core.NewOSFileSystem(), runner, nil)
	b.nowFn = func() time.Time {
		return time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	}

	got, err := b.Build(context.Background(), root, true)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	// The toolchain observed the stamped version and the renamed package.
	if !strings.Contains(observedVersion, `__version__ = "0.9.0.dev2024061509"`) {
		t.Errorf("toolchain observed version file:\n%s", observedVersion)
	}
	if !strings.Contains(observedSetup, `name="keras-cv-nightly"`) {
		t.Errorf("toolchain observed setup file:\n%s", observedSetup)
	}

	// Both files are byte-identical to their pre-build contents.
	if got := readFile(t, filepath.Join(root, "keras_cv", "src", "version_utils.py")); got != testVersionContent {
		t.Errorf("version file not restored:\n%s", got)
	}
	if got := readFile(t, filepath.Join(root, "setup.py")); got != testSetupContent {
		t.Errorf("setup file not restored:\n%s", got)
	}

	if want := "keras_cv-0.9.0.dev2024061509-py3-none-any.whl"; filepath.Base(got) != want {
		t.Errorf("Build() wheel = %q, want %q", filepath.Base(got), want)
	}
}

func TestBuilder_Build_FailureRestoresFiles(t *testing.T) {
	root := newProject(t)

	runner := &scriptedRunner{}
	runner.fn = func(cmd Command) error {
		if cmd.Name == "bazel" {
			return &ExitError{Cmd: cmd.String(), Code: 42}
		}
		return nil
	}

	b := NewBuilder(core.NewOSFileSystem(), runner, nil)
	_, err := b.Build(context.Background(), root, true)
	if err == nil {
		t.Fatal("expected error from failing bazel step, got nil")
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %T: %v", err, err)
	}
	if exitErr.Code != 42 {
		t.Errorf("ExitError.Code = %d, want 42", exitErr.Code)
	}
	if ExitCode(err) != 42 {
		t.Errorf("ExitCode() = %d, want 42", ExitCode(err))
	}

	// The sequence aborted before the packaging step.
	if len(runner.commands) != 2 {
		t.Errorf("expected 2 commands before abort, got %d", len(runner.commands))
	}

	// Files are restored even though the build failed.
	if got := readFile(t, filepath.Join(root, "keras_cv", "src", "version_utils.py")); got != testVersionContent {
		t.Errorf("version file not restored after failure:\n%s", got)
	}
	if got := readFile(t, filepath.Join(root, "setup.py")); got != testSetupContent {
		t.Errorf("setup file not restored after failure:\n%s", got)
	}
}

func TestBuilder_Build_UnparsableVersion(t *testing.T) {
	root := newProject(t)
	versionPath := filepath.Join(root, "keras_cv", "src", "version_utils.py")
	if err := os.WriteFile(versionPath, []byte("__version__ = \"not-a-version\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := &scriptedRunner{}
	b := NewBuilder(core.NewOSFileSystem(), runner, nil)

	_, err := b.Build(context.Background(), root, false)
	if err == nil {
		t.Fatal("expected error for unparsable version, got nil")
	}
	if len(runner.commands) != 0 {
		t.Errorf("no toolchain command should run before version parsing, got %v", runner.commands)
	}
}

func TestBuilder_Build_PreReleaseVersion(t *testing.T) {
	root := newProject(t)
	versionPath := filepath.Join(root, "keras_cv", "src", "version_utils.py")
	if err := os.WriteFile(versionPath, []byte("__version__ = \"0.9.0rc1\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := &scriptedRunner{}
	runner.fn = dropWheel(t, root)

	b := NewBuilder(core.NewOSFileSystem(), runner, nil)
	got, err := b.Build(context.Background(), root, false)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	if want := "keras_cv-0.9.0rc1-py3-none-any.whl"; filepath.Base(got) != want {
		t.Errorf("Build() wheel = %q, want %q", filepath.Base(got), want)
	}
}

func TestBuilder_Build_NoWheelProduced(t *testing.T) {
	root := newProject(t)
	runner := &scriptedRunner{} // all steps succeed but produce nothing

	b := NewBuilder(core.NewOSFileSystem(), runner, nil)
	_, err := b.Build(context.Background(), root, false)
	if err == nil {
		t.Fatal("expected error when no wheel is produced, got nil")
	}
	if !strings.Contains(err.Error(), "no wheel found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBuilder_Build_CustomConfig(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte("[project]\nname = \"mypkg\"\nversion = \"1.2.3\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "setup.py"), []byte("setup(name=\"mypkg\")\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		PackageName:   "mypkg",
		ImportName:    "mypkg",
		VersionFile:   "pyproject.toml",
		VersionFormat: "toml",
		VersionField:  "project.version",
		MetadataFile:  "setup.py",
		WheelsDir:     "out",
		DistDir:       "release",
		NightlySuffix: "-nightly",
	}

	runner := &scriptedRunner{}
	runner.fn = func(cmd Command) error {
		if !isPackagingStep(cmd) {
			return nil
		}
		return os.WriteFile(filepath.Join(root, "out", "mypkg-1.2.3-py3-none-any.whl"), []byte("wheel"), 0644)
	}

	b := NewBuilder(core.NewOSFileSystem(), runner, cfg)
	got, err := b.Build(context.Background(), root, false)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	want := filepath.Join(root, "release", "mypkg-1.2.3-py3-none-any.whl")
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestBuilder_Install(t *testing.T) {
	runner := &scriptedRunner{}
	b := NewBuilder(core.NewOSFileSystem(), runner, nil)

	wheel := "/tmp/dist/keras_cv-0.9.0-py3-none-any.whl"
	if err := b.Install(context.Background(), wheel); err != nil {
		t.Fatalf("Install() unexpected error: %v", err)
	}

	if len(runner.commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(runner.commands))
	}
	want := []string{"install", "--force-reinstall", "--no-dependencies", wheel}
	if runner.commands[0].Name != "pip3" || !slices.Equal(runner.commands[0].Args, want) {
		t.Errorf("unexpected install command: %v", runner.commands[0])
	}
}
