// Package release builds distributable wheels for the package: it stamps
// nightly versions, drives the configure/bazel/packaging toolchain, and
// collects the produced wheel into the distribution directory. The version
// and metadata files mutated for a nightly build are restored on every exit
// path.
package release

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/TillBeemelmanns/keras-cv/internal/config"
	"github.com/TillBeemelmanns/keras-cv/internal/core"
	"github.com/TillBeemelmanns/keras-cv/internal/pyver"
	"github.com/TillBeemelmanns/keras-cv/internal/versionfile"
)

// customOpsEnv enables native-op compilation in the packaging step.
const customOpsEnv = "BUILD_WITH_CUSTOM_OPS=true"

// Builder orchestrates a release build.
type Builder struct {
	fs     core.FileSystem
	runner CommandRunner
	cfg    *config.Config

	// nowFn is swappable for tests.
	nowFn func() time.Time
}

// NewBuilder creates a Builder. A nil cfg uses the default layout.
func NewBuilder(fs core.FileSystem, runner CommandRunner, cfg *config.Config) *Builder {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Builder{
		fs:     fs,
		runner: runner,
		cfg:    cfg,
		nowFn:  time.Now,
	}
}

// versionSource describes the configured version declaration.
func (b *Builder) versionSource(root string) versionfile.Source {
	return versionfile.Source{
		Path:    filepath.Join(root, b.cfg.VersionFile),
		Format:  versionfile.ParseFormat(b.cfg.VersionFormat),
		Field:   b.cfg.VersionField,
		Pattern: b.cfg.VersionPattern,
	}
}

// Build runs a release build rooted at root and returns the absolute path
// of the wheel copied into the distribution directory.
//
// For a nightly build the version file and metadata file are rewritten
// before the toolchain runs and restored afterwards regardless of the
// outcome; the build commands observe the nightly version while the tree
// ends up byte-identical to its pre-build state.
func (b *Builder) Build(ctx context.Context, root string, nightly bool) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %q: %w", root, err)
	}

	wheelsPath := filepath.Join(root, b.cfg.WheelsDir)
	if err := b.fs.MkdirAll(ctx, wheelsPath, core.PermDir); err != nil {
		return "", fmt.Errorf("failed to create wheels directory %q: %w", wheelsPath, err)
	}

	src := b.versionSource(root)
	metadataPath := filepath.Join(root, b.cfg.MetadataFile)

	ov, err := captureOverrides(ctx, b.fs, src.Path, metadataPath)
	if err != nil {
		return "", err
	}

	current, err := versionfile.NewReader(b.fs).Read(ctx, src)
	if err != nil {
		return "", err
	}
	version, err := pyver.Parse(current)
	if err != nil {
		return "", fmt.Errorf("unable to parse version from %q: %w", src.Path, err)
	}

	target := version
	if nightly {
		target = version.Nightly(b.nowFn())
	}

	if err := b.runGuarded(ctx, ov, src, root, target, nightly); err != nil {
		return "", err
	}

	wheel, err := selectWheel(wheelsPath, target.String())
	if err != nil {
		return "", err
	}
	if wheel == "" {
		return "", fmt.Errorf("build failed: no wheel found in %q", wheelsPath)
	}

	distPath := filepath.Join(root, b.cfg.DistDir)
	if err := b.fs.MkdirAll(ctx, distPath, core.PermDir); err != nil {
		return "", fmt.Errorf("failed to create dist directory %q: %w", distPath, err)
	}

	dst, err := copyWheel(wheel, distPath)
	if err != nil {
		return "", err
	}
	return filepath.Abs(dst)
}

// runGuarded applies the nightly overrides, runs the toolchain, and
// restores the mutated files. The deferred restore runs on success, on a
// failing build step, and on a panic.
func (b *Builder) runGuarded(ctx context.Context, ov *overrides, src versionfile.Source, root string, target pyver.Version, nightly bool) (err error) {
	defer func() {
		if rerr := ov.restore(ctx); rerr != nil && err == nil {
			err = fmt.Errorf("failed to restore build files: %w", rerr)
		}
	}()

	if nightly {
		writer := versionfile.NewWriter(b.fs)
		if aerr := ov.applyNightly(ctx, writer, src, target.String(), b.cfg.PackageName, b.cfg.NightlyPackageName()); aerr != nil {
			return aerr
		}
	}

	return b.runToolchain(ctx, root)
}

// runToolchain executes the configure, build, and packaging steps in order,
// aborting on the first failure.
func (b *Builder) runToolchain(ctx context.Context, root string) error {
	steps := []Command{
		{
			Name: "python3",
			Args: []string{filepath.Join("build_deps", "configure.py")},
			Dir:  root,
		},
		{
			Name: "bazel",
			Args: []string{"build", "build_pip_pkg"},
			Dir:  root,
		},
		{
			Name: filepath.Join(root, "bazel-bin", "build_pip_pkg"),
			Args: []string{b.cfg.WheelsDir},
			Dir:  root,
			Env:  []string{customOpsEnv},
		},
	}

	for _, step := range steps {
		if err := b.runner.Run(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

// Install installs the wheel at wheelPath via pip, forcing a reinstall
// without dependency resolution. It is a separate operation from Build.
func (b *Builder) Install(ctx context.Context, wheelPath string) error {
	return b.runner.Run(ctx, Command{
		Name: "pip3",
		Args: []string{"install", "--force-reinstall", "--no-dependencies", wheelPath},
	})
}
