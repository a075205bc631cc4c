// Package build implements the "kcv build" command: it drives a release
// build and optionally installs the produced wheel.
package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TillBeemelmanns/keras-cv/internal/clix"
	"github.com/TillBeemelmanns/keras-cv/internal/core"
	"github.com/TillBeemelmanns/keras-cv/internal/printer"
	"github.com/TillBeemelmanns/keras-cv/internal/release"
	"github.com/TillBeemelmanns/keras-cv/internal/tui"
	"github.com/charmbracelet/huh/spinner"
	"github.com/urfave/cli/v3"
)

// Run returns the "build" command.
func Run() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Build a distributable wheel",
		UsageText: "kcv build [--nightly] [--install] [--yes]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "nightly",
				Usage: "Stamp a nightly version and package name for this build",
			},
			&cli.BoolFlag{
				Name:  "install",
				Usage: "Install the generated wheel after a successful build",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the install confirmation prompt",
			},
		},
		Action: runBuildCmd,
	}
}

// isInteractiveFn is swappable for tests.
var isInteractiveFn = tui.IsInteractive

func runBuildCmd(ctx context.Context, cmd *cli.Command) error {
	execCtx, err := clix.GetExecutionContext(cmd)
	if err != nil {
		return err
	}

	fs := core.NewOSFileSystem()
	nightly := cmd.Bool("nightly")

	wheel, err := runBuild(ctx, fs, execCtx, nightly)
	if err != nil {
		return err
	}

	printer.PrintSuccess("Build successful. Wheel available at " + wheel)

	if !cmd.Bool("install") {
		return nil
	}

	installer := release.NewBuilder(fs, release.NewExecRunner(), execCtx.Config)
	return installWheel(ctx, installer, wheel, cmd.Bool("yes"))
}

// wheelInstaller is the slice of release.Builder the install phase needs.
type wheelInstaller interface {
	Install(ctx context.Context, wheelPath string) error
}

// installWheel installs the built wheel, asking for confirmation first in
// interactive sessions unless assumeYes is set.
func installWheel(ctx context.Context, installer wheelInstaller, wheel string, assumeYes bool) error {
	if !assumeYes && isInteractiveFn() {
		ok, err := defaultPrompter.Confirm(
			fmt.Sprintf("Install %s?", filepath.Base(wheel)),
			"Runs pip with --force-reinstall --no-dependencies.",
		)
		if err != nil {
			return err
		}
		if !ok {
			printer.PrintFaint("Skipping install.")
			return nil
		}
	}

	if err := installer.Install(ctx, wheel); err != nil {
		return err
	}
	printer.PrintSuccess("Installed " + filepath.Base(wheel))
	return nil
}

// runBuild executes the release build. In interactive sessions the
// toolchain output is buffered behind a spinner and replayed only when a
// step fails; otherwise it streams straight to the terminal.
func runBuild(ctx context.Context, fs core.FileSystem, execCtx *clix.ExecutionContext, nightly bool) (string, error) {
	if !isInteractiveFn() {
		builder := release.NewBuilder(fs, release.NewExecRunner(), execCtx.Config)
		return builder.Build(ctx, execCtx.Root, nightly)
	}

	var out bytes.Buffer
	builder := release.NewBuilder(fs, release.NewExecRunnerWithIO(&out, &out), execCtx.Config)

	var wheel string
	err := spinner.New().
		Title(fmt.Sprintf("Building %s wheel...", execCtx.Config.PackageName)).
		Context(ctx).
		ActionWithErr(func(ctx context.Context) error {
			var buildErr error
			wheel, buildErr = builder.Build(ctx, execCtx.Root, nightly)
			return buildErr
		}).
		Run()
	if err != nil {
		// Replay the captured toolchain output for diagnosis.
		_, _ = os.Stdout.Write(out.Bytes())
		return "", err
	}
	return wheel, nil
}
