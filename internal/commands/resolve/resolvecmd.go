// Package resolve implements the "kcv resolve" command: it locates a
// native-op resource across the supported filesystem layouts and prints its
// absolute path.
package resolve

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/TillBeemelmanns/keras-cv/internal/clix"
	"github.com/TillBeemelmanns/keras-cv/internal/resource"
	"github.com/urfave/cli/v3"
)

// Run returns the "resolve" command.
func Run() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve a native-op resource to an absolute path",
		UsageText: "kcv resolve <relative-path>",
		Description: "Searches the override root (" + resource.OverrideRootEnv + "), the package\n" +
			"source tree, and the bazel-bin output directory, in that order.",
		Action: runResolveCmd,
	}
}

func runResolveCmd(ctx context.Context, cmd *cli.Command) error {
	rel := cmd.Args().First()
	if rel == "" {
		return fmt.Errorf("missing required argument: <relative-path>")
	}

	execCtx, err := clix.GetExecutionContext(cmd)
	if err != nil {
		return err
	}

	sourceRoot := filepath.Join(execCtx.Root, execCtx.Config.ImportName, "src")
	locator := resource.NewLocator(sourceRoot)

	path, err := locator.Resolve(rel)
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}
