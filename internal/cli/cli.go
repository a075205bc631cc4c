// Package cli wires the kcv root command and its subcommands.
package cli

import (
	"context"

	"github.com/TillBeemelmanns/keras-cv/internal/commands/build"
	"github.com/TillBeemelmanns/keras-cv/internal/commands/resolve"
	"github.com/TillBeemelmanns/keras-cv/internal/config"
	"github.com/TillBeemelmanns/keras-cv/internal/printer"
	"github.com/TillBeemelmanns/keras-cv/internal/tui"
	urfavecli "github.com/urfave/cli/v3"
)

var noColorFlag bool

// New builds and returns the root CLI command,
// configuring all subcommands and flags for the kcv cli.
func New() *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "kcv",
		Usage:                 "Wheel build tooling and native-op resource resolution for keras-cv",
		EnableShellCompletion: true,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory",
				Value:   ".",
			},
			&urfavecli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to the configuration file",
				DefaultText: config.DefaultFileName,
			},
			&urfavecli.BoolFlag{
				Name:        "no-color",
				Usage:       "Disable colored output",
				Destination: &noColorFlag,
			},
		},
		Before: func(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
			printer.SetNoColor(noColorFlag || !tui.SupportsColor())
			return ctx, nil
		},
		Commands: []*urfavecli.Command{
			build.Run(),
			resolve.Run(),
		},
	}
}
