package main

import (
	"context"
	"os"

	"github.com/TillBeemelmanns/keras-cv/internal/cli"
	"github.com/TillBeemelmanns/keras-cv/internal/printer"
	"github.com/TillBeemelmanns/keras-cv/internal/release"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		printer.PrintError(err.Error())
		// Subprocess failures surface their own exit code.
		os.Exit(release.ExitCode(err))
	}
}

func runCLI(args []string) error {
	return cli.New().Run(context.Background(), args)
}
