// Package clix holds helpers shared by the CLI commands.
package clix

import (
	"fmt"
	"path/filepath"

	"github.com/TillBeemelmanns/keras-cv/internal/config"
	"github.com/urfave/cli/v3"
)

// ExecutionContext carries the resolved project root and configuration for
// a command invocation.
type ExecutionContext struct {
	// Root is the absolute project root directory.
	Root string

	// Config is the loaded (or default) project configuration.
	Config *config.Config
}

// GetExecutionContext resolves the project root and configuration from the
// command's --root and --config flags.
func GetExecutionContext(cmd *cli.Command) (*ExecutionContext, error) {
	root := cmd.String("root")
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
	}

	var cfg *config.Config
	if cfgPath := cmd.String("config"); cfgPath != "" {
		cfg, err = config.Load(cfgPath)
	} else {
		cfg, err = config.LoadFromDir(abs)
	}
	if err != nil {
		return nil, err
	}

	return &ExecutionContext{Root: abs, Config: cfg}, nil
}
