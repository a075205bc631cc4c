// Package tui detects terminal capabilities so interactive prompts,
// spinners, and colored output degrade cleanly in pipes and CI.
package tui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ciEnvs lists environment variables that indicate a CI/CD environment.
var ciEnvs = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"JENKINS_HOME",
	"BUILDKITE",
	"TF_BUILD",
}

// IsInteractive determines if the current environment supports interactive
// prompts. It returns false when stdout is not a terminal (redirected to a
// file, pipe, etc.) or when a CI/CD environment is detected.
func IsInteractive() bool {
	if !IsTTY() {
		return false
	}

	for _, env := range ciEnvs {
		if os.Getenv(env) != "" {
			return false
		}
	}

	return true
}

// IsTTY checks if stdout is a terminal.
// This is a lower-level check than IsInteractive.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // G115: fd is a small value, no overflow risk
}

// SupportsColor reports whether the terminal advertises color support,
// honoring NO_COLOR and related conventions via termenv.
func SupportsColor() bool {
	return termenv.EnvColorProfile() != termenv.Ascii
}
