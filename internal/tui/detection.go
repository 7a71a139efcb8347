package tui

import (
	"os"

	"golang.org/x/term"
)

// noPromptEnv disables every prompt when set to a non-empty value.
const noPromptEnv = "KILN_NO_PROMPT"

// ciEnvVars are set by CI providers; any of them disables prompts.
var ciEnvVars = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"JENKINS_HOME",
	"BUILDKITE",
	"BITBUCKET_BUILD_NUMBER",
	"DRONE",
	"TF_BUILD",
}

// isTerminalFn is replaced in tests.
var isTerminalFn = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd is a small value, no overflow risk
}

// IsInteractive reports whether kiln may prompt: stdin and stdout must both
// be terminals, KILN_NO_PROMPT must be unset and no CI provider detected.
func IsInteractive() bool {
	if !isTerminalFn(os.Stdin) || !isTerminalFn(os.Stdout) {
		return false
	}
	if os.Getenv(noPromptEnv) != "" {
		return false
	}
	for _, env := range ciEnvVars {
		if os.Getenv(env) != "" {
			return false
		}
	}
	return true
}
