package extensionmgr

import (
	"fmt"
	"regexp"
	"strings"
)

// GitErrorInfo explains a failed clone in user terms.
type GitErrorInfo struct {
	Category    string
	Message     string
	Suggestions []string
}

type gitErrorPattern struct {
	pattern *regexp.Regexp
	info    GitErrorInfo
}

// First match wins, so specific patterns precede general ones.
var gitErrorPatterns = []gitErrorPattern{
	{
		pattern: regexp.MustCompile(`(?i)fatal: repository .* not found`),
		info: GitErrorInfo{"repository_not_found", "Repository not found", []string{
			"Check the repository URL",
			"Private repositories need configured git credentials",
		}},
	},
	{
		pattern: regexp.MustCompile(`(?i)SSL certificate problem|certificate verify failed`),
		info: GitErrorInfo{"ssl_error", "TLS certificate verification failed", []string{
			"Update the system CA certificates",
			"Check whether a proxy intercepts TLS traffic",
		}},
	},
	{
		pattern: regexp.MustCompile(`(?i)remote branch .* not found|couldn't find remote ref`),
		info: GitErrorInfo{"ref_not_found", "Branch or tag not found", []string{
			"Check the @ref suffix of the source URL",
			"List available refs with: git ls-remote <url>",
		}},
	},
	{
		pattern: regexp.MustCompile(`(?i)Authentication failed|could not read (Username|Password)`),
		info: GitErrorInfo{"auth_required", "Authentication required", []string{
			"Configure git credentials for this host",
		}},
	},
	{
		pattern: regexp.MustCompile(`(?i)Could not resolve host|Temporary failure in name resolution`),
		info: GitErrorInfo{"dns_error", "Could not resolve the repository host", []string{
			"Check the host name and your network connection",
		}},
	},
	{
		pattern: regexp.MustCompile(`(?i)Connection timed out|unable to connect|unable to access`),
		info: GitErrorInfo{"network_error", "Repository host unreachable", []string{
			"Check your network connection",
			"Check whether a proxy or firewall blocks access",
		}},
	},
}

// parseGitError matches git output against known failures; nil if none match.
func parseGitError(gitOutput string) *GitErrorInfo {
	for _, p := range gitErrorPatterns {
		if p.pattern.MatchString(gitOutput) {
			info := p.info
			return &info
		}
	}
	return nil
}

// FormatGitError turns a failed clone into a GitCloneError when the output
// is recognised, and into a plain error carrying the output otherwise.
func FormatGitError(err error, gitOutput string, repo *RepoURL) error {
	if err == nil {
		return nil
	}
	if info := parseGitError(gitOutput); info != nil {
		return &GitCloneError{Repo: repo, Info: info, Output: gitOutput, Err: err}
	}
	return fmt.Errorf("git clone failed: %w\noutput: %s", err, gitOutput)
}

// GitCloneError is a recognised clone failure.
type GitCloneError struct {
	Repo   *RepoURL
	Info   *GitErrorInfo
	Output string
	Err    error
}

func (e *GitCloneError) Error() string {
	repo := e.Repo.String()
	if e.Repo.Subdir != "" {
		repo += " (subdirectory: " + e.Repo.Subdir + ")"
	}
	return fmt.Sprintf("failed to clone %s: %s", repo, e.Info.Message)
}

// Unwrap returns the exec error.
func (e *GitCloneError) Unwrap() error { return e.Err }

// Suggestion lists what the user can try.
func (e *GitCloneError) Suggestion() string {
	var sb strings.Builder
	for _, s := range e.Info.Suggestions {
		fmt.Fprintf(&sb, "  - %s\n", s)
	}
	return sb.String()
}
