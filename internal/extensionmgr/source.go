package extensionmgr

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/indaco/kiln/internal/core"
)

// RepoURL is a parsed git source: host/owner/repo[/subdir][@ref].
type RepoURL struct {
	Host   string
	Owner  string
	Repo   string
	Subdir string // optional directory holding the manifest
	Ref    string // optional branch or tag
	Raw    string
}

// ParseRepoURL parses an http(s) or scheme-less repository URL.
func ParseRepoURL(urlStr string) (*RepoURL, error) {
	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return nil, fmt.Errorf("empty URL")
	}
	if !strings.HasPrefix(urlStr, "http://") && !strings.HasPrefix(urlStr, "https://") {
		urlStr = "https://" + urlStr
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: missing host")
	}

	path := strings.Trim(parsed.Path, "/")
	var ref string
	if i := strings.LastIndex(path, "@"); i >= 0 {
		ref = path[i+1:]
		path = strings.TrimSuffix(path[:i], "/")
		if ref == "" {
			return nil, fmt.Errorf("invalid URL: empty ref after '@'")
		}
	}

	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid repository URL format: expected owner/repo")
	}

	return &RepoURL{
		Host:   parsed.Host,
		Owner:  parts[0],
		Repo:   strings.TrimSuffix(parts[1], ".git"),
		Subdir: strings.Join(parts[2:], "/"),
		Ref:    ref,
		Raw:    urlStr,
	}, nil
}

// CloneURL returns the HTTPS clone URL.
func (r *RepoURL) CloneURL() string {
	return fmt.Sprintf("https://%s/%s/%s.git", r.Host, r.Owner, r.Repo)
}

// String returns owner/repo, with the ref when set.
func (r *RepoURL) String() string {
	s := r.Owner + "/" + r.Repo
	if r.Ref != "" {
		s += "@" + r.Ref
	}
	return s
}

// IsURL reports whether str should be treated as a git source rather than
// a local directory.
func IsURL(str string) bool {
	str = strings.TrimSpace(str)
	if strings.HasPrefix(str, "http://") || strings.HasPrefix(str, "https://") {
		return true
	}
	if strings.Contains(str, "github.com/") || strings.Contains(str, "gitlab.com/") {
		return len(strings.Split(str, "/")) >= 3
	}
	return false
}

// CloneRepository shallow-clones repo into a new temporary directory and
// returns it. The caller removes the directory.
func CloneRepository(ctx context.Context, repo *RepoURL) (string, error) {
	tempDir, err := os.MkdirTemp("", "kiln-src-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, core.TimeoutGit)
	defer cancel()

	args := []string{"clone", "--depth", "1"}
	if repo.Ref != "" {
		args = append(args, "--branch", repo.Ref)
	}
	args = append(args, repo.CloneURL(), tempDir)

	output, err := exec.CommandContext(ctx, "git", args...).CombinedOutput()
	if err != nil {
		_ = os.RemoveAll(tempDir)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("git clone timeout after %v: %w", core.TimeoutGit, err)
		}
		return "", FormatGitError(err, string(output), repo)
	}
	return tempDir, nil
}

// ValidateGitAvailable checks that a git binary can be run.
func ValidateGitAvailable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, core.TimeoutShort)
	defer cancel()

	if err := exec.CommandContext(ctx, "git", "--version").Run(); err != nil {
		return fmt.Errorf("git is not available: %w (required to install from a URL)", err)
	}
	return nil
}

// sourceDir returns the directory inside a clone that holds the manifest.
func sourceDir(cloneDir string, repo *RepoURL) (string, error) {
	if repo.Subdir == "" {
		return cloneDir, nil
	}
	dir := filepath.Join(cloneDir, filepath.FromSlash(repo.Subdir))
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("subdirectory %q not found in repository %s", repo.Subdir, repo)
		}
		return "", fmt.Errorf("failed to access subdirectory %q: %w", repo.Subdir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%q in repository %s is not a directory", repo.Subdir, repo)
	}
	return dir, nil
}
