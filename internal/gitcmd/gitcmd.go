package gitcmd

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MinVersion is the oldest git release the capture sequence is exercised
// against.
const MinVersion = "2.3.0"

// Client runs git commands rooted at a working directory.
type Client struct {
	WorkDir string
}

// New returns a client whose commands run inside workDir.
func New(workDir string) *Client {
	return &Client{WorkDir: workDir}
}

// run executes git with the given arguments and returns its combined output.
func (c *Client) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = c.WorkDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w\n%s", strings.Join(args, " "), err, string(output))
	}
	return string(output), nil
}

// ForceAdd stages everything under path, including ignored files, so the
// index snapshots the pre-edit content.
func (c *Client) ForceAdd(path string) error {
	_, err := c.run("add", "-A", "-f", "--", path)
	return err
}

// ModifiedFiles lists files under path whose worktree content differs from
// the index.
func (c *Client) ModifiedFiles(path string) ([]string, error) {
	output, err := c.run("diff", "--name-only", "--", path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// Diff produces a unified diff of the worktree under path against the index.
func (c *Client) Diff(path string) (string, error) {
	return c.run("diff", "--", path)
}

// CheckoutIndex restores the worktree under path from the index.
func (c *Client) CheckoutIndex(path string) error {
	_, err := c.run("checkout", "--", path)
	return err
}

// Unstage resets the index entries under path back to HEAD.
func (c *Client) Unstage(path string) error {
	_, err := c.run("reset", "-q", "--", path)
	return err
}

// IsInsideWorkTree reports whether the client's directory is inside a git
// working tree.
func (c *Client) IsInsideWorkTree() bool {
	output, err := c.run("rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(output) == "true"
}

// Version returns the installed git version string (e.g., "2.39.2").
func (c *Client) Version() (string, error) {
	output, err := c.run("version")
	if err != nil {
		return "", err
	}
	return parseVersionOutput(output)
}

// EnsureAvailable verifies git is on PATH and at least MinVersion.
func (c *Client) EnsureAvailable() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git not found on PATH: %w", err)
	}
	version, err := c.Version()
	if err != nil {
		return err
	}
	current, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("parsing git version %q: %w", version, err)
	}
	floor := semver.MustParse(MinVersion)
	if current.LessThan(floor) {
		return fmt.Errorf("git %s is too old: %s or newer is required", version, MinVersion)
	}
	return nil
}

// parseVersionOutput extracts a semver-shaped version from "git version"
// output. Platform builds append extra dotted segments ("2.39.2.windows.1");
// only the leading three numeric segments are kept.
func parseVersionOutput(output string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) < 3 || fields[0] != "git" || fields[1] != "version" {
		return "", fmt.Errorf("unexpected git version output %q", strings.TrimSpace(output))
	}
	segments := strings.Split(fields[2], ".")
	if len(segments) > 3 {
		segments = segments[:3]
	}
	return strings.Join(segments, "."), nil
}
