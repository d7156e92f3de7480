//go:build integration

package integration_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	buildOnce sync.Once
	buildPath string
	buildErr  error
)

// binaryPath builds the patchforge binary once per test run and returns its
// location.
func binaryPath(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "patchforge-bin-")
		if err != nil {
			buildErr = err
			return
		}
		buildPath = filepath.Join(dir, "patchforge")

		cmd := exec.Command("go", "build", "-o", buildPath, "github.com/patchforge-labs/patchforge")
		cmd.Env = os.Environ()
		if output, err := cmd.CombinedOutput(); err != nil {
			buildErr = err
			t.Logf("go build output:\n%s", output)
		}
	})
	if buildErr != nil {
		t.Fatalf("building binary: %v", buildErr)
	}
	return buildPath
}

// projectEnv is an isolated Composer project inside a git repository.
type projectEnv struct {
	Root string
}

// setupProject creates a git repository with a composer.json and one
// committed vendor package, vendor/acme/widget.
func setupProject(t *testing.T) *projectEnv {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	root := t.TempDir()
	env := &projectEnv{Root: root}

	writeFile(t, filepath.Join(root, "composer.json"), `{
    "name": "acme/project",
    "require": {
        "acme/widget": "^1.0"
    }
}
`)
	writeFile(t, filepath.Join(root, "vendor", "acme", "widget", "src", "Widget.php"), "<?php\nclass Widget {}\n")

	env.git(t, "init", "-q")
	env.git(t, "config", "user.email", "test@example.com")
	env.git(t, "config", "user.name", "Test")
	env.git(t, "add", ".")
	env.git(t, "commit", "-q", "-m", "initial")

	// Keep user-level settings out of the test.
	t.Setenv("HOME", t.TempDir())
	return env
}

func (e *projectEnv) git(t *testing.T, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = e.Root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, output)
	}
	return string(output)
}

// runTool invokes the built binary in the project root with the given stdin.
func (e *projectEnv) runTool(t *testing.T, stdin string, args ...string) (string, int) {
	t.Helper()

	cmd := exec.Command(binaryPath(t), args...)
	cmd.Dir = e.Root
	cmd.Stdin = strings.NewReader(stdin)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("running %v: %v", args, err)
	}
	return out.String(), code
}

// promptWriter collects output and signals once the confirmation prompt
// has been printed.
type promptWriter struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	seen    chan struct{}
	sigOnce sync.Once
}

func newPromptWriter() *promptWriter {
	return &promptWriter{seen: make(chan struct{})}
}

func (w *promptWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.buf.Write(p)
	if strings.Contains(w.buf.String(), "(y/N)") {
		w.sigOnce.Do(func() { close(w.seen) })
	}
	return n, err
}

func (w *promptWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

// runToolPrompted starts the binary, waits for the confirmation prompt,
// runs during (typically an edit to the staged package), and then answers
// the prompt. The tool stages the package before asking, so edits made
// here land in the worktree only, which is what the diff picks up.
func (e *projectEnv) runToolPrompted(t *testing.T, answer string, during func(), args ...string) (string, int) {
	t.Helper()

	cmd := exec.Command(binaryPath(t), args...)
	cmd.Dir = e.Root
	out := newPromptWriter()
	cmd.Stdout = out
	cmd.Stderr = out
	stdin, err := cmd.StdinPipe()
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("starting %v: %v", args, err)
	}

	select {
	case <-out.seen:
	case <-time.After(30 * time.Second):
		cmd.Process.Kill()
		t.Fatalf("prompt never appeared; output so far:\n%s", out.String())
	}

	if during != nil {
		during()
	}
	if _, err := stdin.Write([]byte(answer)); err != nil {
		t.Fatalf("writing answer: %v", err)
	}
	stdin.Close()

	err = cmd.Wait()
	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("running %v: %v", args, err)
	}
	return out.String(), code
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
