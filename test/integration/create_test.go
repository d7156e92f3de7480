//go:build integration

package integration_test

import (
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreate_EndToEnd(t *testing.T) {
	env := setupProject(t)
	widget := filepath.Join(env.Root, "vendor", "acme", "widget", "src", "Widget.php")

	// The package is staged before the prompt, so the edit happens while
	// the tool is waiting for confirmation.
	output, code := env.runToolPrompted(t, "y\n", func() {
		writeFile(t, widget, "<?php\nclass Widget { public $fixed = true; }\n")
	}, "acme/widget", "-d", "Fix widget")
	if code != 0 {
		t.Fatalf("exit code %d, output:\n%s", code, output)
	}

	// Patch file exists and is vendor-relative.
	matches, err := filepath.Glob(filepath.Join(env.Root, "patches", "patch_acme_widget_*.patch"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one patch file, got %v (%v)", matches, err)
	}
	patch := readFile(t, matches[0])
	if !strings.Contains(patch, "--- a/src/Widget.php") {
		t.Errorf("patch is not vendor-relative:\n%s", patch)
	}
	if !strings.Contains(patch, "+class Widget { public $fixed = true; }") {
		t.Errorf("patch missing the edit:\n%s", patch)
	}

	// Manifest gained the described entry and kept its backup.
	manifest := readFile(t, filepath.Join(env.Root, "composer.json"))
	if !strings.Contains(manifest, `"Fix widget"`) {
		t.Errorf("manifest missing description entry:\n%s", manifest)
	}
	readFile(t, filepath.Join(env.Root, "composer.json.bak"))

	// Worktree restored: the edit is gone from the package.
	if got := readFile(t, widget); !strings.Contains(got, "class Widget {}") {
		t.Errorf("worktree not restored:\n%s", got)
	}

	// Index is clean.
	if staged := strings.TrimSpace(env.git(t, "diff", "--cached", "--name-only")); staged != "" {
		t.Errorf("staged files left behind: %q", staged)
	}
}

func TestCreate_AbortRestores(t *testing.T) {
	env := setupProject(t)
	widget := filepath.Join(env.Root, "vendor", "acme", "widget", "src", "Widget.php")

	output, code := env.runToolPrompted(t, "n\n", func() {
		writeFile(t, widget, "<?php\nclass Widget { public $broken = true; }\n")
	}, "acme/widget")
	if code != 4 {
		t.Fatalf("exit code %d, want 4 (abort); output:\n%s", code, output)
	}

	// No patch file, no manifest change.
	matches, _ := filepath.Glob(filepath.Join(env.Root, "patches", "*.patch"))
	if len(matches) != 0 {
		t.Errorf("patch files created on abort: %v", matches)
	}
	manifest := readFile(t, filepath.Join(env.Root, "composer.json"))
	if strings.Contains(manifest, "patches") {
		t.Errorf("manifest mutated on abort:\n%s", manifest)
	}

	// The user's edit is rolled back together with the staging.
	if got := readFile(t, widget); !strings.Contains(got, "class Widget {}") {
		t.Errorf("worktree not restored on abort:\n%s", got)
	}
}

func TestCreate_EmptyChangeSet(t *testing.T) {
	env := setupProject(t)

	output, code := env.runToolPrompted(t, "y\n", nil, "acme/widget")
	if code != 5 {
		t.Fatalf("exit code %d, want 5 (no changes); output:\n%s", code, output)
	}
	matches, _ := filepath.Glob(filepath.Join(env.Root, "patches", "*.patch"))
	if len(matches) != 0 {
		t.Errorf("patch files created with no changes: %v", matches)
	}
}

func TestCreate_InvalidIdentifier(t *testing.T) {
	env := setupProject(t)

	output, code := env.runTool(t, "", "not-an-identifier")
	if code != 1 {
		t.Fatalf("exit code %d, want 1; output:\n%s", code, output)
	}
	if !strings.Contains(output, "Usage") {
		t.Errorf("expected usage text, got:\n%s", output)
	}
}

func TestCreate_UndeclaredDependency(t *testing.T) {
	env := setupProject(t)

	output, code := env.runTool(t, "", "acme/unknown")
	if code != 2 {
		t.Fatalf("exit code %d, want 2; output:\n%s", code, output)
	}
}

func TestCreate_MissingPackageDirectory(t *testing.T) {
	env := setupProject(t)

	// Declared but not materialized on disk.
	writeFile(t, filepath.Join(env.Root, "composer.json"), `{
    "name": "acme/project",
    "require": {
        "acme/widget": "^1.0",
        "acme/ghost": "^2.0"
    }
}
`)
	env.git(t, "add", "composer.json")
	env.git(t, "commit", "-q", "-m", "declare ghost")

	output, code := env.runTool(t, "", "acme/ghost")
	if code != 3 {
		t.Fatalf("exit code %d, want 3; output:\n%s", code, output)
	}
	if !strings.Contains(output, "vendor/acme/ghost") || !strings.Contains(output, "library") {
		t.Errorf("resolution error should mention attempted path and type:\n%s", output)
	}
}

func TestCreate_InstallerPathRule(t *testing.T) {
	env := setupProject(t)

	writeFile(t, filepath.Join(env.Root, "composer.json"), `{
    "name": "acme/project",
    "require": {
        "acme/widget": "^1.0",
        "drupal/token": "^1.0"
    },
    "extra": {
        "installer-paths": {
            "web/modules/contrib/{$name}": [
                "type:drupal-module"
            ]
        }
    }
}
`)
	writeFile(t, filepath.Join(env.Root, "web", "modules", "contrib", "token", "composer.json"), `{"name": "drupal/token", "type": "drupal-module"}`)
	writeFile(t, filepath.Join(env.Root, "web", "modules", "contrib", "token", "token.module"), "<?php\n// token module\n")
	env.git(t, "add", ".")
	env.git(t, "commit", "-q", "-m", "add token module")

	output, code := env.runToolPrompted(t, "y\n", func() {
		writeFile(t, filepath.Join(env.Root, "web", "modules", "contrib", "token", "token.module"), "<?php\n// patched token module\n")
	}, "drupal/token")
	if code != 0 {
		t.Fatalf("exit code %d, output:\n%s", code, output)
	}
	if !strings.Contains(output, "web/modules/contrib/token") {
		t.Errorf("output should mention the resolved custom path:\n%s", output)
	}

	matches, _ := filepath.Glob(filepath.Join(env.Root, "patches", "patch_drupal_token_*.patch"))
	if len(matches) != 1 {
		t.Fatalf("expected one patch file, got %v", matches)
	}
	patch := readFile(t, matches[0])
	if !strings.Contains(patch, "--- a/token.module") {
		t.Errorf("patch paths not stripped to the package root:\n%s", patch)
	}
}

func TestCreate_ProjectRelativeFlag(t *testing.T) {
	env := setupProject(t)
	widget := filepath.Join(env.Root, "vendor", "acme", "widget", "src", "Widget.php")

	output, code := env.runToolPrompted(t, "y\n", func() {
		writeFile(t, widget, "<?php\nclass Widget { public $fixed = true; }\n")
	}, "acme/widget", "--project-relative")
	if code != 0 {
		t.Fatalf("exit code %d, output:\n%s", code, output)
	}

	matches, _ := filepath.Glob(filepath.Join(env.Root, "patches", "*.patch"))
	if len(matches) != 1 {
		t.Fatalf("expected one patch file, got %v", matches)
	}
	patch := readFile(t, matches[0])
	if !strings.Contains(patch, "--- a/vendor/acme/widget/src/Widget.php") {
		t.Errorf("project-relative patch should keep full paths:\n%s", patch)
	}
}

func TestDoctor_CleanProject(t *testing.T) {
	env := setupProject(t)

	output, code := env.runTool(t, "", "doctor")
	if code != 0 {
		t.Fatalf("exit code %d, output:\n%s", code, output)
	}
	for _, want := range []string{"[ OK ] git", "composer.json is valid", "inside a git working tree"} {
		if !strings.Contains(output, want) {
			t.Errorf("doctor output missing %q:\n%s", want, output)
		}
	}
}

func TestVersion(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	env := &projectEnv{Root: t.TempDir()}

	output, code := env.runTool(t, "", "version", "--short")
	if code != 0 {
		t.Fatalf("exit code %d, output:\n%s", code, output)
	}
	if strings.TrimSpace(output) == "" {
		t.Error("version --short printed nothing")
	}
}
