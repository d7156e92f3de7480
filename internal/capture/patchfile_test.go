package capture

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/patchforge-labs/patchforge/internal/composer"
)

func TestPatchFileName(t *testing.T) {
	id, err := composer.ParseIdentifier("acme/widget")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)

	got := PatchFileName(id, now)
	want := "patch_acme_widget_20240315093045.patch"
	if got != want {
		t.Errorf("PatchFileName = %q, want %q", got, want)
	}
}

func TestWritePatchFile(t *testing.T) {
	root := t.TempDir()

	rel, err := WritePatchFile(root, "patches", "fix.patch", "diff body\n")
	if err != nil {
		t.Fatalf("WritePatchFile error: %v", err)
	}
	if rel != "patches/fix.patch" {
		t.Errorf("relative path = %q, want %q", rel, "patches/fix.patch")
	}

	data, err := os.ReadFile(filepath.Join(root, "patches", "fix.patch"))
	if err != nil {
		t.Fatalf("reading patch file: %v", err)
	}
	if string(data) != "diff body\n" {
		t.Errorf("patch content = %q, want %q", string(data), "diff body\n")
	}
}

func TestWritePatchFile_NestedDir(t *testing.T) {
	root := t.TempDir()

	rel, err := WritePatchFile(root, filepath.Join("build", "patches"), "fix.patch", "x")
	if err != nil {
		t.Fatalf("WritePatchFile error: %v", err)
	}
	if rel != "build/patches/fix.patch" {
		t.Errorf("relative path = %q, want slash-separated %q", rel, "build/patches/fix.patch")
	}
}
