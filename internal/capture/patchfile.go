package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/patchforge-labs/patchforge/internal/composer"
)

// timestampLayout keeps generated patch names sortable.
const timestampLayout = "20060102150405"

// PatchFileName builds the default patch filename for a package.
func PatchFileName(id composer.Identifier, now time.Time) string {
	return fmt.Sprintf("patch_%s_%s_%s.patch", id.Vendor, id.Name, now.Format(timestampLayout))
}

// WritePatchFile writes the patch body under projectRoot/patchDir, creating
// the directory if needed. It returns the slash-separated project-relative
// path, which is the form recorded in the manifest.
func WritePatchFile(projectRoot, patchDir, fileName, body string) (string, error) {
	absDir := filepath.Join(projectRoot, patchDir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("creating patch directory %s: %w", absDir, err)
	}

	absPath := filepath.Join(absDir, fileName)
	if err := os.WriteFile(absPath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("writing patch file %s: %w", absPath, err)
	}

	return filepath.ToSlash(filepath.Join(patchDir, fileName)), nil
}
