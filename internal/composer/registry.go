package composer

import (
	"fmt"
	"strconv"
)

// BackupSuffix is appended to the manifest path for the pre-mutation copy.
// The backup is left in place after a successful rewrite.
const BackupSuffix = ".bak"

// RegistryError reports a failed patch registration. The manifest has been
// restored from its backup; the patch file on disk is untouched.
type RegistryError struct {
	Path string
	Err  error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("manifest update failed for %s: %v", e.Path, e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// RegisterPatch records a patch file under extra.patches.<vendor/name>.
// The manifest is copied to a .bak sibling before any mutation, rewritten
// via a temporary file and atomic rename, and restored from the backup if
// the structural update or the replace fails. Existing entries for the
// package are extended, never replaced.
func RegisterPatch(manifestPath string, id Identifier, patchPath, description string) error {
	backupPath := manifestPath + BackupSuffix
	if err := copyFile(manifestPath, backupPath); err != nil {
		return &RegistryError{Path: manifestPath, Err: fmt.Errorf("creating backup: %w", err)}
	}

	err := func() error {
		doc, err := LoadDocument(manifestPath)
		if err != nil {
			return err
		}
		if err := addPatchEntry(doc, id, patchPath, description); err != nil {
			return err
		}
		return doc.Save(manifestPath)
	}()
	if err != nil {
		// Put the pre-mutation manifest back verbatim.
		if restoreErr := copyFile(backupPath, manifestPath); restoreErr != nil {
			err = fmt.Errorf("%w (backup restore also failed: %v)", err, restoreErr)
		}
		return &RegistryError{Path: manifestPath, Err: err}
	}
	return nil
}

// addPatchEntry applies the additive update to extra.patches. Entry shapes
// follow the upstream convention: a plain array when no description is
// recorded, an object keyed by description otherwise. Mixing the two
// converts a list to an object with numeric-string keys, matching how PHP
// serializes a mixed array.
func addPatchEntry(doc *Document, id Identifier, patchPath, description string) error {
	extra, err := doc.Root().EnsureObject("extra")
	if err != nil {
		return err
	}
	patches, err := extra.EnsureObject("patches")
	if err != nil {
		return fmt.Errorf("extra.patches: %w", err)
	}

	entry := patches.Member(id.String())
	switch {
	case entry == nil:
		if description == "" {
			list := NewArray()
			list.Append(NewString(patchPath))
			patches.Set(id.String(), list)
		} else {
			obj := NewObject()
			obj.Set(description, NewString(patchPath))
			patches.Set(id.String(), obj)
		}
	case entry.IsArray():
		if description == "" {
			entry.Append(NewString(patchPath))
		} else {
			obj := NewObject()
			for i, item := range entry.Items() {
				obj.Set(strconv.Itoa(i), item)
			}
			obj.Set(description, NewString(patchPath))
			patches.Set(id.String(), obj)
		}
	case entry.IsObject():
		key := description
		if key == "" {
			key = nextNumericKey(entry)
		}
		entry.Set(key, NewString(patchPath))
	default:
		return fmt.Errorf("extra.patches[%q] has an unexpected shape", id.String())
	}
	return nil
}

// nextNumericKey returns the smallest non-negative integer, as a string,
// not already used as a key on the object.
func nextNumericKey(obj *Node) string {
	next := 0
	for _, key := range obj.Keys() {
		if n, err := strconv.Atoi(key); err == nil && n >= next {
			next = n + 1
		}
	}
	return strconv.Itoa(next)
}
