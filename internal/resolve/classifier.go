package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/patchforge-labs/patchforge/internal/composer"
)

// DefaultType is Composer's implicit package type.
const DefaultType = "library"

// inferenceRule maps an identifier pattern to a package type. Rules are
// evaluated in order; the first match wins.
type inferenceRule struct {
	name    string
	matches func(composer.Identifier) bool
	result  string
}

// inferenceRules encodes the naming conventions used when a package has no
// on-disk manifest to read. Order matters: drupal/core must be recognized
// before the generic drupal namespace, and theme names before modules.
var inferenceRules = []inferenceRule{
	{
		name: "drupal core",
		matches: func(id composer.Identifier) bool {
			return id.Vendor == "drupal" && id.Name == "core"
		},
		result: "drupal-core",
	},
	{
		name: "drupal theme",
		matches: func(id composer.Identifier) bool {
			return id.Vendor == "drupal" && strings.Contains(id.Name, "theme")
		},
		result: "drupal-theme",
	},
	{
		name: "drupal namespace",
		matches: func(id composer.Identifier) bool {
			return id.Vendor == "drupal"
		},
		result: "drupal-module",
	},
	{
		name: "drush command",
		matches: func(id composer.Identifier) bool {
			return id.Vendor == "drush" || strings.HasPrefix(id.Name, "drush")
		},
		result: "drupal-drush",
	},
}

// candidateDirs lists the conventional locations checked for an on-disk
// package manifest, in priority order.
func candidateDirs(id composer.Identifier) []string {
	return []string{
		filepath.Join("vendor", id.Vendor, id.Name),
		filepath.Join("web", "modules", "contrib", id.Name),
		filepath.Join("web", "themes", "contrib", id.Name),
		filepath.Join("web", "profiles", "contrib", id.Name),
		filepath.Join("web", "libraries", id.Name),
	}
}

// Classify determines the package's type tag. The first candidate directory
// containing a composer.json wins and its declared type is returned as-is.
// When no candidate is materialized on disk the type is inferred from the
// identifier's naming conventions.
func Classify(projectRoot string, id composer.Identifier) (string, error) {
	for _, dir := range candidateDirs(id) {
		manifestPath := filepath.Join(projectRoot, dir, composer.FileName)
		if _, err := os.Stat(manifestPath); err != nil {
			continue
		}
		typeTag, err := composer.ReadPackageType(manifestPath)
		if err != nil {
			return "", fmt.Errorf("classifying %s: %w", id, err)
		}
		return typeTag, nil
	}
	return InferType(id), nil
}

// InferType applies the naming-convention rules to an identifier without
// touching the filesystem. Unmatched identifiers default to "library".
func InferType(id composer.Identifier) string {
	for _, rule := range inferenceRules {
		if rule.matches(id) {
			return rule.result
		}
	}
	return DefaultType
}
