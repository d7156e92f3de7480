package composer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the project manifest filename.
const FileName = "composer.json"

// Manifest is a loaded composer.json plus the path it came from.
type Manifest struct {
	Path string
	doc  *Document
}

// InstallerPathRule is one entry of extra.installer-paths: a directory
// template with {$name}/{$vendor}/{$type} placeholders and the criteria it
// applies to ("type:<tag>" entries or exact vendor/name identifiers).
type InstallerPathRule struct {
	Template string
	Targets  []string
}

// LoadManifest reads composer.json from the project root.
func LoadManifest(projectRoot string) (*Manifest, error) {
	path := filepath.Join(projectRoot, FileName)
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return &Manifest{Path: path, doc: doc}, nil
}

// Doc returns the underlying document.
func (m *Manifest) Doc() *Document {
	return m.doc
}

// HasDependency reports whether the package is declared under require or
// require-dev.
func (m *Manifest) HasDependency(id Identifier) bool {
	for _, section := range []string{"require", "require-dev"} {
		if m.doc.Root().Path(section, id.String()) != nil {
			return true
		}
	}
	return false
}

// InstallerPathRules returns the extra.installer-paths entries in their
// manifest-declared order. A missing subtree yields an empty slice. Rule
// values may be a single criterion string or an array of criteria;
// non-string array elements are skipped.
func (m *Manifest) InstallerPathRules() []InstallerPathRule {
	paths := m.doc.Root().Path("extra", "installer-paths")
	if !paths.IsObject() {
		return nil
	}

	var rules []InstallerPathRule
	for _, template := range paths.Keys() {
		val := paths.Member(template)
		rule := InstallerPathRule{Template: template}
		if s, ok := val.StringValue(); ok {
			rule.Targets = []string{s}
		} else if val.IsArray() {
			for _, item := range val.Items() {
				if s, ok := item.StringValue(); ok {
					rule.Targets = append(rule.Targets, s)
				}
			}
		}
		rules = append(rules, rule)
	}
	return rules
}

// packageInfo is the subset of a package's own composer.json the classifier
// needs.
type packageInfo struct {
	Type string `json:"type"`
}

// ReadPackageType reads the "type" field of a package-level composer.json.
// A manifest without a type field is a "library" per Composer's default.
func ReadPackageType(manifestPath string) (string, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", manifestPath, err)
	}
	var info packageInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return "", fmt.Errorf("parsing %s: %w", manifestPath, err)
	}
	if info.Type == "" {
		return "library", nil
	}
	return info.Type, nil
}
