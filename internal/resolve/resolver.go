package resolve

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/patchforge-labs/patchforge/internal/composer"
)

// NotFoundError reports that the resolved directory does not exist on disk.
// It carries the attempted path and the classified type: a wrong type tag
// steering resolution into the wrong installer-path rule is the usual cause.
type NotFoundError struct {
	ID      composer.Identifier
	Path    string
	TypeTag string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("package %s not found at %s (classified as %q)", e.ID, e.Path, e.TypeTag)
}

// Path computes the project-relative directory for a package. It is a pure
// function of its inputs and never touches the filesystem.
//
// Rules are scanned in manifest-declared order; the first rule whose target
// list contains "type:<typeTag>" or the exact identifier wins and its
// template is expanded. With no declared rules, or no matching rule, the
// conventional vendor layout applies.
func Path(id composer.Identifier, rules []composer.InstallerPathRule, typeTag string) string {
	for _, rule := range rules {
		for _, target := range rule.Targets {
			if target == "type:"+typeTag || target == id.String() {
				return expandTemplate(rule.Template, id, typeTag)
			}
		}
	}
	return filepath.Join("vendor", id.Vendor, id.Name)
}

// expandTemplate substitutes the installer-path placeholders. Substitution
// is a single pass per placeholder; a template whose expansion produces
// further placeholder text is left as-is, matching upstream behavior.
func expandTemplate(template string, id composer.Identifier, typeTag string) string {
	replacer := strings.NewReplacer(
		"{$name}", id.Name,
		"{$vendor}", id.Vendor,
		"{$type}", typeTag,
	)
	return filepath.Clean(replacer.Replace(template))
}
