package composer

import (
	"fmt"
	"strings"
)

// Identifier is a vendor/name package pair as written in composer.json.
type Identifier struct {
	Vendor string
	Name   string
}

// ParseIdentifier parses a "vendor/name" string. Exactly one slash is
// required and both parts must be non-empty.
func ParseIdentifier(s string) (Identifier, error) {
	if strings.Count(s, "/") != 1 {
		return Identifier{}, fmt.Errorf("invalid package identifier %q: expected vendor/name", s)
	}
	vendor, name, _ := strings.Cut(s, "/")
	if vendor == "" || name == "" {
		return Identifier{}, fmt.Errorf("invalid package identifier %q: vendor and name must be non-empty", s)
	}
	return Identifier{Vendor: vendor, Name: name}, nil
}

// String returns the canonical "vendor/name" form.
func (id Identifier) String() string {
	return id.Vendor + "/" + id.Name
}
