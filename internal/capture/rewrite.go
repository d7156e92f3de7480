package capture

import (
	"path/filepath"
	"strings"
)

// RewriteVendorRelative strips the package location prefix from the
// old-file/new-file markers of a unified diff so the patch applies against
// the package root instead of the project tree. Only the "--- " and "+++ "
// header lines of each file entry are touched; hunk content passes through
// byte-identical, even when a body line happens to share a header prefix
// (a deleted line from a .patch file inside the package, say). The rewrite
// applies uniformly to every file entry of a multi-file diff.
func RewriteVendorRelative(diff, location string) string {
	location = strings.TrimSuffix(filepath.ToSlash(location), "/")
	if location == "" {
		return diff
	}

	// Headers appear between a "diff --git" boundary and the first hunk;
	// everything from "@@" to the next boundary is content.
	inHunk := false
	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			inHunk = false
		case strings.HasPrefix(line, "@@ "):
			inHunk = true
		case inHunk:
		case strings.HasPrefix(line, "--- "):
			lines[i] = "--- " + stripLocation(line[len("--- "):], location)
		case strings.HasPrefix(line, "+++ "):
			lines[i] = "+++ " + stripLocation(line[len("+++ "):], location)
		}
	}
	return strings.Join(lines, "\n")
}

// stripLocation removes the location prefix from a diff path token,
// preserving git's a/ and b/ markers. Tokens that do not start with the
// location ("/dev/null", files outside the package) are returned unchanged.
func stripLocation(token, location string) string {
	prefix := ""
	rest := token
	if strings.HasPrefix(rest, "a/") || strings.HasPrefix(rest, "b/") {
		prefix = rest[:2]
		rest = rest[2:]
	}
	rest = strings.TrimPrefix(rest, location+"/")
	return prefix + rest
}
