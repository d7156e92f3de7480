// Package project locates the Composer project root and loads the optional
// per-project .patchforge.yaml overrides.
package project
