// Package composer reads and rewrites the project's composer.json. It parses
// the manifest into an order-preserving JSON document, exposes the subtrees
// the tool cares about (require lists, extra.installer-paths,
// extra.patches), validates the file against an embedded JSON Schema, and
// performs the backup-then-atomic-replace patch registration.
package composer
