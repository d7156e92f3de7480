// Package resolve determines where a Composer package lives on disk. It
// classifies the package's type, from its own composer.json when the
// package is materialized or from naming conventions when it is not, and
// maps the type through the project's installer-path rules to a concrete
// directory, falling back to the conventional vendor/ layout.
package resolve
