// Package config manages user-level settings stored at
// ~/.patchforge/config.yaml: the default patch output directory and the
// default diff path mode.
package config
