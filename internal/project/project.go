package project

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/patchforge-labs/patchforge/internal/composer"
)

// ConfigFile is the per-project configuration filename, looked up at the
// project root next to composer.json.
const ConfigFile = ".patchforge.yaml"

// Config holds per-project overrides. Nil pointer fields mean "not set" so
// the caller can fall through to user-level settings.
type Config struct {
	PatchDir        string `yaml:"patch_dir"`
	ProjectRelative *bool  `yaml:"project_relative"`
}

// FindRoot walks upward from start until it finds a directory containing
// composer.json.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}

	for {
		manifest := filepath.Join(dir, composer.FileName)
		if info, err := os.Stat(manifest); err == nil && !info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or any parent directory", composer.FileName, start)
		}
		dir = parent
	}
}

// LoadConfig reads .patchforge.yaml from the project root. A missing file
// is not an error and yields an empty config.
func LoadConfig(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ConfigFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading project config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing project config %s: %w", path, err)
	}
	return &cfg, nil
}
