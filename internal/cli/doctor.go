package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/patchforge-labs/patchforge/internal/composer"
	"github.com/patchforge-labs/patchforge/internal/config"
	"github.com/patchforge-labs/patchforge/internal/gitcmd"
	"github.com/patchforge-labs/patchforge/internal/project"
)

// checkWritable probes dir by creating it if needed and touching a
// throwaway file inside it.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the environment for patch creation",
	Long:  `Check that git, the working tree, and composer.json are in a usable state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := false

		// git binary and version floor.
		if _, err := exec.LookPath("git"); err != nil {
			fmt.Println("  [FAIL] git not found on PATH")
			failed = true
		} else {
			git := gitcmd.New(".")
			version, err := git.Version()
			switch {
			case err != nil:
				fmt.Printf("  [WARN] cannot determine git version: %v\n", err)
			case git.EnsureAvailable() != nil:
				fmt.Printf("  [FAIL] git %s is older than the supported %s\n", version, gitcmd.MinVersion)
				failed = true
			default:
				fmt.Printf("  [ OK ] git %s\n", version)
			}
		}

		// Project root and working tree.
		cwd, err := os.Getwd()
		if err != nil {
			return &EnvironmentError{Err: err}
		}
		projectRoot, err := project.FindRoot(cwd)
		if err != nil {
			fmt.Printf("  [FAIL] %v\n", err)
			return &EnvironmentError{Err: fmt.Errorf("doctor found problems")}
		}
		fmt.Printf("  [ OK ] project root: %s\n", projectRoot)

		if gitcmd.New(projectRoot).IsInsideWorkTree() {
			fmt.Println("  [ OK ] inside a git working tree")
		} else {
			fmt.Println("  [FAIL] project root is not inside a git working tree")
			failed = true
		}

		// Manifest validity.
		manifestPath := filepath.Join(projectRoot, composer.FileName)
		result, err := composer.ValidateFile(manifestPath)
		switch {
		case err != nil:
			fmt.Printf("  [FAIL] cannot validate %s: %v\n", composer.FileName, err)
			failed = true
		case !result.Valid:
			fmt.Printf("  [FAIL] %s has %d validation issue(s):\n", composer.FileName, len(result.Issues))
			for _, issue := range result.Issues {
				if issue.Path != "" {
					fmt.Printf("    - %s: %s\n", issue.Path, issue.Message)
				} else {
					fmt.Printf("    - %s\n", issue.Message)
				}
			}
			failed = true
		default:
			fmt.Printf("  [ OK ] %s is valid\n", composer.FileName)
		}

		// Declared installer-path rules, for resolution diagnosis.
		if m, err := composer.LoadManifest(projectRoot); err == nil {
			rules := m.InstallerPathRules()
			if len(rules) == 0 {
				fmt.Println("  [INFO] no installer-paths declared; vendor/ layout assumed")
			} else {
				fmt.Printf("  [INFO] %d installer-path rule(s) declared\n", len(rules))
			}
		}

		// Patch directory writability.
		config.Load()
		projCfg, err := project.LoadConfig(projectRoot)
		if err != nil {
			fmt.Printf("  [FAIL] %v\n", err)
			failed = true
			projCfg = &project.Config{}
		}
		patchDir := filepath.Join(projectRoot, resolvePatchDir(projCfg))
		if err := checkWritable(patchDir); err != nil {
			fmt.Printf("  [FAIL] patch directory %s is not writable: %v\n", patchDir, err)
			failed = true
		} else {
			fmt.Printf("  [ OK ] patch directory %s is writable\n", patchDir)
		}

		if failed {
			return &EnvironmentError{Err: fmt.Errorf("doctor found problems")}
		}
		return nil
	},
}
