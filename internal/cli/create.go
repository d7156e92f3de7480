package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/patchforge-labs/patchforge/internal/capture"
	"github.com/patchforge-labs/patchforge/internal/composer"
	"github.com/patchforge-labs/patchforge/internal/config"
	"github.com/patchforge-labs/patchforge/internal/gitcmd"
	"github.com/patchforge-labs/patchforge/internal/project"
	"github.com/patchforge-labs/patchforge/internal/resolve"
)

var (
	createOutput          string
	createDescription     string
	createProjectRelative bool
	createPatchDir        string
)

func init() {
	rootCmd.Flags().StringVarP(&createOutput, "output", "o", "", "Patch filename (default patch_<vendor>_<name>_<timestamp>.patch)")
	rootCmd.Flags().StringVarP(&createDescription, "description", "d", "", "Description recorded with the patch in composer.json")
	rootCmd.Flags().BoolVar(&createProjectRelative, "project-relative", false, "Keep diff paths relative to the project root instead of the package root")
	rootCmd.Flags().StringVar(&createPatchDir, "patch-dir", "", "Directory for generated patch files (default \""+config.DefaultPatchDir+"\")")
}

// runCreate is the whole patch-creation state machine: environment and
// dependency checks, classification, resolution, the capture cycle, path
// rewriting, and manifest registration. It runs exactly once per invocation.
func runCreate(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		_ = cmd.Usage()
		return &InputError{Err: fmt.Errorf("expected exactly one package identifier (vendor/name)")}
	}
	id, err := composer.ParseIdentifier(args[0])
	if err != nil {
		_ = cmd.Usage()
		return &InputError{Err: err}
	}

	config.Load()
	out := cmd.OutOrStdout()

	cwd, err := os.Getwd()
	if err != nil {
		return &EnvironmentError{Err: fmt.Errorf("determining working directory: %w", err)}
	}
	projectRoot, err := project.FindRoot(cwd)
	if err != nil {
		return &EnvironmentError{Err: err}
	}

	git := gitcmd.New(projectRoot)
	if err := git.EnsureAvailable(); err != nil {
		return &EnvironmentError{Err: err}
	}
	if !git.IsInsideWorkTree() {
		return &EnvironmentError{Err: fmt.Errorf("%s is not inside a git working tree", projectRoot)}
	}

	manifestPath := filepath.Join(projectRoot, composer.FileName)
	result, err := composer.ValidateFile(manifestPath)
	if err != nil {
		return &EnvironmentError{Err: err}
	}
	if !result.Valid {
		return &EnvironmentError{Err: fmt.Errorf("%s failed validation: %s", manifestPath, summarizeIssues(result.Issues))}
	}
	m, err := composer.LoadManifest(projectRoot)
	if err != nil {
		return &EnvironmentError{Err: err}
	}

	if !m.HasDependency(id) {
		return &EnvironmentError{Err: fmt.Errorf("package %s is not declared under require or require-dev", id)}
	}

	typeTag, err := resolve.Classify(projectRoot, id)
	if err != nil {
		return err
	}
	location := resolve.Path(id, m.InstallerPathRules(), typeTag)

	if info, statErr := os.Stat(filepath.Join(projectRoot, location)); statErr != nil || !info.IsDir() {
		return &resolve.NotFoundError{ID: id, Path: location, TypeTag: typeTag}
	}

	projCfg, err := project.LoadConfig(projectRoot)
	if err != nil {
		return &EnvironmentError{Err: err}
	}
	patchDir := resolvePatchDir(projCfg)
	projectRelative := resolveProjectRelative(cmd, projCfg)

	session := &capture.Session{
		Git:     git,
		Confirm: confirmFromStdin,
		Out:     out,
	}
	diff, files, err := session.Run(id, location)
	if errors.Is(err, capture.ErrAborted) {
		fmt.Fprintln(out, "Aborted. No patch created; working tree restored.")
		return err
	}
	if err != nil {
		return err
	}

	if !projectRelative {
		diff = capture.RewriteVendorRelative(diff, location)
	}

	fileName := createOutput
	if fileName == "" {
		fileName = capture.PatchFileName(id, time.Now())
	}
	patchPath, err := capture.WritePatchFile(projectRoot, patchDir, fileName, diff)
	if err != nil {
		return err
	}

	if err := composer.RegisterPatch(manifestPath, id, patchPath, createDescription); err != nil {
		fmt.Fprintf(out, "Patch file %s was written; add it to extra.patches manually.\n", patchPath)
		return err
	}

	fmt.Fprintf(out, "✓ Captured %d modified file(s) from %s.\n", len(files), location)
	fmt.Fprintf(out, "✓ Wrote %s.\n", patchPath)
	fmt.Fprintf(out, "✓ Registered the patch for %s in %s.\n", id, composer.FileName)
	return nil
}

// resolvePatchDir applies the override chain: flag, project config, user
// config (which carries the default).
func resolvePatchDir(projCfg *project.Config) string {
	if createPatchDir != "" {
		return createPatchDir
	}
	if projCfg.PatchDir != "" {
		return projCfg.PatchDir
	}
	return config.Get(config.KeyPatchDir)
}

// resolveProjectRelative applies the same chain for the diff path mode. The
// flag only participates when explicitly set, so a project default is not
// masked by the flag's zero value.
func resolveProjectRelative(cmd *cobra.Command, projCfg *project.Config) bool {
	if cmd.Flags().Changed("project-relative") {
		return createProjectRelative
	}
	if projCfg.ProjectRelative != nil {
		return *projCfg.ProjectRelative
	}
	return config.GetBool(config.KeyProjectRelative)
}

// confirmFromStdin blocks for one line of input. Only a literal "y" means
// proceed; anything else, including EOF, aborts.
func confirmFromStdin() bool {
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	return strings.TrimSpace(scanner.Text()) == "y"
}

func summarizeIssues(issues []composer.ValidationIssue) string {
	var parts []string
	for _, issue := range issues {
		if issue.Path != "" {
			parts = append(parts, issue.Path+": "+issue.Message)
		} else {
			parts = append(parts, issue.Message)
		}
	}
	return strings.Join(parts, "; ")
}
