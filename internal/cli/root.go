package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patchforge-labs/patchforge/internal/branding"
	"github.com/patchforge-labs/patchforge/internal/capture"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName() + " <vendor/name>",
	Short: branding.Description(),
	Long: branding.DisplayName() + ` captures manual edits to an installed Composer package as a
unified-diff patch file, restores the working tree, and records the patch
under extra.patches in composer.json.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCreate,
}

// Execute runs the root command with build info injected via ldflags. Errors
// are reported here; the caller turns them into an exit code.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, capture.ErrAborted) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
