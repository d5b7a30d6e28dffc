package cmd

import (
	"fmt"

	pkgstrings "muster/pkg/strings"

	"github.com/spf13/cobra"
)

var testBackendPrompt string

// newTestBackendCmd builds `oxide test-backend <name>`: a one-shot probe
// that talks to name directly, bypassing routing and retry.
func newTestBackendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test-backend <name>",
		Short: "Probe a single backend directly, bypassing routing",
		Args:  cobra.ExactArgs(1),
		RunE:  runTestBackend,
	}
	cmd.Flags().StringVar(&testBackendPrompt, "prompt", "ping", "Prompt to send to the backend")
	return cmd
}

func runTestBackend(cmd *cobra.Command, args []string) error {
	application, err := bootstrap(true)
	if err != nil {
		return err
	}

	result := application.Services.TestBackend(cmd.Context(), args[0], testBackendPrompt)
	if !result.Success {
		fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", result.Error)
		if result.SampleText != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", samplePreview(result.SampleText))
		}
		return fmt.Errorf("backend %q did not respond successfully", args[0])
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", samplePreview(result.SampleText))
	return nil
}

// samplePreview collapses a backend's (possibly multi-line) sample response
// into a single-line, bounded preview suitable for terminal output.
func samplePreview(sample string) string {
	return pkgstrings.TruncateDescription(sample, pkgstrings.DefaultDescriptionMaxLen)
}
