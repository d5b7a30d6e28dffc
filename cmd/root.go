package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"muster/internal/app"
	"muster/internal/errs"

	"github.com/spf13/cobra"
)

// Exit codes for the orchestrator binary.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, backend exhausted).
	ExitCodeError = 1
	// ExitCodeConfigInvalid indicates a descriptor or routing-rule load fault.
	ExitCodeConfigInvalid = 2
	// ExitCodeInterrupted indicates the run was cancelled by SIGINT/SIGTERM.
	ExitCodeInterrupted = 130
)

var (
	rootConfigPath string
	rootDebug      bool
)

// rootCmd represents the base command for the orchestrator CLI.
var rootCmd = &cobra.Command{
	Use:   "oxide",
	Short: "Route tasks to the best available language-model backend",
	Long: `oxide classifies a prompt, picks the best-suited backend from a
configured pool (CLI or HTTP, local or remote), and streams its response —
falling back to the next candidate if the chosen one is unhealthy or fails.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command under a context that is cancelled on
// SIGINT/SIGTERM, and exits the process with the appropriate code from the
// exit-code table.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "oxide version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	os.Exit(getExitCode(ctx, err))
}

// getExitCode determines the appropriate exit code for a finished root
// command invocation.
func getExitCode(ctx context.Context, err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	if ctx.Err() != nil {
		return ExitCodeInterrupted
	}
	if errs.IsConfigError(err) {
		return ExitCodeConfigInvalid
	}
	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newBackendsCmd())
	rootCmd.AddCommand(newTestBackendCmd())
	rootCmd.AddCommand(newRoutingRulesCmd())
	rootCmd.AddCommand(newMCPServerCmd())

	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "", "Custom configuration directory path (disables layered config)")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable verbose debug logging")
}

// bootstrap builds an *app.Application from the persistent --config-path and
// --debug flags, shared by every subcommand.
func bootstrap(silent bool) (*app.Application, error) {
	cfg := app.NewConfig(rootDebug, silent, rootConfigPath)
	return app.NewApplication(cfg)
}
