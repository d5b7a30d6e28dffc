package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	runPrompt string
	runFiles  []string
	runPrefer string
)

// newRunCmd builds `oxide run`: reads a prompt from --prompt or stdin,
// routes it to the best backend, and streams the response to stdout.
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Route a prompt to the best available backend and stream its response",
		Long: `Classifies the prompt, picks the best-suited backend (falling back to
the next candidate if the first is unhealthy or fails), and streams the
response to stdout.

The prompt may be given with --prompt, or piped on stdin if --prompt is
omitted. --file may be repeated to attach file paths the backend should
consider. --prefer names a backend to try first, ahead of the classifier's
own choice.`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}
	cmd.Flags().StringVar(&runPrompt, "prompt", "", "Prompt text (reads stdin if omitted)")
	cmd.Flags().StringArrayVar(&runFiles, "file", nil, "File path for the backend to consider (repeatable)")
	cmd.Flags().StringVar(&runPrefer, "prefer", "", "Backend name to try first")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	prompt := runPrompt
	if prompt == "" {
		read, err := readPrompt(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading prompt from stdin: %w", err)
		}
		prompt = read
	}
	if prompt == "" {
		return fmt.Errorf("a prompt is required: pass --prompt or pipe one on stdin")
	}

	application, err := bootstrap(false)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return application.Services.RunTask(ctx, cmd.OutOrStdout(), prompt, runFiles, runPrefer)
}

// readPrompt reads every line from r, trimming a single trailing newline.
func readPrompt(r io.Reader) (string, error) {
	var b strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}
