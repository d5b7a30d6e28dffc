package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// RunTask executes a single prompt+files request to completion, writing each
// text chunk to out as it arrives. It is the implementation behind `oxide
// run`: one request in, one stream out, then return — there is no
// long-running server mode in this CLI.
//
// Any auto-started backend child processes (HTTP backends with AutoStart set)
// are swept via Procs.CleanupAll before RunTask returns, whether it succeeds,
// fails, or ctx is cancelled by a signal.
func (s *Services) RunTask(ctx context.Context, out io.Writer, prompt string, files []string, prefer string) error {
	defer s.Procs.CleanupAll(context.Background())

	w := bufio.NewWriter(out)
	defer w.Flush()

	for result := range s.ExecuteWithHint(ctx, prompt, files, prefer) {
		if result.Err != nil {
			w.Flush()
			return result.Err
		}
		if _, err := w.WriteString(result.Text); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}
