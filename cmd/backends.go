package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// newBackendsCmd builds `oxide backends`: prints every configured backend's
// name, enabled/health state, kind, and default model.
func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List configured backends and their health",
		Args:  cobra.NoArgs,
		RunE:  runBackends,
	}
}

func runBackends(cmd *cobra.Command, args []string) error {
	application, err := bootstrap(true)
	if err != nil {
		return err
	}

	statuses := application.Services.ListBackends(cmd.Context())

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("NAME"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("KIND"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("ENABLED"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("HEALTHY"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("DEFAULT MODEL"),
	})

	for _, st := range statuses {
		healthy := text.Colors{text.FgRed}.Sprint("no")
		if st.Healthy {
			healthy = text.Colors{text.FgGreen}.Sprint("yes")
		}
		enabled := "no"
		if st.Enabled {
			enabled = "yes"
		}
		t.AppendRow(table.Row{st.Name, st.Kind, enabled, healthy, st.Metadata["default_model"]})
	}

	t.Render()
	return nil
}
