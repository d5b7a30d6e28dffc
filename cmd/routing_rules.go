package cmd

import (
	"os"
	"sort"
	"strings"

	"muster/internal/backend"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// newRoutingRulesCmd builds `oxide routing-rules`: an introspection dump of
// the loaded task-type -> backend rule table.
func newRoutingRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routing-rules",
		Short: "Print the loaded routing-rule table",
		Args:  cobra.NoArgs,
		RunE:  runRoutingRules,
	}
}

func runRoutingRules(cmd *cobra.Command, args []string) error {
	application, err := bootstrap(true)
	if err != nil {
		return err
	}

	rules := application.Services.RoutingRules()

	taskTypes := make([]string, 0, len(rules))
	for tt := range rules {
		taskTypes = append(taskTypes, string(tt))
	}
	sort.Strings(taskTypes)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("TASK TYPE"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("PRIMARY"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("FALLBACK"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("TIMEOUT (s)"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("PARALLEL THRESHOLD"),
	})

	for _, tt := range taskTypes {
		rule := rules[backend.TaskType(tt)]
		t.AppendRow(table.Row{tt, rule.Primary, strings.Join(rule.Fallback, ", "), rule.TimeoutSeconds, rule.ParallelThreshold})
	}

	t.Render()
	return nil
}
