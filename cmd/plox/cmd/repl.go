package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lonelycoder306/plox/internal/driver"
)

// replCmd is an explicit spelling of bare `plox`, for scripts and
// documentation that want to name the REPL rather than rely on the
// no-argument default.
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive plox session",
	Long: `Repl starts the interactive prompt: "` + "`>>>` " + `" reads one unit of
source at a time, a line ending in a backslash continues onto "` + "`...` " + `",
and a blank line exits.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	lastExitCode = driver.RunREPL(newPipeline("."))
	return nil
}
