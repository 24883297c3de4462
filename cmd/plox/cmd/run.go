package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lonelycoder306/plox/internal/driver"
)

// runCmd is an explicit spelling of `plox <path>`, for scripts that prefer
// a named verb over positional-argument dispatch.
var runCmd = &cobra.Command{
	Use:   "run [path]",
	Short: "Run a plox source file",
	Long: `Run reads a ".lox" source file and executes it to completion,
exiting with 0 on success, 64 on a usage error, 65 on a scan, parse or
static error, 66 when the file cannot be read, and 70 on a runtime error.

Examples:
  plox run script.lox
  plox run --error script.lox`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runScript(cmd *cobra.Command, args []string) error {
	if flagTest || flagClean {
		fmt.Fprintln(os.Stderr, "plox: -test/-clean are not supported in this build")
		lastExitCode = driver.ExitUsage
		return nil
	}
	lastExitCode = driver.RunFile(newPipeline(filepath.Dir(args[0])), args[0])
	return nil
}
