package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lonelycoder306/plox/internal/debugger"
	"github.com/lonelycoder306/plox/internal/driver"
	"github.com/lonelycoder306/plox/internal/module"
)

// Version information (set by build flags, mirroring the teacher's
// convention for a binary that ships without a fixed release process).
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	flagLinePos bool
	flagError   bool
	flagTest    bool
	flagClean   bool
)

// rootCmd implements §6's CLI contract directly: `plox` with no path enters
// the REPL, `plox <path>` runs a file. The flags are plain bools rather
// than subcommands because the specification models them as modifiers on
// the one binary, not as distinct verbs.
var rootCmd = &cobra.Command{
	Use:   "plox [path]",
	Short: "plox: a tree-walking interpreter",
	Long: `plox runs and interactively evaluates plox programs: a small
dynamically-typed, lexically-scoped, class-based scripting language.

With no arguments, plox starts a REPL. Given a path ending in ".lox", it
runs that file and exits with the matching process exit code.`,
	Version:       Version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVar(&flagLinePos, "linepos", false, "show position info on diagnostics")
	rootCmd.PersistentFlags().BoolVar(&flagError, "error", false, "show position info and the offending source line on diagnostics")
	rootCmd.PersistentFlags().BoolVar(&flagTest, "test", false, "run the generated test suite (not supported in this build)")
	rootCmd.PersistentFlags().BoolVar(&flagClean, "clean", false, "remove generated test artifacts (not supported in this build)")
}

// Execute runs the root command and returns the process exit code the
// caller should pass to os.Exit.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "plox:", err)
		return driver.ExitUsage
	}
	return lastExitCode
}

// lastExitCode carries the pipeline's exit code out of RunE, since cobra's
// contract is "return an error", not "return an exit code" (§6).
var lastExitCode int

func runRoot(cmd *cobra.Command, args []string) error {
	if flagTest || flagClean {
		fmt.Fprintln(os.Stderr, "plox: -test/-clean are not supported in this build")
		lastExitCode = driver.ExitUsage
		return nil
	}

	if len(args) == 0 {
		lastExitCode = driver.RunREPL(newPipeline("."))
		return nil
	}

	lastExitCode = driver.RunFile(newPipeline(filepath.Dir(args[0])), args[0])
	return nil
}

// newPipeline assembles the collaborators every entry point (bare root
// dispatch, `run`, `repl`) needs: a file loader rooted at loaderDir for
// GetLib/GetFile resolution, a fresh module registry, and a breakpoint
// debugger wired to the process's own stdio.
func newPipeline(loaderDir string) *driver.Pipeline {
	return &driver.Pipeline{
		Loader:   driver.NewFileLoader(loaderDir),
		Registry: module.NewRegistry(),
		Debugger: debugger.New(os.Stdout, os.Stdin),
		Out:      os.Stdout,
		ErrOut:   os.Stderr,
		Opts:     driver.Options{LinePos: flagLinePos, ErrorMode: flagError},
	}
}
