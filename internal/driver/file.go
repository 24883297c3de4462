package driver

import (
	"fmt"
	"os"
	"path/filepath"
)

// RunFile reads path, requires it to carry the ".lox" extension (§6), and
// runs it through the pipeline. It reports ExitFileNotFound directly
// (rather than letting Pipeline see the error) since "no such file" is not
// a diagnostic the scan/parse/resolve/evaluate stages know how to emit.
func RunFile(p *Pipeline, path string) int {
	if filepath.Ext(path) != ".lox" {
		fmt.Fprintf(p.Out, "plox: %q: source file must end in \".lox\"\n", path)
		return ExitUsage
	}
	text, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(p.Out, "plox: %q: %s\n", path, err)
		return ExitFileNotFound
	}
	return p.RunSource(string(text), path)
}
