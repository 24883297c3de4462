// Command plox runs the plox interpreter: a REPL with no arguments, or a
// single ".lox" file given as its one argument (§6).
package main

import (
	"os"

	"github.com/lonelycoder306/plox/cmd/plox/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
