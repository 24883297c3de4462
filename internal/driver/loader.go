// Package driver wires the core (scanner/parser/resolver/evaluator) to the
// outside world: a filesystem-backed source loader, a file runner, and a
// readline-backed REPL, matching the external-collaborator boundary the
// specification draws around CLI/file-I/O concerns (§1, §6).
package driver

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileLoader resolves GetLib/GetFile names against a list of search
// directories, appending the ".lox" extension when the name doesn't
// already carry one. It is the only piece of the interpreter that touches
// the filesystem directly; the core only ever sees the source.Loader seam.
type FileLoader struct {
	Dirs []string
}

// NewFileLoader builds a loader searching the given directories in order;
// an empty Dirs searches only the current directory.
func NewFileLoader(dirs ...string) *FileLoader {
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	return &FileLoader{Dirs: dirs}
}

func (l *FileLoader) Load(name string) (string, error) {
	candidate := name
	if filepath.Ext(candidate) == "" {
		candidate += ".lox"
	}
	var lastErr error
	for _, dir := range l.Dirs {
		path := candidate
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, candidate)
		}
		text, err := os.ReadFile(path)
		if err == nil {
			return string(text), nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("could not locate %q: %w", name, lastErr)
}
