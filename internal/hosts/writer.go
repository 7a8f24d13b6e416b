package hosts

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"hostsman/pkg/models"
)

// Writer persists a line sequence to the OS hosts file. Every write is a
// full overwrite of the target path, never an incremental patch.
type Writer struct {
	parser *Parser
	path   string
}

// NewWriter creates a writer targeting path, or the platform default
// location when path is empty.
func NewWriter(parser *Parser, path string) *Writer {
	if path == "" {
		path = DefaultPath()
	}
	return &Writer{parser: parser, path: path}
}

// DefaultPath returns the hosts file location for the current platform.
// On Windows the path is derived from the SystemRoot environment variable,
// falling back to C:\Windows when it is unset.
func DefaultPath() string {
	if runtime.GOOS == "windows" {
		root := os.Getenv("SystemRoot")
		if root == "" {
			root = `C:\Windows`
		}
		return filepath.Join(root, "System32", "drivers", "etc", "hosts")
	}
	return "/etc/hosts"
}

// Path returns the hosts file path this writer targets.
func (w *Writer) Path() string {
	return w.path
}

// Load reads and parses the current content of the hosts file.
func (w *Writer) Load() ([]models.Line, error) {
	content, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hosts file %s: %w", w.path, err)
	}
	return w.parser.Parse(string(content)), nil
}

// Write serializes the sequence and overwrites the hosts file. The caller's
// sequence is never mutated; the localhost mapping is ensured on a copy.
// Writing commonly fails with a permission error when the process is not
// privileged.
func (w *Writer) Write(lines []models.Line) error {
	content := w.parser.Serialize(EnsureLocalhost(lines))
	if err := os.WriteFile(w.path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write hosts file %s: %w", w.path, err)
	}
	return nil
}

// EnsureLocalhost returns a copy of lines that contains an enabled
// 127.0.0.1 localhost entry. When absent it is prepended; when present the
// sequence is returned as-is (copied), so the writer never introduces a
// duplicate. A disabled localhost entry does not satisfy the mapping: it
// serializes as a comment and resolves nothing.
func EnsureLocalhost(lines []models.Line) []models.Line {
	for _, line := range lines {
		if line.IsLocalhost() && line.Entry.Enabled {
			out := make([]models.Line, len(lines))
			copy(out, lines)
			return out
		}
	}

	out := make([]models.Line, 0, len(lines)+1)
	out = append(out, models.Localhost())
	out = append(out, lines...)
	return out
}
