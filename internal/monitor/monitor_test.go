package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostsman/internal/hosts"
	"hostsman/pkg/models"
)

func waitForLines(t *testing.T, ch <-chan []models.Line) []models.Line {
	t.Helper()
	select {
	case lines := <-ch:
		return lines
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
		return nil
	}
}

func TestMonitorReportsInPlaceWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(path, []byte("127.0.0.1 localhost\n"), 0644))

	ch := make(chan []models.Line, 4)
	m := New(path, hosts.NewParser(), func(lines []models.Line) { ch <- lines })
	require.NoError(t, m.Start())
	defer m.Stop()

	require.NoError(t, os.WriteFile(path, []byte("127.0.0.1 localhost\n10.0.0.1 web\n"), 0644))

	lines := waitForLines(t, ch)
	require.Len(t, lines, 2)
	assert.Equal(t, "web", lines[1].Entry.Hostname)
}

func TestMonitorSurvivesRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(path, []byte("127.0.0.1 localhost\n"), 0644))

	ch := make(chan []models.Line, 4)
	m := New(path, hosts.NewParser(), func(lines []models.Line) { ch <- lines })
	require.NoError(t, m.Start())
	defer m.Stop()

	// Editors like vim save by writing a sibling file and renaming it over
	// the watched path, replacing the watched inode.
	tmp := filepath.Join(dir, "hosts.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("127.0.0.1 localhost\n10.0.0.2 replaced\n"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	lines := waitForLines(t, ch)
	require.Len(t, lines, 2)
	assert.Equal(t, "replaced", lines[1].Entry.Hostname)

	// The watch must be re-armed for subsequent in-place writes.
	require.NoError(t, os.WriteFile(path, []byte("127.0.0.1 localhost\n10.0.0.3 after\n"), 0644))
	for {
		lines = waitForLines(t, ch)
		if len(lines) == 2 && lines[1].Entry.Hostname == "after" {
			break
		}
	}
}
