package hosts

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostsman/pkg/models"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts")
	return NewWriter(NewParser(), path)
}

func TestWritePrependsLocalhost(t *testing.T) {
	w := newTestWriter(t)

	require.NoError(t, w.Write([]models.Line{
		models.NewEntryLine("10.0.0.1", "web"),
	}))

	lines, err := w.Load()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.True(t, lines[0].IsLocalhost())
	assert.Equal(t, "web", lines[1].Entry.Hostname)
}

func TestWriteDoesNotDuplicateLocalhost(t *testing.T) {
	w := newTestWriter(t)

	require.NoError(t, w.Write([]models.Line{
		models.NewEntryLine("10.0.0.1", "web"),
		models.Localhost(),
	}))

	content, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "localhost"))

	lines, err := w.Load()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.False(t, lines[0].IsLocalhost())
	assert.True(t, lines[1].IsLocalhost())
}

func TestWritePrependsLocalhostWhenOnlyDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts")
	w := NewWriter(NewExtendedParser(), path)

	disabled := models.Localhost()
	disabled.Entry.Enabled = false
	require.NoError(t, w.Write([]models.Line{disabled}))

	lines, err := w.Load()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.True(t, lines[0].IsLocalhost())
	assert.True(t, lines[0].Entry.Enabled)
	assert.True(t, lines[1].IsLocalhost())
	assert.False(t, lines[1].Entry.Enabled)
}

func TestWriteNeverMutatesCaller(t *testing.T) {
	w := newTestWriter(t)

	lines := []models.Line{models.NewEntryLine("10.0.0.1", "web")}
	require.NoError(t, w.Write(lines))

	require.Len(t, lines, 1)
	assert.Equal(t, "web", lines[0].Entry.Hostname)
}

func TestWriteOverwritesPreviousContent(t *testing.T) {
	w := newTestWriter(t)

	require.NoError(t, w.Write([]models.Line{models.NewEntryLine("10.0.0.1", "old")}))
	require.NoError(t, w.Write([]models.Line{models.NewEntryLine("10.0.0.2", "new")}))

	content, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(content), "old")
	assert.Contains(t, string(content), "new")
}

func TestWriteSurfacesPermissionError(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission bits not enforced here")
	}

	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0555))
	t.Cleanup(func() { os.Chmod(dir, 0755) })

	w := NewWriter(NewParser(), filepath.Join(dir, "hosts"))
	assert.Error(t, w.Write(nil))
}

func TestEnsureLocalhostIsDeterministic(t *testing.T) {
	in := []models.Line{
		models.NewCommentLine("# header"),
		models.NewEntryLine("10.0.0.1", "web"),
	}

	out := EnsureLocalhost(in)
	require.Len(t, out, 3)
	assert.True(t, out[0].IsLocalhost())
	assert.Equal(t, models.LineComment, out[1].Kind)

	again := EnsureLocalhost(in)
	for i := range out {
		assert.True(t, out[i].Equal(again[i]))
	}
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	if runtime.GOOS == "windows" {
		assert.Contains(t, path, "drivers")
	} else {
		assert.Equal(t, "/etc/hosts", path)
	}
}
