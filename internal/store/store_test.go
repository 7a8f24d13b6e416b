package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostsman/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetAll(t *testing.T) {
	s := newTestStore(t)

	created, err := s.Create("Work", []models.Line{models.Localhost()})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.IsActive)

	profiles, err := s.GetAll()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, created.ID, profiles[0].ID)
	assert.Equal(t, "Work", profiles[0].Name)
	require.Len(t, profiles[0].Hosts, 1)
	assert.True(t, profiles[0].Hosts[0].IsLocalhost())
}

func TestCreateEmptyNameRejected(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("  ", nil)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestCreateDuplicateNameRejected(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("Work", nil)
	require.NoError(t, err)

	_, err = s.Create("Work", nil)
	assert.ErrorIs(t, err, ErrDuplicateName)

	profiles, err := s.GetAll()
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestSetActiveIsExclusive(t *testing.T) {
	s := newTestStore(t)

	a, err := s.Create("A", nil)
	require.NoError(t, err)
	b, err := s.Create("B", nil)
	require.NoError(t, err)

	require.NoError(t, s.SetActive(a.ID))
	require.NoError(t, s.SetActive(b.ID))

	profiles, err := s.GetAll()
	require.NoError(t, err)

	var activeIDs []string
	for _, p := range profiles {
		if p.IsActive {
			activeIDs = append(activeIDs, p.ID)
		}
	}
	require.Len(t, activeIDs, 1)
	assert.Equal(t, b.ID, activeIDs[0])
}

func TestSetActiveUnknownID(t *testing.T) {
	s := newTestStore(t)

	a, err := s.Create("A", nil)
	require.NoError(t, err)
	require.NoError(t, s.SetActive(a.ID))

	err = s.SetActive("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)

	// The failed transaction rolls back, leaving the previous flag intact.
	profiles, err := s.GetAll()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.True(t, profiles[0].IsActive)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	p, err := s.Create("Gone", nil)
	require.NoError(t, err)

	require.NoError(t, s.Delete(p.ID))
	assert.ErrorIs(t, s.Delete(p.ID), ErrNotFound)

	profiles, err := s.GetAll()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestUpdateReplacesHostsOnly(t *testing.T) {
	s := newTestStore(t)

	p, err := s.Create("Work", []models.Line{models.Localhost()})
	require.NoError(t, err)
	require.NoError(t, s.SetActive(p.ID))

	p.Hosts = append(p.Hosts, models.NewEntryLine("10.0.0.1", "web"))
	p.Name = "Renamed"
	p.IsActive = false
	require.NoError(t, s.Update(p))

	profiles, err := s.GetAll()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Work", profiles[0].Name)
	assert.True(t, profiles[0].IsActive)
	assert.Len(t, profiles[0].Hosts, 2)
}

func TestImportForcesInactiveAndFreshID(t *testing.T) {
	s := newTestStore(t)

	imported, err := s.Import(&models.Profile{
		ID:       "imported-id",
		Name:     "Shared",
		Hosts:    []models.Line{models.Localhost()},
		IsActive: true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "imported-id", imported.ID)
	assert.False(t, imported.IsActive)

	profiles, err := s.GetAll()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.False(t, profiles[0].IsActive)
}

func TestImportDuplicateNameRejected(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("Shared", nil)
	require.NoError(t, err)

	_, err = s.Import(&models.Profile{Name: "Shared"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	profiles, err := s.GetAll()
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.db")

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.Create("Keep", nil)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	profiles, err := s2.GetAll()
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}
