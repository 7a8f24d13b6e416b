package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"hostsman/pkg/models"
)

var (
	// ErrEmptyName rejects profile creation with a blank name.
	ErrEmptyName = errors.New("profile name must not be empty")

	// ErrDuplicateName rejects a create or import whose name is taken.
	ErrDuplicateName = errors.New("a profile with this name already exists")

	// ErrNotFound means no profile row matched the given id.
	ErrNotFound = errors.New("profile not found")
)

const schema = `CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	hosts_json TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 0
)`

// Store persists named profiles in a local SQLite database. The name column
// carries a storage-level uniqueness constraint; the single-active-profile
// invariant is kept by SetActive's transaction and by Import normalizing
// the imported flag.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the database location under the user's
// application-data directory, falling back to the working directory when
// that directory cannot be determined.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		log.Printf("Warning: could not determine user config dir: %v", err)
		base = "."
	}
	return filepath.Join(base, "hostsman", "profiles.db")
}

// Open opens or creates the database at path (DefaultPath when empty) and
// ensures the schema exists. Safe to call repeatedly.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize profile schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new inactive profile with a freshly generated id and
// returns it. Fails on an empty or already-taken name.
func (s *Store) Create(name string, hosts []models.Line) (*models.Profile, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	profile := &models.Profile{
		ID:    uuid.NewString(),
		Name:  name,
		Hosts: models.CloneLines(hosts),
	}

	blob, err := marshalHosts(profile.Hosts)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		"INSERT INTO profiles (id, name, hosts_json, is_active) VALUES (?, ?, ?, 0)",
		profile.ID, profile.Name, blob,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		return nil, fmt.Errorf("failed to create profile %q: %w", name, err)
	}

	return profile, nil
}

// GetAll returns every stored profile in storage order.
func (s *Store) GetAll() ([]models.Profile, error) {
	rows, err := s.db.Query("SELECT id, name, hosts_json, is_active FROM profiles")
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var (
			profile  models.Profile
			blob     string
			isActive int
		)
		if err := rows.Scan(&profile.ID, &profile.Name, &blob, &isActive); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &profile.Hosts); err != nil {
			return nil, fmt.Errorf("failed to decode hosts for profile %q: %w", profile.Name, err)
		}
		profile.IsActive = isActive != 0
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}
	return profiles, nil
}

// SetActive clears the active flag on every profile and sets it on id, as
// one transaction so no observer sees zero or two active profiles.
func (s *Store) SetActive(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE profiles SET is_active = 0"); err != nil {
		return fmt.Errorf("failed to clear active flags: %w", err)
	}

	result, err := tx.Exec("UPDATE profiles SET is_active = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to activate profile %s: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return tx.Commit()
}

// Delete removes the profile row. Policy checks (active, "Default") are the
// caller's responsibility.
func (s *Store) Delete(id string) error {
	result, err := s.db.Exec("DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Update overwrites the stored hosts for the profile's id. Name and active
// flag are left untouched.
func (s *Store) Update(profile *models.Profile) error {
	blob, err := marshalHosts(profile.Hosts)
	if err != nil {
		return err
	}

	result, err := s.db.Exec("UPDATE profiles SET hosts_json = ? WHERE id = ?", blob, profile.ID)
	if err != nil {
		return fmt.Errorf("failed to update profile %q: %w", profile.Name, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, profile.ID)
	}
	return nil
}

// Import inserts an externally produced profile under a freshly generated
// id, so imported ids can never collide with stored ones. The imported
// active flag is discarded: an import must not mint a second active
// profile. Fails when the name is already taken.
func (s *Store) Import(profile *models.Profile) (*models.Profile, error) {
	if strings.TrimSpace(profile.Name) == "" {
		return nil, ErrEmptyName
	}

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM profiles WHERE name = ?", profile.Name).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing profile %q: %w", profile.Name, err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, profile.Name)
	}

	imported := &models.Profile{
		ID:    uuid.NewString(),
		Name:  profile.Name,
		Hosts: models.CloneLines(profile.Hosts),
	}

	blob, err := marshalHosts(imported.Hosts)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		"INSERT INTO profiles (id, name, hosts_json, is_active) VALUES (?, ?, ?, 0)",
		imported.ID, imported.Name, blob,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, profile.Name)
		}
		return nil, fmt.Errorf("failed to import profile %q: %w", profile.Name, err)
	}

	return imported, nil
}

// marshalHosts encodes the line sequence as the opaque storage blob. A nil
// sequence is stored as an empty array so it decodes back to a sequence.
func marshalHosts(hosts []models.Line) (string, error) {
	if hosts == nil {
		hosts = []models.Line{}
	}
	blob, err := json.Marshal(hosts)
	if err != nil {
		return "", fmt.Errorf("failed to encode hosts: %w", err)
	}
	return string(blob), nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
