package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"hostsman/internal/hosts"
	"hostsman/internal/store"
	"hostsman/pkg/models"
	"hostsman/pkg/utils"
)

var (
	// ErrNoProfileSelected rejects mutations while nothing is selected.
	ErrNoProfileSelected = errors.New("select a profile first")

	// ErrEmptyField rejects entries with a blank ip or hostname.
	ErrEmptyField = errors.New("ip and hostname must not be empty")

	// ErrEmptyHostname rejects a lookup without a hostname.
	ErrEmptyHostname = errors.New("hostname must not be empty")

	// ErrIndexOutOfRange rejects entry operations on an invalid index.
	ErrIndexOutOfRange = errors.New("entry index out of range")

	// ErrNotAnEntry rejects edits on comment or blank lines.
	ErrNotAnEntry = errors.New("line is not a host entry")

	// ErrNotEditing rejects a commit when no edit is in progress.
	ErrNotEditing = errors.New("no entry is being edited")

	// ErrDeleteActive protects the currently selected profile.
	ErrDeleteActive = errors.New("cannot delete the active profile")

	// ErrDeleteDefault protects the "Default" profile.
	ErrDeleteDefault = errors.New(`cannot delete the "Default" profile`)

	// ErrProfileNotFound means no loaded profile matched the given id.
	ErrProfileNotFound = errors.New("profile not found")
)

// HostResolver translates a hostname, optionally against a specific DNS
// server, into an IP address.
type HostResolver interface {
	Resolve(ctx context.Context, hostname, dnsServer string) (string, error)
}

// SyncResult carries the independent outcomes of the hosts-file write and
// the store update issued by one mutation. The two run concurrently and do
// not succeed or fail together; a caller may retry only the failed half.
type SyncResult struct {
	FileErr  error
	StoreErr error
}

// Ok reports whether both halves of the dual write succeeded.
func (r SyncResult) Ok() bool {
	return r.FileErr == nil && r.StoreErr == nil
}

// Err returns the first failure of the dual write, or nil.
func (r SyncResult) Err() error {
	return utils.FirstError(r.FileErr, r.StoreErr)
}

// editState exists only while an entry edit is in progress, making the
// Idle/Editing distinction explicit: no draft fields linger while idle.
type editState struct {
	index         int
	draftIP       string
	draftHostname string
}

// Controller owns the working copy of the active profile's lines and keeps
// the OS hosts file and the profile store synchronized after every
// mutation (write-through). In-memory state may run ahead of disk when a
// write fails; callers should surface the error and let the user retry.
//
// The delete-profile guard compares against the in-memory selection rather
// than a fresh store read. With a single writer this cannot go stale.
type Controller struct {
	mu       sync.Mutex
	store    *store.Store
	writer   *hosts.Writer
	resolver HostResolver

	lines    []models.Line
	profiles []models.Profile
	selected *models.Profile
	editing  *editState

	lastError  string
	lastStatus string
}

// NewController creates a controller with no profile loaded. Call
// LoadProfiles before issuing mutations.
func NewController(st *store.Store, writer *hosts.Writer, resolver HostResolver) *Controller {
	return &Controller{
		store:    st,
		writer:   writer,
		resolver: resolver,
	}
}

// LoadProfiles (re)reads all profiles. When the store is empty a "Default"
// profile is seeded from the current OS hosts content (localhost-only when
// the file is unreadable) and loading is retried. The active profile is
// selected; without one the first profile is a fallback, reported as an
// informational status rather than an error.
func (c *Controller) LoadProfiles() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearStatus()
	return c.loadProfilesLocked()
}

func (c *Controller) loadProfilesLocked() error {
	profiles, err := c.store.GetAll()
	if err != nil {
		c.lastError = err.Error()
		return utils.WrapError(err, "failed to load profiles")
	}

	if len(profiles) == 0 {
		seed, err := c.writer.Load()
		if err != nil {
			log.Printf("Warning: could not read current hosts file, seeding localhost only: %v", err)
			seed = []models.Line{models.Localhost()}
		}
		if _, err := c.store.Create(models.DefaultProfileName, hosts.EnsureLocalhost(seed)); err != nil {
			c.lastError = err.Error()
			return utils.WrapError(err, "failed to create default profile")
		}
		log.Printf("Seeded %q profile from %s", models.DefaultProfileName, c.writer.Path())

		profiles, err = c.store.GetAll()
		if err != nil {
			c.lastError = err.Error()
			return utils.WrapError(err, "failed to reload profiles")
		}
	}

	c.profiles = profiles

	var active *models.Profile
	for i := range profiles {
		if profiles[i].IsActive {
			active = &profiles[i]
			break
		}
	}
	if active == nil {
		active = &profiles[0]
		c.lastStatus = fmt.Sprintf("No active profile, selected %q", active.Name)
	} else {
		c.lastStatus = fmt.Sprintf("Loaded profile %q", active.Name)
	}

	selected := active.Clone()
	c.selected = &selected
	c.lines = models.CloneLines(selected.Hosts)
	c.editing = nil
	return nil
}

// refreshProfilesLocked re-reads the profile list without touching the
// current selection or working lines.
func (c *Controller) refreshProfilesLocked() error {
	profiles, err := c.store.GetAll()
	if err != nil {
		c.lastError = err.Error()
		return utils.WrapError(err, "failed to reload profiles")
	}
	c.profiles = profiles
	return nil
}

// AddManualEntry validates and appends an entry, then synchronizes file
// and store.
func (c *Controller) AddManualEntry(ip, hostname string) (SyncResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearStatus()

	if strings.TrimSpace(ip) == "" || strings.TrimSpace(hostname) == "" {
		c.lastError = ErrEmptyField.Error()
		return SyncResult{}, ErrEmptyField
	}
	if c.selected == nil {
		c.lastError = ErrNoProfileSelected.Error()
		return SyncResult{}, ErrNoProfileSelected
	}

	c.lines = append(c.lines, models.NewEntryLine(ip, hostname))
	return c.syncLocked(), nil
}

// ResolveAndAdd resolves hostname (against dnsServer when non-empty),
// appends the resulting entry and synchronizes. The lookup runs without
// holding the controller lock, so other operations stay responsive while
// a slow resolver call is in flight.
func (c *Controller) ResolveAndAdd(ctx context.Context, hostname, dnsServer string) (string, SyncResult, error) {
	c.mu.Lock()
	c.clearStatus()
	if strings.TrimSpace(hostname) == "" {
		c.lastError = ErrEmptyHostname.Error()
		c.mu.Unlock()
		return "", SyncResult{}, ErrEmptyHostname
	}
	if c.selected == nil {
		c.lastError = ErrNoProfileSelected.Error()
		c.mu.Unlock()
		return "", SyncResult{}, ErrNoProfileSelected
	}
	c.mu.Unlock()

	ip, err := c.resolver.Resolve(ctx, hostname, dnsServer)
	if err != nil {
		c.mu.Lock()
		c.lastError = err.Error()
		c.mu.Unlock()
		return "", SyncResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		c.lastError = ErrNoProfileSelected.Error()
		return "", SyncResult{}, ErrNoProfileSelected
	}

	c.lines = append(c.lines, models.NewEntryLine(ip, hostname))
	result := c.syncLocked()
	if result.Ok() {
		c.lastStatus = fmt.Sprintf("Resolved %s to %s", hostname, ip)
	}
	return ip, result, nil
}

// DeleteEntry removes the line at index and synchronizes.
func (c *Controller) DeleteEntry(index int) (SyncResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearStatus()

	if index < 0 || index >= len(c.lines) {
		c.lastError = ErrIndexOutOfRange.Error()
		return SyncResult{}, ErrIndexOutOfRange
	}
	if c.selected == nil {
		c.lastError = ErrNoProfileSelected.Error()
		return SyncResult{}, ErrNoProfileSelected
	}

	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return c.syncLocked(), nil
}

// BeginEdit enters the editing state for the entry at index, loading its
// current ip and hostname as the draft.
func (c *Controller) BeginEdit(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearStatus()

	if index < 0 || index >= len(c.lines) {
		c.lastError = ErrIndexOutOfRange.Error()
		return ErrIndexOutOfRange
	}
	line := c.lines[index]
	if line.Kind != models.LineEntry || line.Entry == nil {
		c.lastError = ErrNotAnEntry.Error()
		return ErrNotAnEntry
	}

	c.editing = &editState{
		index:         index,
		draftIP:       line.Entry.IP,
		draftHostname: line.Entry.Hostname,
	}
	return nil
}

// SetDraft replaces the in-progress draft values. No-op while idle.
func (c *Controller) SetDraft(ip, hostname string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.editing == nil {
		return ErrNotEditing
	}
	c.editing.draftIP = ip
	c.editing.draftHostname = hostname
	return nil
}

// CommitEdit applies the draft to the edited entry, leaves the editing
// state and synchronizes.
func (c *Controller) CommitEdit() (SyncResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearStatus()

	if c.editing == nil {
		c.lastError = ErrNotEditing.Error()
		return SyncResult{}, ErrNotEditing
	}
	if strings.TrimSpace(c.editing.draftIP) == "" || strings.TrimSpace(c.editing.draftHostname) == "" {
		c.lastError = ErrEmptyField.Error()
		return SyncResult{}, ErrEmptyField
	}
	if c.selected == nil {
		c.lastError = ErrNoProfileSelected.Error()
		return SyncResult{}, ErrNoProfileSelected
	}

	index := c.editing.index
	if index >= len(c.lines) || c.lines[index].Kind != models.LineEntry || c.lines[index].Entry == nil {
		c.editing = nil
		c.lastError = ErrIndexOutOfRange.Error()
		return SyncResult{}, ErrIndexOutOfRange
	}

	c.lines[index].Entry.IP = c.editing.draftIP
	c.lines[index].Entry.Hostname = c.editing.draftHostname
	c.editing = nil
	return c.syncLocked(), nil
}

// CancelEdit discards the draft and returns to idle without any I/O.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearStatus()
	c.editing = nil
}

// SelectProfile switches the working lines to the target profile, writes
// them to the OS hosts file, marks the target active in the store and
// reloads the profile list so the flag change is visible everywhere.
func (c *Controller) SelectProfile(id string) (SyncResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearStatus()

	target := c.findProfileLocked(id)
	if target == nil {
		c.lastError = ErrProfileNotFound.Error()
		return SyncResult{}, ErrProfileNotFound
	}

	selected := target.Clone()
	c.selected = &selected
	c.lines = models.CloneLines(selected.Hosts)
	c.editing = nil

	linesCopy := models.CloneLines(c.lines)
	fileCh := make(chan error, 1)
	storeCh := make(chan error, 1)
	go func() { fileCh <- c.writer.Write(linesCopy) }()
	go func() { storeCh <- c.store.SetActive(id) }()
	result := SyncResult{FileErr: <-fileCh, StoreErr: <-storeCh}

	if err := result.Err(); err != nil {
		c.lastError = err.Error()
	}
	if result.StoreErr == nil {
		if err := c.refreshProfilesLocked(); err != nil {
			return result, err
		}
		c.selected.IsActive = true
	}
	if result.Ok() {
		c.lastStatus = fmt.Sprintf("Switched to profile %q", selected.Name)
	}
	return result, nil
}

// CreateProfile stores a new profile seeded with the localhost entry and
// refreshes the profile list. The current selection is unchanged.
func (c *Controller) CreateProfile(name string) (*models.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearStatus()

	created, err := c.store.Create(name, []models.Line{models.Localhost()})
	if err != nil {
		c.lastError = err.Error()
		return nil, err
	}

	if err := c.refreshProfilesLocked(); err != nil {
		return created, err
	}
	c.lastStatus = fmt.Sprintf("Created profile %q", created.Name)
	return created, nil
}

// DeleteProfile removes a profile after guard checks: the selected profile
// and any profile named "Default" are protected.
func (c *Controller) DeleteProfile(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearStatus()

	if target := c.findProfileLocked(id); target != nil && target.Name == models.DefaultProfileName {
		c.lastError = ErrDeleteDefault.Error()
		return ErrDeleteDefault
	}
	if c.selected != nil && c.selected.ID == id {
		c.lastError = ErrDeleteActive.Error()
		return ErrDeleteActive
	}

	if err := c.store.Delete(id); err != nil {
		c.lastError = err.Error()
		return err
	}

	if err := c.refreshProfilesLocked(); err != nil {
		return err
	}
	c.lastStatus = "Profile deleted"
	return nil
}

// ExportProfile writes the selected profile to path as a standalone JSON
// document, the same structure ImportProfile reads back.
func (c *Controller) ExportProfile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearStatus()

	if c.selected == nil {
		c.lastError = ErrNoProfileSelected.Error()
		return ErrNoProfileSelected
	}

	if err := writeProfileFile(path, c.selected.Clone()); err != nil {
		c.lastError = err.Error()
		return err
	}
	c.lastStatus = fmt.Sprintf("Exported profile %q to %s", c.selected.Name, path)
	return nil
}

// ImportProfile reads a profile document from path and stores it under a
// fresh id, then refreshes the profile list.
func (c *Controller) ImportProfile(path string) (*models.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearStatus()

	profile, err := readProfileFile(path)
	if err != nil {
		c.lastError = err.Error()
		return nil, err
	}

	imported, err := c.store.Import(profile)
	if err != nil {
		c.lastError = err.Error()
		return nil, err
	}

	if err := c.refreshProfilesLocked(); err != nil {
		return imported, err
	}
	c.lastStatus = fmt.Sprintf("Imported profile %q", imported.Name)
	return imported, nil
}

// Lines returns a copy of the current working lines.
func (c *Controller) Lines() []models.Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CloneLines(c.lines)
}

// Profiles returns a copy of the loaded profile list.
func (c *Controller) Profiles() []models.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()

	profiles := make([]models.Profile, len(c.profiles))
	for i, p := range c.profiles {
		profiles[i] = p.Clone()
	}
	return profiles
}

// Selected returns a copy of the selected profile, or nil.
func (c *Controller) Selected() *models.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == nil {
		return nil
	}
	selected := c.selected.Clone()
	return &selected
}

// Editing reports the in-progress edit, if any.
func (c *Controller) Editing() (index int, ip, hostname string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.editing == nil {
		return 0, "", "", false
	}
	return c.editing.index, c.editing.draftIP, c.editing.draftHostname, true
}

// Status returns the transient error and status messages from the most
// recent operation.
func (c *Controller) Status() (lastError, lastStatus string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError, c.lastStatus
}

// syncLocked clones the working lines into the selected profile and issues
// the hosts-file write and the store update concurrently, reporting both
// outcomes independently. Caller holds the lock and has verified that a
// profile is selected.
func (c *Controller) syncLocked() SyncResult {
	c.selected.Hosts = models.CloneLines(c.lines)
	profile := c.selected.Clone()
	linesCopy := models.CloneLines(c.lines)

	fileCh := make(chan error, 1)
	storeCh := make(chan error, 1)
	go func() { fileCh <- c.writer.Write(linesCopy) }()
	go func() { storeCh <- c.store.Update(&profile) }()
	result := SyncResult{FileErr: <-fileCh, StoreErr: <-storeCh}

	if err := result.Err(); err != nil {
		c.lastError = err.Error()
	} else {
		c.lastStatus = "Saved"
	}
	return result
}

func (c *Controller) findProfileLocked(id string) *models.Profile {
	for i := range c.profiles {
		if c.profiles[i].ID == id {
			return &c.profiles[i]
		}
	}
	return nil
}

func (c *Controller) clearStatus() {
	c.lastError = ""
	c.lastStatus = ""
}
