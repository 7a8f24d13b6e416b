package monitor

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"hostsman/internal/hosts"
	"hostsman/pkg/models"
)

// Monitor watches the OS hosts file for modifications made outside the
// application and reports the freshly parsed content. It never mutates
// session state itself; reconciliation is the subscriber's decision.
type Monitor struct {
	path     string
	parser   *hosts.Parser
	onChange func([]models.Line)

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// New creates a monitor for path. onChange receives the parsed line
// sequence after each external write; it may be nil.
func New(path string, parser *hosts.Parser, onChange func([]models.Line)) *Monitor {
	return &Monitor{
		path:     path,
		parser:   parser,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching the hosts file.
func (m *Monitor) Start() error {
	var err error
	m.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	go m.watchLoop()

	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		log.Printf("Warning: hosts file does not exist yet: %s", m.path)
	}
	if err := m.watcher.Add(m.path); err != nil {
		log.Printf("Warning: failed to watch hosts file %s: %v", m.path, err)
	}

	return nil
}

func (m *Monitor) watchLoop() {
	absPath, _ := filepath.Abs(m.path)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			absEvent, _ := filepath.Abs(event.Name)
			if absEvent != absPath {
				continue
			}
			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				m.reload()
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Atomic rename-replace saves (vim, sed -i) swap the
				// inode out from under the watch.
				m.rewatch()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)

		case <-m.stopCh:
			return
		}
	}
}

// rewatch re-arms the watch on the path after the original inode was
// removed or renamed away, then reports the replacement content.
func (m *Monitor) rewatch() {
	if err := m.watcher.Add(m.path); err != nil {
		log.Printf("Warning: failed to rewatch hosts file %s: %v", m.path, err)
		return
	}
	m.reload()
}

func (m *Monitor) reload() {
	content, err := os.ReadFile(m.path)
	if err != nil {
		log.Printf("Error reading modified hosts file: %v", err)
		return
	}

	lines := m.parser.Parse(string(content))
	log.Printf("Hosts file modified externally: %s (%d lines)", m.path, len(lines))

	if m.onChange != nil {
		m.onChange(lines)
	}
}

// Stop stops watching.
func (m *Monitor) Stop() {
	close(m.stopCh)
	if m.watcher != nil {
		m.watcher.Close()
	}
}
