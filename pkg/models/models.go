package models

// LineKind tags the variant held by a Line.
type LineKind string

const (
	LineEntry   LineKind = "entry"
	LineComment LineKind = "comment"
	LineEmpty   LineKind = "empty"
)

const (
	// LocalhostIP and LocalhostName form the mapping that must be present
	// in every sequence written to the OS hosts file.
	LocalhostIP   = "127.0.0.1"
	LocalhostName = "localhost"

	// DefaultProfileName is the protected, auto-created profile.
	DefaultProfileName = "Default"
)

// HostEntry represents a single ip-to-hostname record in a hosts file.
// An empty Comment means no trailing comment.
type HostEntry struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname"`
	Enabled  bool   `json:"enabled"`
	Comment  string `json:"comment,omitempty"`
}

// Line is one parsed unit of hosts-file content. Kind selects which of the
// remaining fields carries data: Entry for LineEntry, Text for LineComment.
// Order within a []Line is significant and mirrors on-disk line order.
type Line struct {
	Kind  LineKind   `json:"kind"`
	Entry *HostEntry `json:"entry,omitempty"`
	Text  string     `json:"text,omitempty"`
}

// NewEntryLine creates an enabled entry line without a comment.
func NewEntryLine(ip, hostname string) Line {
	return Line{
		Kind:  LineEntry,
		Entry: &HostEntry{IP: ip, Hostname: hostname, Enabled: true},
	}
}

// NewCommentLine creates a line preserving text verbatim.
func NewCommentLine(text string) Line {
	return Line{Kind: LineComment, Text: text}
}

// NewEmptyLine creates a blank line.
func NewEmptyLine() Line {
	return Line{Kind: LineEmpty}
}

// Localhost returns the canonical 127.0.0.1 localhost entry line.
func Localhost() Line {
	return NewEntryLine(LocalhostIP, LocalhostName)
}

// Equal reports structural equality between two lines.
func (l Line) Equal(other Line) bool {
	if l.Kind != other.Kind {
		return false
	}
	switch l.Kind {
	case LineEntry:
		if l.Entry == nil || other.Entry == nil {
			return l.Entry == other.Entry
		}
		return *l.Entry == *other.Entry
	case LineComment:
		return l.Text == other.Text
	}
	return true
}

// IsLocalhost reports whether the line is the protected localhost mapping.
func (l Line) IsLocalhost() bool {
	return l.Kind == LineEntry && l.Entry != nil &&
		l.Entry.IP == LocalhostIP && l.Entry.Hostname == LocalhostName
}

// CloneLines returns a deep copy of a line sequence. Entry pointers are
// duplicated so mutations on the copy never reach the original.
func CloneLines(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	for i, line := range lines {
		if line.Entry != nil {
			entry := *line.Entry
			line.Entry = &entry
		}
		out[i] = line
	}
	return out
}

// Profile is a named, independently stored set of hosts-file lines. At most
// one profile is active at a time; the active profile's lines are the ones
// written to the OS hosts file.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Hosts    []Line `json:"hosts"`
	IsActive bool   `json:"is_active"`
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	p.Hosts = CloneLines(p.Hosts)
	return p
}
