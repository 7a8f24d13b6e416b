package hosts

import (
	"fmt"
	"strings"

	"hostsman/pkg/models"
)

// Parser converts raw hosts-file text into an ordered line sequence and
// back. With ExtendedSyntax set, a leading '#' in front of a record marks
// the entry disabled instead of turning the whole line into a comment; a
// line is still a comment when fewer than two fields follow the marker.
type Parser struct {
	ExtendedSyntax bool
}

// NewParser creates a parser for the plain hosts dialect.
func NewParser() *Parser {
	return &Parser{}
}

// NewExtendedParser creates a parser that understands disabled entries.
func NewExtendedParser() *Parser {
	return &Parser{ExtendedSyntax: true}
}

// Parse splits content line by line into the typed line model. Output order
// equals input order. Unparseable lines are reclassified as comments so no
// input is ever dropped.
func (p *Parser) Parse(content string) []models.Line {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")

	raw := strings.Split(content, "\n")
	lines := make([]models.Line, len(raw))
	for i, line := range raw {
		lines[i] = p.parseLine(line)
	}
	return lines
}

func (p *Parser) parseLine(raw string) models.Line {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.NewEmptyLine()
	}

	enabled := true
	record := trimmed
	if strings.HasPrefix(trimmed, "#") {
		if !p.ExtendedSyntax {
			return models.NewCommentLine(raw)
		}
		record = strings.TrimPrefix(trimmed, "#")
		enabled = false
	}

	entry, ok := parseRecord(record)
	if !ok {
		return models.NewCommentLine(raw)
	}

	entry.Enabled = enabled
	return models.Line{Kind: models.LineEntry, Entry: &entry}
}

// parseRecord splits "ip hostname [# comment]" into an entry. It reports
// false when fewer than two whitespace-separated fields are present.
func parseRecord(record string) (models.HostEntry, bool) {
	parts := strings.SplitN(record, "#", 2)

	fields := strings.Fields(parts[0])
	if len(fields) < 2 {
		return models.HostEntry{}, false
	}

	entry := models.HostEntry{
		IP:       fields[0],
		Hostname: fields[1],
	}
	if len(parts) > 1 {
		entry.Comment = strings.TrimSpace(parts[1])
	}
	return entry, true
}

// Serialize renders a line sequence back to hosts-file text. Every line is
// newline-terminated. Comments render verbatim; entries are padded for
// column alignment.
func (p *Parser) Serialize(lines []models.Line) string {
	var b strings.Builder
	for _, line := range lines {
		switch line.Kind {
		case models.LineEntry:
			if line.Entry != nil {
				b.WriteString(p.formatEntry(line.Entry))
			}
		case models.LineComment:
			b.WriteString(line.Text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (p *Parser) formatEntry(entry *models.HostEntry) string {
	line := fmt.Sprintf("%-15s %s", entry.IP, entry.Hostname)
	if !entry.Enabled && p.ExtendedSyntax {
		line = "# " + line
	}
	if entry.Comment != "" {
		line += " # " + entry.Comment
	}
	return line
}
