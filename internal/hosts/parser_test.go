package hosts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostsman/pkg/models"
)

func TestParseClassifiesLines(t *testing.T) {
	p := NewParser()

	lines := p.Parse("127.0.0.1 localhost\n# a comment\n\n192.168.1.5 myserver #note")
	require.Len(t, lines, 4)

	require.Equal(t, models.LineEntry, lines[0].Kind)
	assert.Equal(t, "127.0.0.1", lines[0].Entry.IP)
	assert.Equal(t, "localhost", lines[0].Entry.Hostname)
	assert.True(t, lines[0].Entry.Enabled)

	assert.Equal(t, models.LineComment, lines[1].Kind)
	assert.Equal(t, "# a comment", lines[1].Text)

	assert.Equal(t, models.LineEmpty, lines[2].Kind)

	require.Equal(t, models.LineEntry, lines[3].Kind)
	assert.Equal(t, "192.168.1.5", lines[3].Entry.IP)
	assert.Equal(t, "myserver", lines[3].Entry.Hostname)
	assert.Equal(t, "note", lines[3].Entry.Comment)
}

func TestParseEdgeCases(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name  string
		input string
		want  models.Line
	}{
		{
			name:  "single field preserved as comment",
			input: "orphanhost",
			want:  models.NewCommentLine("orphanhost"),
		},
		{
			name:  "whitespace only is empty",
			input: "   \t ",
			want:  models.NewEmptyLine(),
		},
		{
			name:  "extra fields ignored",
			input: "10.0.0.1 web web.local web2.local",
			want:  models.NewEntryLine("10.0.0.1", "web"),
		},
		{
			name:  "hash line stays a comment",
			input: "## managed by hostsman",
			want:  models.NewCommentLine("## managed by hostsman"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := p.Parse(tt.input)
			require.Len(t, lines, 1)
			assert.True(t, lines[0].Equal(tt.want), "got %+v", lines[0])
		})
	}
}

func TestParseEmptyContent(t *testing.T) {
	p := NewParser()
	assert.Nil(t, p.Parse(""))
}

func TestParseTrailingNewline(t *testing.T) {
	p := NewParser()
	assert.Len(t, p.Parse("127.0.0.1 localhost\n"), 1)
}

func TestParseExtendedDialect(t *testing.T) {
	p := NewExtendedParser()

	lines := p.Parse("#10.1.1.1 disabled.local\n# just words here today\n#lonely")
	require.Len(t, lines, 3)

	require.Equal(t, models.LineEntry, lines[0].Kind)
	assert.False(t, lines[0].Entry.Enabled)
	assert.Equal(t, "10.1.1.1", lines[0].Entry.IP)
	assert.Equal(t, "disabled.local", lines[0].Entry.Hostname)

	// >=2 fields after the marker parse as a disabled entry in this dialect.
	require.Equal(t, models.LineEntry, lines[1].Kind)
	assert.False(t, lines[1].Entry.Enabled)

	// A single field after the marker stays a comment.
	assert.Equal(t, models.LineComment, lines[2].Kind)
	assert.Equal(t, "#lonely", lines[2].Text)
}

func TestSerializeRendersEntries(t *testing.T) {
	p := NewParser()

	entry := models.NewEntryLine("192.168.1.5", "myserver")
	entry.Entry.Comment = "note"
	out := p.Serialize([]models.Line{
		models.Localhost(),
		models.NewCommentLine("# a comment"),
		models.NewEmptyLine(),
		entry,
	})

	assert.Equal(t, "127.0.0.1       localhost\n# a comment\n\n192.168.1.5     myserver # note\n", out)
}

func TestSerializeExtendedDisabledEntry(t *testing.T) {
	p := NewExtendedParser()

	disabled := models.NewEntryLine("10.1.1.1", "disabled.local")
	disabled.Entry.Enabled = false
	out := p.Serialize([]models.Line{disabled})

	assert.Equal(t, "# 10.1.1.1        disabled.local\n", out)
}

func TestSemanticRoundTrip(t *testing.T) {
	for _, p := range []*Parser{NewParser(), NewExtendedParser()} {
		entry := models.NewEntryLine("192.168.1.5", "myserver")
		entry.Entry.Comment = "note"

		// A one-word comment stays a comment in both dialects.
		original := []models.Line{
			models.Localhost(),
			models.NewCommentLine("# marker"),
			models.NewEmptyLine(),
			entry,
		}
		if p.ExtendedSyntax {
			disabled := models.NewEntryLine("10.1.1.1", "old.local")
			disabled.Entry.Enabled = false
			original = append(original, disabled)
		}

		reparsed := p.Parse(p.Serialize(original))
		require.Len(t, reparsed, len(original))
		for i := range original {
			assert.True(t, reparsed[i].Equal(original[i]),
				"extended=%v line %d: %+v != %+v", p.ExtendedSyntax, i, reparsed[i], original[i])
		}
	}
}
