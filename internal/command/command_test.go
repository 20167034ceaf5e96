package command_test

import (
	"testing"

	"github.com/joeycumines/collabmd/internal/command"
	"github.com/joeycumines/collabmd/internal/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEditAllKinds(t *testing.T) {
	cases := []struct {
		line string
		kind command.Kind
	}{
		{"INSERT 0 hello world", command.Insert},
		{"DEL 0 5", command.Del},
		{"NEWLINE 3", command.Newline},
		{"HEADING 2 0", command.Heading},
		{"BOLD 0 5", command.Bold},
		{"ITALIC 0 5", command.Italic},
		{"CODE 0 5", command.Code},
		{"BLOCKQUOTE 0", command.Blockquote},
		{"ORDERED_LIST 0", command.OrderedList},
		{"UNORDERED_LIST 0", command.UnorderedList},
		{"HORIZONTAL_RULE 0", command.HorizontalRule},
		{"LINK 0 5 https://example.com", command.Link},
	}
	for _, c := range cases {
		e, err := command.ParseEdit(c.line)
		require.NoError(t, err, c.line)
		assert.Equal(t, c.kind, e.Kind, c.line)
	}
}

func TestParseEditInsertTextRunsToEndOfLine(t *testing.T) {
	e, err := command.ParseEdit("INSERT 0 hello  world")
	require.NoError(t, err)
	assert.Equal(t, "hello  world", e.Text)
}

func TestParseEditLinkFields(t *testing.T) {
	e, err := command.ParseEdit("LINK 0 5 https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, e.Pos)
	assert.Equal(t, 5, e.End)
	assert.Equal(t, "https://example.com", e.URL)
}

func TestParseEditRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"INSERT",
		"INSERT abc hello",
		"BOGUS 0",
		"DEL notanumber 5",
		"BOLD 0",
		"LINK 0 5",
		"HEADING notalevel 0",
	}
	for _, line := range cases {
		_, err := command.ParseEdit(line)
		assert.ErrorIs(t, err, result.ErrInvalidPosition, line)
	}
}

func TestEditStringRendersRawLine(t *testing.T) {
	e, err := command.ParseEdit("NEWLINE 3")
	require.NoError(t, err)
	assert.Equal(t, "NEWLINE 3", e.String())
}
