package shared

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"Name", "Count"},
		[][]string{{"whisper-cpp", "3"}, {"gemini"}},
		[]ColumnAlignment{AlignLeft, AlignRight})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "╭"))
	assert.Regexp(t, `│ NAME\s+│ COUNT │`, lines[1])
	assert.Regexp(t, `│ whisper-cpp │\s+3 │`, lines[3])
	assert.Regexp(t, `│ gemini\s+│\s+│`, lines[4])
	assert.True(t, strings.HasPrefix(lines[5], "╰"))
}

func TestRenderTableWithoutHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, [][]string{{"x"}}, nil))
}
