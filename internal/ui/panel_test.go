package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPanel(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderPanel("LinkedIn", "first line\nsecond", 0)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)

	assert.True(t, strings.HasPrefix(lines[0], "╭─ LinkedIn "))
	assert.Equal(t, "│ first line │", lines[1])
	assert.Equal(t, "│ second     │", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "╰"))

	for _, line := range lines {
		assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(line), "line %q", line)
	}
}

func TestRenderPanel_LongTitle(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderPanel("A rather long title", "x", 0)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	for _, line := range lines {
		assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(line), "line %q", line)
	}
}
