package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var panelBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

// RenderPanel draws content inside a rounded border with title embedded in
// the top edge. Lines wider than width are wrapped; width <= 0 fits the content.
func RenderPanel(title, content string, width int) string {
	body := lipgloss.NewStyle().Padding(0, 1)
	if width > 4 {
		body = body.Width(width - 2)
	}
	lines := strings.Split(body.Render(content), "\n")

	inner := 0
	for _, line := range lines {
		inner = max(inner, lipgloss.Width(line))
	}

	label := ""
	if title != "" {
		label = " " + TitleStyle.UnsetPadding().Render(title) + " "
	}
	inner = max(inner, lipgloss.Width(label)+2)

	var b strings.Builder
	b.WriteString(panelBorder.Render("╭─"))
	b.WriteString(label)
	b.WriteString(panelBorder.Render(strings.Repeat("─", inner-lipgloss.Width(label)-1) + "╮"))
	b.WriteString("\n")
	for _, line := range lines {
		pad := strings.Repeat(" ", inner-lipgloss.Width(line))
		b.WriteString(panelBorder.Render("│") + line + pad + panelBorder.Render("│") + "\n")
	}
	b.WriteString(panelBorder.Render("╰" + strings.Repeat("─", inner) + "╯"))
	b.WriteString("\n")
	return b.String()
}
