package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// SpinnerModel is a spinner with an optional label, used while an analysis runs
type SpinnerModel struct {
	spinner spinner.Model
	Label   string
}

func NewSpinner(label string) *SpinnerModel {
	return &SpinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(SpinnerStyle),
		),
		Label: label,
	}
}

func (m *SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *SpinnerModel) View() string {
	if m.Label == "" {
		return m.spinner.View()
	}
	return m.spinner.View() + " " + m.Label
}
