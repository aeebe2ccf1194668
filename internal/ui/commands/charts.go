package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/ui"
)

// ChartsConfig contains configuration for the chart carousel
type ChartsConfig struct {
	ui.DisplayConfig

	Client  api.Client
	Images  []api.ChartImage
	BaseURL string
	// SaveDir is where "d" writes the current image
	SaveDir string
}

type chartSavedMsg struct {
	path  string
	bytes int64
	err   error
}

// ChartsView is a carousel over generated charts. Navigation wraps around.
type ChartsView struct {
	ctx   context.Context
	conf  ChartsConfig
	index int

	saved  map[int]string
	status string
	err    *ui.UIError
}

func NewChartsView(ctx context.Context, conf ChartsConfig) *ChartsView {
	return &ChartsView{ctx: ctx, conf: conf, saved: map[int]string{}}
}

func (m *ChartsView) Error() error {
	if m.err == nil {
		return nil
	}
	return m.err
}

// Index returns the position of the chart on screen.
func (m *ChartsView) Index() int {
	return m.index
}

func (m *ChartsView) Init() tea.Cmd {
	return nil
}

// Next moves to the following chart, wrapping from the last to the first.
func (m *ChartsView) Next() {
	if n := len(m.conf.Images); n > 0 {
		m.index = (m.index + 1) % n
	}
}

// Prev moves to the preceding chart, wrapping from the first to the last.
func (m *ChartsView) Prev() {
	if n := len(m.conf.Images); n > 0 {
		m.index = (m.index - 1 + n) % n
	}
}

func (m *ChartsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SignalCancelMsg:
		m.err = ui.NewUserCancelledError()
		return m, tea.Quit

	case chartSavedMsg:
		if msg.err != nil {
			m.status = ui.ErrorStyle.Render("✗ " + msg.err.Error())
			return m, nil
		}
		m.saved[m.index] = msg.path
		m.status = ui.SuccessStyle.Render(fmt.Sprintf("✓ Saved %s (%s)", msg.path, ui.FormatSize(msg.bytes)))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.err = ui.NewUserCancelledError()
			return m, tea.Quit
		case "q", "esc":
			return m, tea.Quit
		case "right", "l", "n":
			m.Next()
			m.status = ""
		case "left", "h", "p":
			m.Prev()
			m.status = ""
		case "d":
			if len(m.conf.Images) == 0 {
				return m, nil
			}
			return m, m.save(m.conf.Images[m.index])
		}
	}
	return m, nil
}

func (m *ChartsView) save(image api.ChartImage) tea.Cmd {
	ctx, client, dir := m.ctx, m.conf.Client, m.conf.SaveDir
	return func() tea.Msg {
		path, n, err := SaveChart(ctx, client, image, dir)
		return chartSavedMsg{path: path, bytes: n, err: err}
	}
}

// SaveChart downloads image into dir, named after its folder and file.
func SaveChart(ctx context.Context, client api.Client, image api.ChartImage, dir string) (string, int64, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // Output directory for user downloads
		return "", 0, ui.NewFileSystemError(fmt.Errorf("failed to create %s: %w", dir, err))
	}

	path := filepath.Join(dir, image.Folder+"_"+filepath.Base(image.File))
	f, err := os.Create(path) //nolint:gosec // Path built from the chosen directory
	if err != nil {
		return "", 0, ui.NewFileSystemError(fmt.Errorf("failed to create %s: %w", path, err))
	}

	n, err := client.DownloadChart(ctx, image, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = ui.NewFileSystemError(closeErr)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("failed to download %s: %w", image.Path(), err)
	}
	return path, n, nil
}

func (m *ChartsView) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("Charts"))
	b.WriteString("\n\n")

	if len(m.conf.Images) == 0 {
		b.WriteString(ui.PendingStyle.Render("No charts were generated"))
		b.WriteString("\n")
		b.WriteString(ui.HelpStyle.Render("q: quit"))
		return b.String()
	}

	image := m.conf.Images[m.index]
	lines := []string{
		ui.BoldStyle.Render(image.Title),
		fmt.Sprintf("Chart %d of %d", m.index+1, len(m.conf.Images)),
		"File: " + image.Path(),
	}
	if m.conf.BaseURL != "" {
		lines = append(lines, "URL:  "+ui.URLStyle.Render(strings.TrimRight(m.conf.BaseURL, "/")+"/api/charts/image/"+image.Path()))
	}
	if path, ok := m.saved[m.index]; ok {
		lines = append(lines, "Saved to "+path)
	}
	b.WriteString(ui.BoxStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(ui.HelpStyle.Render("←/→: previous/next • d: download • q: quit"))
	return b.String()
}
