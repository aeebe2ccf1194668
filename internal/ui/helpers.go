package ui

import "fmt"

const (
	// MAX_LOGS_IN_VIEWER is the maximum number of log lines the dashboard shows at once.
	MAX_LOGS_IN_VIEWER = 20

	// MAX_REPORT_LINES is the number of report lines visible in the dashboard viewport.
	MAX_REPORT_LINES = 15
)

func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Truncate shortens s to at most width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
