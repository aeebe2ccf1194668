package ui

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/socialharvester/harvester/internal/api"
)

const maxCellWidth = 80

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true
	return tw
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// WriteStatusTable prints the job status as a two column table.
func WriteStatusTable(w io.Writer, status api.JobStatus) {
	tw := newTable(w)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, WidthMax: maxCellWidth},
	})

	networks := "-"
	if len(status.Networks) > 0 {
		networks = strings.Join(status.Networks, ", ")
	}
	tw.AppendRow(table.Row{"Scraping", yesNo(status.Running)})
	tw.AppendRow(table.Row{"Analysis", yesNo(status.LLMRunning)})
	tw.AppendRow(table.Row{"Networks", networks})
	tw.Render()
}

// WriteReportsTable lists report descriptors with the formats each one has.
func WriteReportsTable(w io.Writer, reports []api.ReportDescriptor) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Network", "Text", "JSON"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
	})
	for _, r := range reports {
		tw.AppendRow(table.Row{r.Network, yesNo(r.HasText), yesNo(r.HasJSON)})
	}
	if len(reports) == 0 {
		tw.AppendRow(table.Row{"(no reports)", "-", "-"})
	}
	tw.Render()
}

// WriteRequestsTable lists request identifiers, newest last as the server orders them.
func WriteRequestsTable(w io.Writer, requests []string) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"#", "Request"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, WidthMax: maxCellWidth},
	})
	for i, r := range requests {
		tw.AppendRow(table.Row{i + 1, r})
	}
	if len(requests) == 0 {
		tw.AppendRow(table.Row{"-", "(no requests)"})
	}
	tw.Render()
}

// WriteChartsTable lists generated chart images.
func WriteChartsTable(w io.Writer, images []api.ChartImage) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"#", "Title", "Path"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, WidthMax: maxCellWidth / 2},
	})
	for i, img := range images {
		tw.AppendRow(table.Row{i + 1, img.Title, img.Path()})
	}
	if len(images) == 0 {
		tw.AppendRow(table.Row{"-", "(no charts)", "-"})
	}
	tw.Render()
}

// WriteCommentsTable prints each publication followed by its comments.
// Sentiment labels keep their color unless the table is rendered plain.
func WriteCommentsTable(w io.Writer, explained *api.CommentsExplained, plain bool) {
	sentiment := ColorizeSentiment
	if plain {
		sentiment = func(s string) string {
			if s == "" {
				return "-"
			}
			return s
		}
	}

	tw := newTable(w)
	tw.SetTitle("Request: " + explained.Request)
	tw.AppendHeader(table.Row{"Network", "Date", "Sentiment", "Text", "Explanation"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: maxCellWidth / 2},
		{Number: 5, WidthMax: maxCellWidth / 2},
	})

	for _, pub := range explained.Publications {
		tw.AppendRow(table.Row{pub.Network, pub.PublishedAt, sentiment(pub.Sentiment), pub.Text, pub.Explanation})
		for _, c := range pub.Comments {
			tw.AppendRow(table.Row{"", "  ↳ comment", sentiment(c.Sentiment), c.Text, c.Explanation})
		}
		tw.AppendSeparator()
	}
	if len(explained.Publications) == 0 {
		tw.AppendRow(table.Row{"-", "-", "-", "(no publications)", "-"})
	}
	tw.Render()
}
