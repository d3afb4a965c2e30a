package tui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matheuskafuri/newsdesk/internal/archive"
	"github.com/matheuskafuri/newsdesk/internal/news"
)

// AnalysisTable lays items out as Date | Source | Title | Analysis. width
// is the terminal width; the analysis column takes what is left.
func AnalysisTable(items []news.Item, width int) string {
	const (
		dateW   = 12
		sourceW = 18
		titleW  = 36
	)
	analysisW := width - dateW - sourceW - titleW - 5
	if analysisW < 30 {
		analysisW = 30
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		BorderRow(true).
		Headers("Date", "Source", "Title", "Analysis").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := tableCellStyle
			if row == table.HeaderRow {
				s = tableHeaderStyle
			} else if col == 1 {
				s = sourceStyle
			}
			switch col {
			case 0:
				return s.Width(dateW)
			case 1:
				return s.Width(sourceW)
			case 2:
				return s.Width(titleW)
			default:
				return s.Width(analysisW)
			}
		})

	for _, it := range items {
		date := "N/A"
		if !it.Published.IsZero() {
			date = it.Published.Format("2006-01-02")
		}
		t.Row(date, it.Source, it.Title, oneLine(it.Body))
	}
	return t.Render()
}

// HistoryTable lists archived runs, newest first.
func HistoryTable(runs []archive.Run) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("ID", "When", "Kind", "Topic", "Items", "Output").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})

	for _, r := range runs {
		items := "-"
		if r.Kind != archive.KindImage {
			items = strconv.Itoa(r.ItemCount)
		}
		t.Row(
			r.ID,
			relativeTime(r.CreatedAt),
			r.Kind,
			truncateStr(r.Topic, 40),
			items,
			truncateStr(r.Output, 48),
		)
	}
	return t.Render()
}

// EntriesTable lists the articles archived for one run.
func EntriesTable(entries []archive.Entry) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("#", "Date", "Source", "Title", "Summary").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})

	for i, e := range entries {
		date := "N/A"
		if !e.Published.IsZero() {
			date = e.Published.Format("2006-01-02")
		}
		summarized := "no"
		if e.Enhanced {
			summarized = "yes"
		}
		t.Row(strconv.Itoa(i+1), date, truncateStr(e.Source, 24), truncateStr(e.Title, 60), summarized)
	}
	return t.Render()
}
