package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"ytdlq/internal/model"
)

type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
	Faint    lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Notice   lipgloss.Style
	Spinner  lipgloss.Style
	Marked   lipgloss.Style
	Table    table.Styles

	StatusQueued      lipgloss.Style
	StatusDownloading lipgloss.Style
}

func defaultStyles() Styles {
	base := lipgloss.NewStyle()
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("#7D56F4")).
		Bold(false)

	return Styles{
		Title:    base.Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		Subtitle: base.Faint(true),
		Label:    base.Foreground(lipgloss.Color("#60A5FA")).Width(9),
		Focused:  base.Foreground(lipgloss.Color("#22D3EE")).Bold(true).Width(9),
		Faint:    base.Faint(true),
		Success:  base.Foreground(lipgloss.Color("#22C55E")),
		Error:    base.Foreground(lipgloss.Color("#EF4444")),
		Warning: base.Foreground(lipgloss.Color("#F59E0B")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F59E0B")).
			Padding(0, 1),
		Notice: base.Foreground(lipgloss.Color("#22D3EE")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#22D3EE")).
			Padding(0, 1),
		Spinner: base.Foreground(lipgloss.Color("#22D3EE")),
		Marked:  base.Foreground(lipgloss.Color("#D946EF")),
		Table:   ts,

		StatusQueued:      base.Foreground(lipgloss.Color("#A3A3A3")),
		StatusDownloading: base.Foreground(lipgloss.Color("#06B6D4")),
	}
}

// statusStyle colours the status column and the event line.
func (s Styles) statusStyle(st model.Status) lipgloss.Style {
	switch st {
	case model.StatusDownloading:
		return s.StatusDownloading
	case model.StatusFinished:
		return s.Success
	case model.StatusError:
		return s.Error
	case model.StatusCancelled:
		return s.Faint
	default:
		return s.StatusQueued
	}
}
