package ui

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"ytdlq/internal/model"
)

func (m Model) View() string {
	sections := []string{m.viewHeader()}
	if m.picking {
		sections = append(sections, m.viewPicker())
	} else {
		sections = append(sections, m.viewForm())
	}
	if m.warning != nil {
		sections = append(sections, m.styles.Warning.Render(m.warning.title+": "+m.warning.text))
	}
	if m.notice != nil {
		sections = append(sections, m.styles.Notice.Render(m.notice.title+"\n"+m.notice.text))
	}
	sections = append(sections, m.table.View())
	if line := m.viewProgress(); line != "" {
		sections = append(sections, line)
	}
	if m.event != "" {
		sections = append(sections, m.styles.Faint.Render(m.event))
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewHeader() string {
	counts := map[model.Status]int{}
	for _, j := range m.jobs {
		counts[j.Status]++
	}
	title := m.styles.Title.Render("ytdlq · yt-dlp download queue")
	sub := m.styles.Subtitle.Render(fmt.Sprintf("%d queued • %d downloading • %d finished • %d failed • %d cancelled",
		counts[model.StatusQueued], counts[model.StatusDownloading], counts[model.StatusFinished],
		counts[model.StatusError], counts[model.StatusCancelled]))
	return title + "\n" + sub + "\n"
}

func (m Model) viewForm() string {
	label := func(f focus, text string) string {
		if m.focus == f {
			return m.styles.Focused.Render(text)
		}
		return m.styles.Label.Render(text)
	}
	formatText := "‹ " + m.format.Label() + " ›"
	if m.focus == focusFormat {
		formatText = m.styles.Focused.UnsetWidth().Render(formatText)
	}
	lines := []string{
		label(focusURL, "URL") + m.url.View(),
		label(focusFormat, "Format") + formatText,
		label(focusDir, "Save to") + m.dir.View() + "  " + m.styles.Faint.Render("(ctrl+o browse)"),
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m Model) viewPicker() string {
	head := m.styles.Label.UnsetWidth().Render("Pick a folder: " + m.picker.CurrentDirectory)
	hint := m.styles.Faint.Render("enter: choose • esc: cancel")
	return head + "\n" + m.picker.View() + "\n" + hint
}

// viewProgress renders the aggregate bar over every Downloading job.
func (m Model) viewProgress() string {
	var active, sum int
	for _, j := range m.jobs {
		if j.Status == model.StatusDownloading {
			active++
			sum += j.Percent
		}
	}
	if active == 0 {
		return ""
	}
	avg := float64(sum) / float64(active) / 100
	return fmt.Sprintf("%s %s %d downloading", m.spinner.View(), m.bar.ViewAs(avg), active)
}

func columns(width int) []table.Column {
	const fixed = 4 + 12 + 12 + 9
	urlWidth := clamp(width-fixed-12, 20, 100)
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "URL", Width: urlWidth},
		{Title: "Format", Width: 12},
		{Title: "Status", Width: 12},
		{Title: "Progress", Width: 9},
	}
}

func (m Model) rows() []table.Row {
	urlWidth := columns(m.width)[1].Width
	rows := make([]table.Row, 0, len(m.jobs))
	for _, j := range m.jobs {
		id := strconv.Itoa(j.ID)
		if m.marked[j.ID] {
			id = "●" + id
		}
		rows = append(rows, table.Row{
			id,
			truncate(j.URL, urlWidth),
			j.Format.Label(),
			j.Status.String(),
			j.ProgressLabel(),
		})
	}
	return rows
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}

func capitalize(s string) string {
	rs := []rune(s)
	if len(rs) == 0 {
		return s
	}
	rs[0] = unicode.ToUpper(rs[0])
	return string(rs)
}
