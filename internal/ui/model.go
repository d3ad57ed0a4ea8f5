package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"ytdlq/internal/controller"
	"ytdlq/internal/model"
	"ytdlq/internal/updater"
	"ytdlq/internal/util"
	"ytdlq/internal/util/format"
)

type focus int

const (
	focusURL focus = iota
	focusFormat
	focusDir
	focusTable
	focusCount
)

// banner is a dismissable message box above the table.
type banner struct {
	title string
	text  string
}

type Model struct {
	ctx      context.Context
	ctrl     *controller.Controller
	reporter *Reporter
	cfg      Config
	logger   *log.Logger

	// Form
	url    textinput.Model
	dir    textinput.Model
	format model.Format
	focus  focus

	// Directory picker, shown instead of the form while open
	picker  filepicker.Model
	picking bool

	// Queue
	table  table.Model
	jobs   []model.JobSnapshot
	marked map[int]bool

	warning *banner
	notice  *banner
	event   string

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	bar     bubblesprogress.Model
	styles  Styles

	width, height int
}

func newModel(ctx context.Context, ctrl *controller.Controller, rep *Reporter, cfg Config) Model {
	sty := defaultStyles()

	url := textinput.New()
	url.Placeholder = "https://www.youtube.com/watch?v=…"
	url.Prompt = ""
	url.Focus()

	dir := textinput.New()
	dir.Prompt = ""
	dir.SetValue(cfg.Options.OutDir)

	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.CurrentDirectory = pickerStart(cfg.Options.OutDir)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(sty.Spinner))

	tbl := table.New(
		table.WithColumns(columns(80)),
		table.WithHeight(8),
		table.WithStyles(sty.Table),
	)

	f := cfg.Options.Format
	if !f.Valid() {
		f = model.FormatVideo
	}

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		reporter: rep,
		cfg:      cfg,
		logger:   log.FromContext(ctx).WithPrefix("ui"),
		url:      url,
		dir:      dir,
		format:   f,
		picker:   fp,
		table:    tbl,
		marked:   make(map[int]bool),
		keys:     defaultKeys(),
		help:     help.New(),
		spinner:  sp,
		bar:      bubblesprogress.New(bubblesprogress.WithDefaultGradient(), bubblesprogress.WithWidth(40)),
		styles:   sty,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, m.reporter.listen()}
	if m.cfg.Options.CheckUpdates && m.cfg.DownloaderPath != "" && m.cfg.Runner != nil {
		cmds = append(cmds, m.checkUpdateCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) checkUpdateCmd() tea.Cmd {
	ctx, runner, bin := m.ctx, m.cfg.Runner, m.cfg.DownloaderPath
	return func() tea.Msg {
		n, err := updater.Check(ctx, runner, bin)
		return updateCheckedMsg{Notice: n, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(columns(msg.Width))
		m.table.SetRows(m.rows())
		m.bar.Width = clamp(msg.Width-30, 10, 60)
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case jobUpdateMsg:
		m.refresh()
		return m, m.reporter.listen()

	case jobResultMsg:
		m.event = m.describeResult(msg.R.JobID, msg.R.Status, msg.R.OutputPath, msg.R.Err)
		m.refresh()
		return m, m.reporter.listen()

	case updateCheckedMsg:
		if msg.Err != nil {
			m.logger.Debug("update check failed", "err", msg.Err)
		}
		if msg.Notice.Available {
			m.notice = &banner{title: "Update Available", text: msg.Notice.Message}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)
	}

	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.StartAll):
		m.startAll()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.cancelSelected()
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.clearCompleted()
		return m, nil
	case key.Matches(msg, m.keys.Format):
		m.toggleFormat()
		return m, nil
	case key.Matches(msg, m.keys.Browse):
		m.picking = true
		m.picker.CurrentDirectory = pickerStart(m.dir.Value())
		return m, m.picker.Init()
	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case key.Matches(msg, m.keys.Back):
		m.warning = nil
		m.notice = nil
		return m, nil
	}

	switch m.focus {
	case focusTable:
		switch {
		case key.Matches(msg, m.keys.Mark):
			m.toggleMark()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case focusFormat:
		switch msg.String() {
		case "left", "right", " ", "h", "l":
			m.toggleFormat()
			return m, nil
		}
	}

	if key.Matches(msg, m.keys.Add) {
		m.add()
		return m, nil
	}

	return m, m.updateFocused(msg)
}

// updateFocused hands msg to the focused text input. Cursor blinks rely on it.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusURL:
		m.url, cmd = m.url.Update(msg)
	case focusDir:
		m.dir, cmd = m.dir.Update(msg)
	}
	return cmd
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.picking = false
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.dir.SetValue(path)
		m.picking = false
		m.warning = nil
	}
	return m, cmd
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.url.Blur()
	m.dir.Blur()
	m.table.Blur()
	switch f {
	case focusURL:
		return m.url.Focus()
	case focusDir:
		return m.dir.Focus()
	case focusTable:
		m.table.Focus()
	}
	return nil
}

func (m *Model) add() {
	snap, err := m.ctrl.Add(m.url.Value(), m.format, m.dir.Value())
	if err != nil {
		m.showError(err)
		return
	}
	m.warning = nil
	m.url.SetValue("")
	m.event = fmt.Sprintf("Queued #%d %s", snap.ID, snap.URL)
	m.refresh()
}

func (m *Model) startAll() {
	started := m.ctrl.StartAll()
	if len(started) == 0 {
		m.event = "Nothing queued"
	} else {
		m.event = fmt.Sprintf("Started %d job(s)", len(started))
	}
	m.refresh()
}

// cancelSelected cancels the marked rows, or the cursor row when nothing is
// marked.
func (m *Model) cancelSelected() {
	ids := m.markedIDs()
	if len(ids) == 0 {
		if id, ok := m.cursorID(); ok {
			ids = []int{id}
		}
	}
	if len(ids) == 0 {
		return
	}
	cancelled := m.ctrl.Cancel(ids...)
	for _, id := range ids {
		delete(m.marked, id)
	}
	m.event = fmt.Sprintf("Cancelled %d job(s)", len(cancelled))
	m.refresh()
}

func (m *Model) clearCompleted() {
	removed := m.ctrl.ClearCompleted()
	for _, id := range removed {
		delete(m.marked, id)
	}
	m.event = fmt.Sprintf("Cleared %d job(s)", len(removed))
	m.refresh()
}

func (m *Model) toggleFormat() {
	if m.format == model.FormatVideo {
		m.format = model.FormatAudio
	} else {
		m.format = model.FormatVideo
	}
}

func (m *Model) toggleMark() {
	id, ok := m.cursorID()
	if !ok {
		return
	}
	if m.marked[id] {
		delete(m.marked, id)
	} else {
		m.marked[id] = true
	}
	m.table.SetRows(m.rows())
}

func (m *Model) showError(err error) {
	var ve *controller.ValidationError
	if errors.As(err, &ve) {
		m.warning = &banner{title: ve.Title(), text: capitalize(ve.Reason.Error()) + "."}
		return
	}
	m.warning = &banner{title: "Error", text: err.Error()}
}

// refresh re-reads the queue and rebuilds the table rows.
func (m *Model) refresh() {
	m.jobs = m.ctrl.Snapshot()
	present := make(map[int]bool, len(m.jobs))
	for _, j := range m.jobs {
		present[j.ID] = true
	}
	for id := range m.marked {
		if !present[id] {
			delete(m.marked, id)
		}
	}
	m.table.SetRows(m.rows())
	if c := m.table.Cursor(); c >= len(m.jobs) && len(m.jobs) > 0 {
		m.table.SetCursor(len(m.jobs) - 1)
	}
}

func (m Model) cursorID() (int, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.jobs) {
		return 0, false
	}
	return m.jobs[c].ID, true
}

func (m Model) markedIDs() []int {
	ids := make([]int, 0, len(m.marked))
	for id := range m.marked {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (m Model) describeResult(id int, st model.Status, path string, err error) string {
	switch {
	case st == model.StatusFinished && path != "":
		name := filepath.Base(path)
		if fi, statErr := os.Stat(path); statErr == nil {
			return fmt.Sprintf("#%d saved: %s (%s)", id, name, format.HumanizeBytes(fi.Size()))
		}
		return fmt.Sprintf("#%d saved: %s", id, name)
	case st == model.StatusError && err != nil:
		return fmt.Sprintf("#%d failed: %v", id, err)
	default:
		return fmt.Sprintf("#%d %s", id, st)
	}
}

func pickerStart(dir string) string {
	dir = util.ExpandHome(dir)
	if ok, _ := util.IsDir(dir); ok {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
