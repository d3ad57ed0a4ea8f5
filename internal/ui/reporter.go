package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"ytdlq/internal/progress"
)

// Reporter turns controller events into tea messages. Updates are dropped
// when the channel is full (the model re-reads the queue on every tick);
// results are always delivered unless the UI has gone away.
type Reporter struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

// NewReporter returns a Reporter for one program run.
func NewReporter() *Reporter {
	return &Reporter{
		ch:   make(chan tea.Msg, 256),
		done: make(chan struct{}),
	}
}

func (r *Reporter) Update(u progress.Update) {
	select {
	case r.ch <- jobUpdateMsg{U: u}:
	default:
	}
}

func (r *Reporter) Result(res progress.Result) {
	select {
	case r.ch <- jobResultMsg{R: res}:
	case <-r.done:
	}
}

// Close releases workers blocked in Result once the UI stops reading.
func (r *Reporter) Close() {
	r.once.Do(func() { close(r.done) })
}

func (r *Reporter) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-r.ch:
			return msg
		case <-r.done:
			return nil
		}
	}
}
