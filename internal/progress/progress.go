// Package progress carries job events from the controller to whoever renders
// them (the TUI, or the plain logger in headless mode).
package progress

import "ytdlq/internal/model"

// Update conveys a status or percentage change for a job.
type Update struct {
	JobID   int
	Status  model.Status
	Percent int
	Message string // short human-friendly status line
}

// Result is emitted once per started job when its worker returns.
type Result struct {
	JobID      int
	Status     model.Status
	OutputPath string
	Err        error // nil on success and on cancellation
}

// Reporter is implemented by UI or any observer interested in job events.
// Implementations must not block for long; they are called from workers.
type Reporter interface {
	Update(u Update)
	Result(r Result)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Update(Update) {}
func (Discard) Result(Result) {}
