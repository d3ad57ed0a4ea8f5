// Package queue keeps the ordered, id-keyed set of download jobs.
//
// Structure (append/remove) is guarded by the Registry; each Job guards its
// own fields so workers can report progress without touching the registry.
package queue

import (
	"context"
	"sync"
	"time"

	"ytdlq/internal/model"
)

// Job is the live, mutable record for one requested download.
type Job struct {
	mu sync.Mutex

	id        int
	url       string
	format    model.Format
	outputDir string

	status          model.Status
	percent         int
	cancelRequested bool
	detail          string
	outputPath      string
	attempts        int

	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time

	cancel context.CancelFunc
}

func newJob(id int, url string, format model.Format, dir string) *Job {
	return &Job{
		id:        id,
		url:       url,
		format:    format,
		outputDir: dir,
		status:    model.StatusQueued,
		createdAt: time.Now(),
	}
}

// ID never changes, so it is read without locking.
func (j *Job) ID() int { return j.id }

// URL is immutable after creation.
func (j *Job) URL() string { return j.url }

// Format is immutable after creation.
func (j *Job) Format() model.Format { return j.format }

// OutputDir is immutable after creation.
func (j *Job) OutputDir() string { return j.outputDir }

// Snapshot copies the record under its lock.
func (j *Job) Snapshot() model.JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return model.JobSnapshot{
		ID:              j.id,
		URL:             j.url,
		Format:          j.format,
		OutputDir:       j.outputDir,
		Status:          j.status,
		Percent:         j.percent,
		CancelRequested: j.cancelRequested,
		Detail:          j.detail,
		OutputPath:      j.outputPath,
		Attempts:        j.attempts,
		CreatedAt:       j.createdAt,
		StartedAt:       j.startedAt,
		FinishedAt:      j.finishedAt,
	}
}

// Status returns the current status.
func (j *Job) Status() model.Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// CancelRequested reports whether the user asked to cancel this job.
func (j *Job) CancelRequested() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelRequested
}

// Start moves a Queued job to Downloading and attaches the cancel func of the
// worker context. It returns false for any other state, so a job is never
// started twice.
func (j *Job) Start(cancel context.CancelFunc) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != model.StatusQueued || j.cancelRequested {
		return false
	}
	j.status = model.StatusDownloading
	j.startedAt = time.Now()
	j.cancel = cancel
	return true
}

// RequestCancel flags the job and marks it Cancelled right away. The worker,
// if any, observes the flag (and its cancelled context) later. Terminal jobs
// are left alone and false is returned.
func (j *Job) RequestCancel() bool {
	j.mu.Lock()
	if j.status.IsTerminal() {
		j.mu.Unlock()
		return false
	}
	j.cancelRequested = true
	j.status = model.StatusCancelled
	j.finishedAt = time.Now()
	cancel := j.cancel
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return true
}

// SetProgress records a new percentage. Values are clamped to 0..100 and
// never move backwards; updates are ignored unless the job is Downloading.
// It reports whether the stored value changed.
func (j *Job) SetProgress(percent int) bool {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != model.StatusDownloading || percent <= j.percent {
		return false
	}
	j.percent = percent
	return true
}

// SetAttempts records how many downloader runs were made.
func (j *Job) SetAttempts(n int) {
	j.mu.Lock()
	j.attempts = n
	j.mu.Unlock()
}

// Complete writes the worker's terminal state. A cancelled job always ends
// as Cancelled, whatever the worker returned. It returns the resulting status.
func (j *Job) Complete(status model.Status, detail, outputPath string) model.Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancel = nil
	if j.cancelRequested {
		j.status = model.StatusCancelled
		return j.status
	}
	if j.status != model.StatusDownloading {
		return j.status
	}
	j.status = status
	j.detail = detail
	j.finishedAt = time.Now()
	if status == model.StatusFinished {
		j.percent = 100
		j.outputPath = outputPath
	}
	return j.status
}
