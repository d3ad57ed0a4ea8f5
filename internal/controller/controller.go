// Package controller orchestrates the job queue: it validates and appends
// jobs, starts workers, cancels and clears. Every method is safe to call from
// the UI goroutine while workers run.
package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"ytdlq/internal/model"
	"ytdlq/internal/progress"
	"ytdlq/internal/queue"
	"ytdlq/internal/util"
	"ytdlq/internal/worker"
)

// Runner is what the controller needs from a worker.
type Runner interface {
	Run(ctx context.Context, job worker.Job) worker.Result
}

// Controller owns the registry and the lifetime of every worker goroutine.
type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger

	jobs     *queue.Registry
	runner   Runner
	reporter progress.Reporter
	slots    *semaphore.Weighted // nil = unbounded

	wg sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithReporter attaches the observer for job events (used by the TUI).
func WithReporter(rp progress.Reporter) Option {
	return func(c *Controller) {
		if rp != nil {
			c.reporter = rp
		}
	}
}

// WithMaxConcurrent bounds the number of downloads running at once.
// n <= 0 leaves it unbounded.
func WithMaxConcurrent(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.slots = semaphore.NewWeighted(int64(n))
		} else {
			c.slots = nil
		}
	}
}

// New returns a Controller. Workers derive their contexts from ctx, so
// cancelling it stops every download.
func New(ctx context.Context, runner Runner, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(ctx)
	c := &Controller{
		ctx:      ctx,
		cancel:   cancel,
		logger:   log.FromContext(ctx).WithPrefix("queue"),
		jobs:     queue.NewRegistry(),
		runner:   runner,
		reporter: progress.Discard{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Add validates the input and appends a Queued job.
func (c *Controller) Add(rawURL string, format model.Format, dir string) (model.JobSnapshot, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return model.JobSnapshot{}, &ValidationError{Field: "url", Reason: ErrEmptyURL}
	}
	if !format.Valid() {
		return model.JobSnapshot{}, &ValidationError{Field: "format", Value: string(format), Reason: ErrBadFormat}
	}
	dir = util.ExpandHome(dir)
	if ok, err := util.IsDir(dir); err != nil || !ok {
		return model.JobSnapshot{}, &ValidationError{Field: "output_dir", Value: dir, Reason: ErrNotDirectory}
	}

	job := c.jobs.Append(url, format, dir)
	snap := job.Snapshot()
	c.logger.Info("job queued", "job", snap.ID, "url", snap.URL, "format", snap.Format, "dir", snap.OutputDir)
	c.reporter.Update(progress.Update{JobID: snap.ID, Status: snap.Status, Message: "Queued"})
	return snap, nil
}

// StartAll starts a worker for every Queued job and returns their ids.
// Jobs that are already Downloading or terminal are not touched.
func (c *Controller) StartAll() []int {
	var started []int
	for _, job := range c.jobs.Jobs() {
		ctx, cancel := context.WithCancel(c.ctx)
		if !job.Start(cancel) {
			cancel()
			continue
		}
		started = append(started, job.ID())
		c.reporter.Update(progress.Update{JobID: job.ID(), Status: model.StatusDownloading, Message: "Downloading"})

		c.wg.Add(1)
		go c.run(ctx, cancel, job)
	}
	if len(started) > 0 {
		c.logger.Info("started jobs", "count", len(started))
	}
	return started
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, job *queue.Job) {
	defer c.wg.Done()
	defer cancel()

	logger := c.logger.With("job", job.ID())
	ctx = log.WithContext(ctx, logger)

	if c.slots != nil {
		if err := c.slots.Acquire(ctx, 1); err != nil {
			// Cancelled while waiting for a slot.
			c.finish(job, worker.Result{JobID: job.ID(), Outcome: worker.Cancelled}, logger)
			return
		}
		defer c.slots.Release(1)
	}

	res := c.runner.Run(ctx, reportingJob{Job: job, reporter: c.reporter})
	c.finish(job, res, logger)
}

// reportingJob forwards every accepted progress change to the reporter.
type reportingJob struct {
	*queue.Job
	reporter progress.Reporter
}

func (r reportingJob) SetProgress(percent int) bool {
	if !r.Job.SetProgress(percent) {
		return false
	}
	r.reporter.Update(progress.Update{
		JobID:   r.ID(),
		Status:  model.StatusDownloading,
		Percent: percent,
		Message: fmt.Sprintf("Downloading %d%%", percent),
	})
	return true
}

func (c *Controller) finish(job *queue.Job, res worker.Result, logger *log.Logger) {
	detail := ""
	if res.Err != nil {
		detail = res.Err.Error()
	}
	job.SetAttempts(res.Attempts)
	status := job.Complete(res.Outcome.Status(), detail, res.OutputPath)

	switch status {
	case model.StatusFinished:
		logger.Info("job finished", "output", res.OutputPath)
	case model.StatusCancelled:
		logger.Info("job cancelled")
	default:
		logger.Error("job failed", "err", res.Err, "attempts", res.Attempts)
	}

	snap := job.Snapshot()
	var err error
	if status == model.StatusError {
		err = res.Err
	}
	c.reporter.Result(progress.Result{
		JobID:      snap.ID,
		Status:     snap.Status,
		OutputPath: snap.OutputPath,
		Err:        err,
	})
}

// Cancel marks every referenced non-terminal job Cancelled immediately and
// signals its worker, without waiting for it. Unknown ids are ignored.
// It returns the ids that were actually cancelled.
func (c *Controller) Cancel(ids ...int) []int {
	var cancelled []int
	for _, id := range ids {
		job, ok := c.jobs.Get(id)
		if !ok {
			continue
		}
		if !job.RequestCancel() {
			continue
		}
		cancelled = append(cancelled, id)
		c.logger.Info("job cancel requested", "job", id)
		c.reporter.Update(progress.Update{JobID: id, Status: model.StatusCancelled, Percent: job.Snapshot().Percent, Message: "Cancelled"})
	}
	return cancelled
}

// ClearCompleted removes every Finished, Error and Cancelled job and returns
// their ids.
func (c *Controller) ClearCompleted() []int {
	removed := c.jobs.RemoveTerminal()
	if len(removed) > 0 {
		c.logger.Info("cleared jobs", "count", len(removed))
	}
	return removed
}

// Snapshot returns copies of all jobs in queue order.
func (c *Controller) Snapshot() []model.JobSnapshot {
	return c.jobs.All()
}

// Get returns a copy of one job.
func (c *Controller) Get(id int) (model.JobSnapshot, bool) {
	job, ok := c.jobs.Get(id)
	if !ok {
		return model.JobSnapshot{}, false
	}
	return job.Snapshot(), true
}

// Wait blocks until every started worker has returned or ctx is done. When
// ctx ends first the workers keep running and a helper goroutine stays
// parked until they return; call Shutdown to cancel them.
func (c *Controller) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown cancels every unfinished job and waits for the workers.
func (c *Controller) Shutdown() {
	var ids []int
	for _, s := range c.jobs.All() {
		if !s.Status.IsTerminal() {
			ids = append(ids, s.ID)
		}
	}
	c.Cancel(ids...)
	c.cancel()
	c.wg.Wait()
}
