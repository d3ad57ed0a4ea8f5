// Package worker drives a single job through the downloader and reports a
// typed result. It never touches the queue structure; all it sees of a job
// is the narrow Job interface.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"

	"ytdlq/internal/downloader"
	"ytdlq/internal/model"
)

var (
	// ErrCancelled is returned from the progress callback to abort a
	// download the user cancelled.
	ErrCancelled = errors.New("download cancelled")

	ErrPanic = errors.New("worker panicked")
)

// DefaultRetryBackoff is the wait before the first retry; it doubles on
// every further attempt.
const DefaultRetryBackoff = 2 * time.Second

// MaxRetryBackoff caps the doubling delay between attempts.
const MaxRetryBackoff = 5 * time.Minute

// Outcome is the single terminal transition of a worker.
type Outcome int

const (
	Finished Outcome = iota
	Cancelled
	Failed
)

// Status maps the outcome onto the job status it produces.
func (o Outcome) Status() model.Status {
	switch o {
	case Finished:
		return model.StatusFinished
	case Cancelled:
		return model.StatusCancelled
	default:
		return model.StatusError
	}
}

func (o Outcome) String() string {
	return o.Status().String()
}

// Result is what Run returns instead of raising.
type Result struct {
	JobID      int
	Outcome    Outcome
	Err        error // transfer error for Failed, nil otherwise
	OutputPath string
	Attempts   int
}

// Job is the part of a job record a worker reads and writes.
type Job interface {
	ID() int
	URL() string
	Format() model.Format
	OutputDir() string
	CancelRequested() bool
	SetProgress(percent int) bool
}

// Worker runs downloads. One Worker is shared by all jobs; Run is safe for
// concurrent use.
type Worker struct {
	dl           downloader.Downloader
	retries      int
	retryBackoff time.Duration
}

// Option configures a Worker.
type Option func(*Worker)

// WithRetries allows n extra attempts after a failed transfer, waiting
// backoff, 2*backoff, 4*backoff... between them, never more than MaxRetryBackoff.
func WithRetries(n int, backoff time.Duration) Option {
	return func(w *Worker) {
		if n < 0 {
			n = 0
		}
		w.retries = n
		if backoff > 0 {
			w.retryBackoff = backoff
		}
	}
}

// New returns a Worker using dl.
func New(dl downloader.Downloader, opts ...Option) *Worker {
	w := &Worker{dl: dl, retryBackoff: DefaultRetryBackoff}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Run downloads job.URL() into job.OutputDir() and blocks until the
// downloader returns. The outcome is Cancelled exactly when the job's cancel
// flag is set, Finished on clean completion, Failed otherwise.
func (w *Worker) Run(ctx context.Context, job Job) (res Result) {
	res.JobID = job.ID()
	logger := log.FromContext(ctx).With("job", job.ID())

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic recovered", "panic", r, "stack", string(debug.Stack()))
			res.Outcome = Failed
			res.Err = fmt.Errorf("%w: %v", ErrPanic, r)
			if job.CancelRequested() {
				res.Outcome, res.Err = Cancelled, nil
			}
		}
	}()

	req := downloader.Request{
		URL:       job.URL(),
		OutputDir: job.OutputDir(),
		Format:    job.Format(),
	}

	for attempt := 0; attempt <= w.retries; attempt++ {
		if job.CancelRequested() {
			res.Outcome = Cancelled
			return res
		}
		if attempt > 0 {
			delay := backoff(w.retryBackoff, attempt)
			logger.Warn("retrying download", "attempt", attempt+1, "in", delay, "err", res.Err)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			if job.CancelRequested() {
				res.Outcome, res.Err = Cancelled, nil
				return res
			}
		}

		res.Attempts = attempt + 1
		logger.Debug("download attempt", "attempt", res.Attempts, "url", req.URL, "format", req.Format)
		out, err := w.dl.Download(ctx, req, w.progressFunc(job))
		if job.CancelRequested() {
			res.Outcome, res.Err = Cancelled, nil
			return res
		}
		if err == nil {
			res.Outcome = Finished
			res.Err = nil
			res.OutputPath = out.OutputPath
			return res
		}
		res.Err = err
		if ctx.Err() != nil {
			break
		}
	}

	res.Outcome = Failed
	return res
}

func (w *Worker) progressFunc(job Job) downloader.ProgressFunc {
	return func(ev downloader.Event) error {
		if job.CancelRequested() {
			return ErrCancelled
		}
		if pct, ok := ev.Percent(); ok {
			job.SetProgress(pct)
		}
		return nil
	}
}

// backoff returns base doubled once per earlier retry, capped at MaxRetryBackoff.
func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 1; i < attempt && d < MaxRetryBackoff; i++ {
		d *= 2
	}
	return min(d, MaxRetryBackoff)
}
