package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ytdlq/internal/downloader"
	"ytdlq/internal/model"
)

type fakeJob struct {
	mu        sync.Mutex
	id        int
	url       string
	cancelled bool
	percent   int
	updates   []int

	onProgress func(percent int) // called outside the lock
}

func (j *fakeJob) ID() int               { return j.id }
func (j *fakeJob) URL() string           { return j.url }
func (j *fakeJob) Format() model.Format  { return model.FormatVideo }
func (j *fakeJob) OutputDir() string     { return "/tmp/out" }
func (j *fakeJob) CancelRequested() bool { j.mu.Lock(); defer j.mu.Unlock(); return j.cancelled }

func (j *fakeJob) SetProgress(p int) bool {
	j.mu.Lock()
	if p <= j.percent {
		j.mu.Unlock()
		return false
	}
	j.percent = p
	j.updates = append(j.updates, p)
	hook := j.onProgress
	j.mu.Unlock()
	if hook != nil {
		hook(p)
	}
	return true
}

func (j *fakeJob) cancel() {
	j.mu.Lock()
	j.cancelled = true
	j.mu.Unlock()
}

// scriptedDownloader feeds events to the callback and then returns errs in
// order, one per call.
type scriptedDownloader struct {
	events []downloader.Event
	errs   []error
	calls  int
	before func(call int)
}

func (d *scriptedDownloader) Download(_ context.Context, _ downloader.Request, onProgress downloader.ProgressFunc) (downloader.Outcome, error) {
	call := d.calls
	d.calls++
	if d.before != nil {
		d.before(call)
	}
	for _, ev := range d.events {
		if err := onProgress(ev); err != nil {
			return downloader.Outcome{}, err
		}
	}
	if call < len(d.errs) && d.errs[call] != nil {
		return downloader.Outcome{}, d.errs[call]
	}
	return downloader.Outcome{OutputPath: "/tmp/out/video.mp4"}, nil
}

func TestRun_Finished(t *testing.T) {
	job := &fakeJob{id: 7, url: "http://x/video"}
	dl := &scriptedDownloader{events: []downloader.Event{
		{Status: "downloading", DownloadedBytes: 50, TotalBytes: 200},
		{Status: "downloading", DownloadedBytes: 75, TotalBytes: 200},
		{Status: "downloading", DownloadedBytes: 120},
		{Status: "finished", DownloadedBytes: 200, TotalBytes: 200},
	}}

	res := New(dl).Run(context.Background(), job)
	if res.Outcome != Finished || res.Err != nil {
		t.Fatalf("Run() = %+v, want Finished", res)
	}
	if res.OutputPath != "/tmp/out/video.mp4" {
		t.Errorf("OutputPath = %q", res.OutputPath)
	}
	if res.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", res.Attempts)
	}
	want := []int{25, 37, 100}
	if len(job.updates) != len(want) {
		t.Fatalf("progress updates = %v, want %v", job.updates, want)
	}
	for i := range want {
		if job.updates[i] != want[i] {
			t.Errorf("update %d = %d, want %d", i, job.updates[i], want[i])
		}
	}
}

func TestRun_CancelObservedInCallback(t *testing.T) {
	job := &fakeJob{id: 1}
	job.onProgress = func(pct int) {
		if pct == 10 {
			job.cancel()
		}
	}
	dl := &scriptedDownloader{events: []downloader.Event{
		{Status: "downloading", DownloadedBytes: 10, TotalBytes: 100},
		{Status: "downloading", DownloadedBytes: 20, TotalBytes: 100},
	}}

	res := New(dl).Run(context.Background(), job)
	if res.Outcome != Cancelled {
		t.Fatalf("Outcome = %v, want Cancelled", res.Outcome)
	}
	if res.Err != nil {
		t.Errorf("Err = %v, want nil for cancellation", res.Err)
	}
	if job.percent != 10 {
		t.Errorf("percent = %d, want 10 (no updates after cancel)", job.percent)
	}
}

func TestRun_CancelBeforeStart(t *testing.T) {
	job := &fakeJob{id: 1}
	job.cancel()
	dl := &scriptedDownloader{}
	res := New(dl).Run(context.Background(), job)
	if res.Outcome != Cancelled {
		t.Fatalf("Outcome = %v, want Cancelled", res.Outcome)
	}
	if dl.calls != 0 {
		t.Errorf("downloader called %d times, want 0", dl.calls)
	}
}

func TestRun_CompletionAfterCancelIsCancelled(t *testing.T) {
	job := &fakeJob{id: 1}
	dl := &scriptedDownloader{before: func(int) { job.cancel() }}
	res := New(dl).Run(context.Background(), job)
	if res.Outcome != Cancelled {
		t.Fatalf("Outcome = %v, want Cancelled", res.Outcome)
	}
}

func TestRun_Failure(t *testing.T) {
	boom := errors.New("HTTP Error 403: Forbidden")
	job := &fakeJob{id: 3}
	dl := &scriptedDownloader{errs: []error{boom}}
	res := New(dl).Run(context.Background(), job)
	if res.Outcome != Failed {
		t.Fatalf("Outcome = %v, want Failed", res.Outcome)
	}
	if !errors.Is(res.Err, boom) {
		t.Errorf("Err = %v, want %v", res.Err, boom)
	}
	if res.Outcome.Status() != model.StatusError {
		t.Errorf("Status() = %v, want Error", res.Outcome.Status())
	}
}

func TestRun_RetriesThenSucceeds(t *testing.T) {
	job := &fakeJob{id: 4}
	dl := &scriptedDownloader{errs: []error{errors.New("timeout"), errors.New("reset")}}
	w := New(dl, WithRetries(2, time.Millisecond))

	res := w.Run(context.Background(), job)
	if res.Outcome != Finished {
		t.Fatalf("Outcome = %v (err %v), want Finished", res.Outcome, res.Err)
	}
	if res.Attempts != 3 || dl.calls != 3 {
		t.Errorf("Attempts = %d, calls = %d, want 3", res.Attempts, dl.calls)
	}
}

func TestRun_RetriesExhausted(t *testing.T) {
	job := &fakeJob{id: 5}
	last := errors.New("still broken")
	dl := &scriptedDownloader{errs: []error{errors.New("broken"), last}}
	res := New(dl, WithRetries(1, time.Millisecond)).Run(context.Background(), job)
	if res.Outcome != Failed || !errors.Is(res.Err, last) {
		t.Fatalf("Run() = %+v, want Failed with last error", res)
	}
}

func TestRun_NoRetryAfterCancel(t *testing.T) {
	job := &fakeJob{id: 6}
	dl := &scriptedDownloader{
		errs:   []error{errors.New("broken")},
		before: func(int) { job.cancel() },
	}
	res := New(dl, WithRetries(3, time.Millisecond)).Run(context.Background(), job)
	if res.Outcome != Cancelled {
		t.Fatalf("Outcome = %v, want Cancelled", res.Outcome)
	}
	if dl.calls != 1 {
		t.Errorf("downloader called %d times, want 1", dl.calls)
	}
}

type panicDownloader struct{}

func (panicDownloader) Download(context.Context, downloader.Request, downloader.ProgressFunc) (downloader.Outcome, error) {
	panic("boom")
}

func TestRun_PanicBecomesFailure(t *testing.T) {
	res := New(panicDownloader{}).Run(context.Background(), &fakeJob{id: 9})
	if res.Outcome != Failed || !errors.Is(res.Err, ErrPanic) {
		t.Fatalf("Run() = %+v, want Failed with ErrPanic", res)
	}
	if res.JobID != 9 {
		t.Errorf("JobID = %d, want 9", res.JobID)
	}
}

func TestOutcomeStatus(t *testing.T) {
	tests := []struct {
		o    Outcome
		want model.Status
	}{
		{Finished, model.StatusFinished},
		{Cancelled, model.StatusCancelled},
		{Failed, model.StatusError},
	}
	for _, tt := range tests {
		if got := tt.o.Status(); got != tt.want {
			t.Errorf("Outcome(%d).Status() = %v, want %v", tt.o, got, tt.want)
		}
	}
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		base    time.Duration
		attempt int
		want    time.Duration
	}{
		{base: time.Second, attempt: 1, want: time.Second},
		{base: time.Second, attempt: 2, want: 2 * time.Second},
		{base: time.Second, attempt: 4, want: 8 * time.Second},
		{base: time.Second, attempt: 40, want: MaxRetryBackoff},
		{base: time.Second, attempt: 100, want: MaxRetryBackoff},
		{base: time.Hour, attempt: 1, want: MaxRetryBackoff},
		{base: 0, attempt: 3, want: 0},
	}
	for _, tt := range tests {
		if got := backoff(tt.base, tt.attempt); got != tt.want {
			t.Errorf("backoff(%v, %d) = %v, want %v", tt.base, tt.attempt, got, tt.want)
		}
	}
}
