// Package model holds the plain data types shared by the queue, the workers
// and the presentation layer.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Format selects what the downloader produces for a job.
type Format string

const (
	FormatVideo Format = "video"
	FormatAudio Format = "audio"
)

// Label returns the human-facing name used in the form and the job table.
func (f Format) Label() string {
	switch f {
	case FormatAudio:
		return "Audio (MP3)"
	case FormatVideo:
		return "Video (MP4)"
	default:
		return string(f)
	}
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	return f == FormatVideo || f == FormatAudio
}

// ParseFormat accepts "video"/"audio" (any case) as well as the labels.
func ParseFormat(s string) (Format, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "video" || strings.HasPrefix(v, "video "):
		return FormatVideo, nil
	case v == "audio" || strings.HasPrefix(v, "audio "):
		return FormatAudio, nil
	}
	return "", fmt.Errorf("invalid format %q (valid: video|audio)", s)
}

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued      Status = "Queued"
	StatusDownloading Status = "Downloading"
	StatusFinished    Status = "Finished"
	StatusError       Status = "Error"
	StatusCancelled   Status = "Cancelled"
)

func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true once the job can no longer change state.
func (s Status) IsTerminal() bool {
	return s == StatusFinished || s == StatusError || s == StatusCancelled
}

// JobSnapshot is a copy of a job record taken under its lock. It is safe to
// hand to any goroutine.
type JobSnapshot struct {
	ID              int
	URL             string
	Format          Format
	OutputDir       string
	Status          Status
	Percent         int
	CancelRequested bool

	Detail     string // error text when Status is Error
	OutputPath string // final file, when the downloader reported it
	Attempts   int

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// ProgressLabel renders the progress column, e.g. "25%".
func (j JobSnapshot) ProgressLabel() string {
	return fmt.Sprintf("%d%%", j.Percent)
}

// Elapsed returns how long the job has been (or was) running.
func (j JobSnapshot) Elapsed(now time.Time) time.Duration {
	if j.StartedAt.IsZero() {
		return 0
	}
	if !j.FinishedAt.IsZero() {
		return j.FinishedAt.Sub(j.StartedAt)
	}
	return now.Sub(j.StartedAt)
}
