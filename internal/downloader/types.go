package downloader

import (
	"context"

	"ytdlq/internal/model"
)

// Request is one download as the worker asks for it.
type Request struct {
	URL       string
	OutputDir string
	Format    model.Format
}

// AudioExtract is the post-processing directive for audio jobs.
type AudioExtract struct {
	Codec   string // e.g. "mp3"
	Quality string // yt-dlp --audio-quality value, e.g. "192K"
}

// Config is the downloader configuration derived from a Request.
type Config struct {
	OutputTemplate string
	FormatSelector string
	MergeFormat    string        // container for merged video+audio; empty for audio jobs
	ExtractAudio   *AudioExtract // nil for video jobs
}

// Event is one streaming progress report from the downloader.
type Event struct {
	Status          string // "downloading", "finished", "error"
	DownloadedBytes int64
	TotalBytes      int64 // 0 when unknown
}

// Percent returns floor(downloaded/total*100) and false when the total size
// is unknown.
func (e Event) Percent() (int, bool) {
	if e.TotalBytes <= 0 {
		return 0, false
	}
	if e.DownloadedBytes <= 0 {
		return 0, true
	}
	p := e.DownloadedBytes * 100 / e.TotalBytes
	if p > 100 {
		p = 100
	}
	return int(p), true
}

// ProgressFunc is invoked for every progress event. Returning a non-nil
// error aborts the download; Download then returns that error.
type ProgressFunc func(Event) error

// Outcome describes a completed download.
type Outcome struct {
	OutputPath string // empty when the downloader did not report it
}

// Downloader fetches one URL into a directory.
type Downloader interface {
	Download(ctx context.Context, req Request, onProgress ProgressFunc) (Outcome, error)
}
