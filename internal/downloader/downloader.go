// Package downloader drives yt-dlp as a subprocess. It owns the translation
// from a job's format choice to yt-dlp flags and the parsing of its progress
// output; everything network- and media-related happens inside yt-dlp.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"ytdlq/internal/model"
	"ytdlq/internal/util"
)

const (
	VideoFormatSelector = "bestvideo[ext=mp4]+bestaudio/best"
	AudioFormatSelector = "bestaudio/best"
	VideoMergeFormat    = "mp4"
	AudioCodec          = "mp3"
	AudioQuality        = "192K"

	// OutputName is the yt-dlp output template appended to the job directory.
	OutputName = "%(title)s.%(ext)s"
)

// Options controls downloader behavior.
type Options struct {
	DownloaderPath string // Path to yt-dlp
	Verbose        bool
	Runner         util.CmdRunner // nil = os/exec
}

// YTDLP implements Downloader on top of the yt-dlp binary.
type YTDLP struct {
	opts Options
}

// New returns a yt-dlp backed Downloader.
func New(opts Options) *YTDLP {
	if opts.Runner == nil {
		opts.Runner = util.NewDefaultRunner()
	}
	return &YTDLP{opts: opts}
}

// ConfigFor derives the downloader configuration for a request.
func ConfigFor(req Request) Config {
	cfg := Config{
		OutputTemplate: filepath.Join(req.OutputDir, OutputName),
	}
	switch req.Format {
	case model.FormatAudio:
		cfg.FormatSelector = AudioFormatSelector
		cfg.ExtractAudio = &AudioExtract{Codec: AudioCodec, Quality: AudioQuality}
	default:
		cfg.FormatSelector = VideoFormatSelector
		cfg.MergeFormat = VideoMergeFormat
	}
	return cfg
}

// BuildArgs renders cfg as yt-dlp command-line arguments for url.
func BuildArgs(cfg Config, url string) []string {
	args := []string{
		"--newline",
		"--progress",
		"--progress-template", progressTemplate,
		"--print", savedTemplate,
		"--no-simulate",
		"-o", cfg.OutputTemplate,
		"-f", cfg.FormatSelector,
	}
	if cfg.MergeFormat != "" {
		args = append(args, "--merge-output-format", cfg.MergeFormat)
	}
	if a := cfg.ExtractAudio; a != nil {
		args = append(args, "-x", "--audio-format", a.Codec, "--audio-quality", a.Quality)
	}
	return append(args, "--", url)
}

// Download runs yt-dlp for req and blocks until it exits. onProgress is
// called serially for every progress line; if it returns an error the
// subprocess is killed and that error is returned.
func (y *YTDLP) Download(ctx context.Context, req Request, onProgress ProgressFunc) (Outcome, error) {
	if y.opts.DownloaderPath == "" {
		return Outcome{}, errors.New("downloader path is required")
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var (
		mu      sync.Mutex
		out     Outcome
		aborted error
		lastErr string // last "ERROR:" line yt-dlp printed
	)
	handle := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		if p, ok := parseSaved(line); ok {
			out.OutputPath = p
			return
		}
		ev, ok := ParseProgress(line)
		if !ok || onProgress == nil || aborted != nil {
			return
		}
		if err := onProgress(ev); err != nil {
			aborted = err
			cancel(err)
		}
	}

	handleStderr := func(line string) {
		if msg, ok := parseError(line); ok {
			mu.Lock()
			lastErr = msg
			mu.Unlock()
		}
		handle(line)
	}

	_, runErr := y.opts.Runner.Run(ctx, util.CmdSpec{
		Path:       y.opts.DownloaderPath,
		Args:       BuildArgs(ConfigFor(req), req.URL),
		Verbose:    y.opts.Verbose,
		StdoutLine: handle,
		StderrLine: handleStderr,
	})

	mu.Lock()
	defer mu.Unlock()
	if aborted != nil {
		return out, aborted
	}
	if runErr != nil {
		if lastErr != "" {
			return out, fmt.Errorf("yt-dlp: %s: %w", lastErr, runErr)
		}
		return out, fmt.Errorf("yt-dlp: %w", runErr)
	}
	return out, nil
}
