package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ytdlq/internal/config"
	"ytdlq/internal/controller"
	"ytdlq/internal/dirs"
	"ytdlq/internal/downloader"
	"ytdlq/internal/model"
	"ytdlq/internal/progress"
	"ytdlq/internal/util"
	"ytdlq/internal/util/deps"
	"ytdlq/internal/worker"
)

type ctxKey string

const optionsKey ctxKey = "options"

// loadOptions resolves Options once per invocation and stores them, with a
// stderr logger, on the command context.
func loadOptions(cmd *cobra.Command) error {
	opts, err := config.Load()
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	ctx := context.WithValue(cmd.Context(), optionsKey, opts)
	ctx = log.WithContext(ctx, newLogger(os.Stderr, opts))
	cmd.SetContext(ctx)
	return nil
}

func optionsFrom(cmd *cobra.Command) model.Options {
	if v, ok := cmd.Context().Value(optionsKey).(model.Options); ok {
		return v
	}
	return model.Options{Format: model.FormatVideo, Jobs: 3, RetryBackoff: worker.DefaultRetryBackoff}
}

func newLogger(w io.Writer, opts model.Options) *log.Logger {
	level, err := log.ParseLevel(opts.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          dirs.AppName(),
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}

// fileLogger redirects logging to the state dir so it does not draw over
// the TUI. The returned func closes the file.
func fileLogger(ctx context.Context, opts model.Options) (context.Context, func(), error) {
	path, err := dirs.LogFile()
	if err != nil {
		return ctx, func() {}, err
	}
	if err := dirs.EnsureAll(); err != nil {
		return ctx, func() {}, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return ctx, func() {}, fmt.Errorf("open log file: %w", err)
	}
	logger := newLogger(f, opts)
	logger.Info("session started", "pid", os.Getpid())
	return log.WithContext(ctx, logger), func() { _ = f.Close() }, nil
}

// locateDownloader returns the yt-dlp path and warns when ffmpeg is absent.
func locateDownloader(ctx context.Context, opts model.Options) (string, error) {
	dl, err := deps.FindDownloader(opts.DLBinary)
	if err != nil {
		return "", &ExitError{Code: ExitMissingDep, Err: err}
	}
	if _, err := deps.FindFFmpeg(); err != nil {
		log.FromContext(ctx).Warn("ffmpeg not found", "err", err)
	}
	return dl, nil
}

// newController wires downloader → worker → controller for one session.
func newController(ctx context.Context, opts model.Options, dlPath string, runner util.CmdRunner, rep progress.Reporter) *controller.Controller {
	dl := downloader.New(downloader.Options{
		DownloaderPath: dlPath,
		Verbose:        opts.Verbose,
		Runner:         runner,
	})
	w := worker.New(dl, worker.WithRetries(opts.Retries, opts.RetryBackoff))
	return controller.New(ctx, w,
		controller.WithReporter(rep),
		controller.WithMaxConcurrent(opts.Jobs),
	)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}
