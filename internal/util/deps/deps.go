// Package deps locates the external binaries ytdlq shells out to.
package deps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"ytdlq/internal/util"
)

// ErrNotFound is wrapped by every lookup failure.
var ErrNotFound = errors.New("binary not found")

// FindDownloader returns the path to yt-dlp. A non-empty customPath is tried
// as a file first and then looked up in PATH.
func FindDownloader(customPath string) (string, error) {
	if customPath != "" {
		p := util.ExpandHome(customPath)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, nil
		}
		if p, err := exec.LookPath(customPath); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("%w: downloader at %q", ErrNotFound, customPath)
	}
	if p, err := exec.LookPath("yt-dlp"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: yt-dlp is not in PATH, install it from https://github.com/yt-dlp/yt-dlp", ErrNotFound)
}

// FindFFmpeg returns the path to ffmpeg. yt-dlp needs it to merge video and
// audio streams and to extract mp3.
func FindFFmpeg() (string, error) {
	if p, err := exec.LookPath("ffmpeg"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: ffmpeg is not in PATH, video merging and mp3 extraction will fail", ErrNotFound)
}

// Tool describes one located dependency for the doctor report.
type Tool struct {
	Name    string
	Path    string
	Version string
	Err     error
}

// Probe runs "<path> <versionArgs...>" and keeps the first output line as the
// version. A failed lookup (lookupErr) is recorded without running anything.
func Probe(ctx context.Context, runner util.CmdRunner, name, path string, lookupErr error, versionArgs ...string) Tool {
	t := Tool{Name: name, Path: path, Err: lookupErr}
	if lookupErr != nil {
		return t
	}
	res, err := runner.Run(ctx, util.CmdSpec{Path: path, Args: versionArgs, CaptureStdout: true})
	if err != nil {
		t.Err = err
		return t
	}
	out := strings.TrimSpace(string(res.Stdout))
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	t.Version = strings.TrimSpace(out)
	return t
}
