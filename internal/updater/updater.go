// Package updater asks yt-dlp to update itself and reports whether a new
// version was installed. It never touches the job queue.
package updater

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"ytdlq/internal/util"
)

const updatingMarker = "Updating to version"

// Notice is the outcome of one update check.
type Notice struct {
	Available bool
	Message   string // trimmed yt-dlp output
}

// Check runs "<binary> -U" once. yt-dlp exits non-zero for package-manager
// installs that cannot self-update, so output is still inspected on error.
func Check(ctx context.Context, runner util.CmdRunner, binary string) (Notice, error) {
	logger := log.FromContext(ctx).WithPrefix("update")

	res, err := runner.Run(ctx, util.CmdSpec{Path: binary, Args: []string{"-U"}, CaptureStdout: true})
	out := strings.TrimSpace(string(res.Stdout))
	n := Notice{Available: strings.Contains(out, updatingMarker), Message: out}
	if n.Available {
		logger.Info("yt-dlp updated", "output", out)
		return n, nil
	}
	if err != nil {
		if msg := strings.TrimSpace(string(res.Stderr)); msg != "" {
			return n, fmt.Errorf("yt-dlp -U: %s: %w", lastLine(msg), err)
		}
		return n, fmt.Errorf("yt-dlp -U: %w", err)
	}
	logger.Debug("yt-dlp is up to date", "output", out)
	return n, nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
