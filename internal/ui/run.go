package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"ytdlq/internal/controller"
	"ytdlq/internal/model"
	"ytdlq/internal/util"
)

// ErrJobsFailed is wrapped by the error Run returns when the TUI exited
// normally but some downloads ended in Error.
var ErrJobsFailed = errors.New("download(s) failed")

// Config is what the TUI needs besides the controller.
type Config struct {
	Options        model.Options
	DownloaderPath string
	Runner         util.CmdRunner // used for the update check
	URLs           []string       // queued before the first frame
}

// Run opens the TUI on ctrl, whose reporter must be rep. When the user quits,
// every unfinished job is cancelled and Run waits for the workers. It returns
// an error wrapping ErrJobsFailed that lists the jobs that failed, or the
// program's own error if the TUI could not run.
func Run(ctx context.Context, ctrl *controller.Controller, rep *Reporter, cfg Config) error {
	defer ctrl.Shutdown()
	defer rep.Close()

	m := newModel(ctx, ctrl, rep, cfg)
	for _, u := range cfg.URLs {
		if _, err := ctrl.Add(u, m.format, m.dir.Value()); err != nil {
			m.showError(err)
		}
	}
	m.refresh()

	prog := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	final, err := prog.Run()
	if err != nil {
		return err
	}

	fm, ok := final.(Model)
	if !ok {
		return nil
	}
	return failedJobs(fm.ctrl.Snapshot())
}

// failedJobs lists every job in Error, wrapping ErrJobsFailed.
func failedJobs(jobs []model.JobSnapshot) error {
	var failed []string
	for _, j := range jobs {
		if j.Status == model.StatusError {
			failed = append(failed, fmt.Sprintf("- %s: %s", j.URL, j.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d %w:\n%s", len(failed), ErrJobsFailed, strings.Join(failed, "\n"))
}
