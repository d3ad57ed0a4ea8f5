package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ytdlq/internal/model"
	"ytdlq/internal/progress"
	"ytdlq/internal/util"
	"ytdlq/internal/util/format"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "run <urls...>",
		Short:         "Download URLs without the TUI and print a summary",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE:          runHeadless,
	}
}

// runHeadless queues every URL, starts them all, waits and prints a summary.
// Any job ending in Error makes the command exit with ExitDownloadError.
func runHeadless(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &ExitError{Code: ExitCLIError, Err: errors.New("no URLs given and no terminal for the TUI; usage: ytdlq run <urls...>")}
	}
	opts := optionsFrom(cmd)
	ctx := cmd.Context()

	dlPath, err := locateDownloader(ctx, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rep := &lineReporter{w: out}
	ctrl := newController(ctx, opts, dlPath, util.NewDefaultRunner(), rep)
	defer ctrl.Shutdown()

	for _, u := range args {
		if _, err := ctrl.Add(u, opts.Format, opts.OutDir); err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
	}
	ctrl.StartAll()

	waitErr := ctrl.Wait(ctx)
	ctrl.Shutdown()

	jobs := ctrl.Snapshot()
	printSummary(out, jobs)

	if waitErr != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("interrupted: %w", waitErr)}
	}
	failed := 0
	for _, j := range jobs {
		if j.Status == model.StatusError {
			failed++
		}
	}
	if failed > 0 {
		return &ExitError{Code: ExitDownloadError, Err: fmt.Errorf("%d of %d download(s) failed", failed, len(jobs))}
	}
	return nil
}

// lineReporter prints one line per state change and per ten percent.
type lineReporter struct {
	mu   sync.Mutex
	w    io.Writer
	last map[int]int
}

func (r *lineReporter) Update(u progress.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		r.last = make(map[int]int)
	}
	if u.Status == model.StatusDownloading && u.Percent > 0 {
		step := u.Percent / 10
		if prev, ok := r.last[u.JobID]; ok && prev >= step {
			return
		}
		r.last[u.JobID] = step
	}
	fmt.Fprintf(r.w, "[#%d] %s\n", u.JobID, u.Message)
}

func (r *lineReporter) Result(res progress.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case res.Err != nil:
		fmt.Fprintf(r.w, "[#%d] %s: %v\n", res.JobID, res.Status, res.Err)
	case res.OutputPath != "":
		fmt.Fprintf(r.w, "[#%d] %s: %s\n", res.JobID, res.Status, res.OutputPath)
	default:
		fmt.Fprintf(r.w, "[#%d] %s\n", res.JobID, res.Status)
	}
}

func printSummary(w io.Writer, jobs []model.JobSnapshot) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tFORMAT\tTIME\tURL\tRESULT")
	now := time.Now()
	for _, j := range jobs {
		result := j.Detail
		if j.Status == model.StatusFinished && j.OutputPath != "" {
			result = filepath.Base(j.OutputPath)
			if fi, err := os.Stat(j.OutputPath); err == nil {
				result += " (" + format.HumanizeBytes(fi.Size()) + ")"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", j.ID, j.Status, j.Format.Label(), format.Duration(j.Elapsed(now)), j.URL, result)
	}
	_ = tw.Flush()
}
