package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"ytdlq/internal/ui"
	"ytdlq/internal/util"
)

func newTuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "tui [urls...]",
		Short:         "Open the interactive queue, optionally with URLs already added",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE:          runTUI,
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	opts := optionsFrom(cmd)
	if !isTerminal() {
		return &ExitError{Code: ExitCLIError, Err: errors.New("the TUI needs a terminal; use 'ytdlq run <urls>' instead")}
	}

	dlPath, err := locateDownloader(cmd.Context(), opts)
	if err != nil {
		return err
	}

	ctx, closeLog, err := fileLogger(cmd.Context(), opts)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	defer closeLog()

	runner := util.NewDefaultRunner()
	rep := ui.NewReporter()
	ctrl := newController(ctx, opts, dlPath, runner, rep)

	err = ui.Run(ctx, ctrl, rep, ui.Config{
		Options:        opts,
		DownloaderPath: dlPath,
		Runner:         runner,
		URLs:           args,
	})
	return tuiExit(err)
}

// tuiExit maps ui.Run's error to an exit code: failed downloads are
// ExitDownloadError, anything else (the program itself failing) is
// ExitCLIError.
func tuiExit(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ui.ErrJobsFailed):
		return &ExitError{Code: ExitDownloadError, Err: err}
	default:
		return &ExitError{Code: ExitCLIError, Err: err}
	}
}
