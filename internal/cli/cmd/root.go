package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ytdlq/internal/config"
	"ytdlq/internal/worker"
)

const (
	ExitOK            = 0
	ExitCLIError      = 1
	ExitMissingDep    = 2
	ExitDownloadError = 3
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "ytdlq [urls...]",
		Short: "Queue, start and cancel yt-dlp downloads",
		Long: "ytdlq is a small download queue in front of yt-dlp. Add video or audio jobs, " +
			"start them all at once, cancel the ones you no longer want and clear the finished ones. " +
			"Without a terminal it falls back to the headless 'run' behaviour.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Init(cmd.Root(), cfgFile); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return loadOptions(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal() {
				return runHeadless(cmd, args)
			}
			return runTUI(cmd, args)
		},
	}

	bindPersistentFlags(root.PersistentFlags(), &cfgFile)

	root.AddCommand(newRunCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newUpdateCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindPersistentFlags(pf *pflag.FlagSet, cfgFile *string) {
	pf.StringVar(cfgFile, "config", "", "Config file (default: <config dir>/config.yaml)")
	pf.StringP("out-dir", "o", "", "Download folder (default: ~/Downloads)")
	pf.StringP("format", "f", "video", "Default format: video (MP4) or audio (MP3)")
	pf.BoolP("verbose", "v", false, "Log yt-dlp commands and output")
	pf.String("dl-binary", "", "Path to yt-dlp")
	pf.Int("jobs", 3, "Max concurrent downloads; 0 = unlimited")
	pf.Int("retries", 0, "Extra attempts after a failed download")
	pf.Duration("retry-backoff", worker.DefaultRetryBackoff, "Wait before the first retry; doubles each time")
	pf.Bool("check-updates", true, "Run 'yt-dlp -U' when the TUI starts")
	pf.String("log-level", "", "debug, info, warn or error (default: info, debug with -v)")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}
