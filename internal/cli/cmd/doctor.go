package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ytdlq/internal/dirs"
	"ytdlq/internal/util"
	"ytdlq/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Check that yt-dlp and ffmpeg are installed",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := optionsFrom(cmd)
			ctx := cmd.Context()
			runner := util.NewDefaultRunner()

			dl, derr := deps.FindDownloader(opts.DLBinary)
			ff, ferr := deps.FindFFmpeg()
			tools := []deps.Tool{
				deps.Probe(ctx, runner, "yt-dlp", dl, derr, "--version"),
				deps.Probe(ctx, runner, "ffmpeg", ff, ferr, "-version"),
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range tools {
				if t.Err != nil {
					fmt.Fprintf(tw, "%s\tmissing\t%v\n", t.Name, t.Err)
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, t.Path, t.Version)
			}
			if logFile, err := dirs.LogFile(); err == nil {
				fmt.Fprintf(tw, "log\t%s\t\n", logFile)
			}
			fmt.Fprintf(tw, "output\t%s\t\n", opts.OutDir)
			_ = tw.Flush()

			if derr != nil {
				return &ExitError{Code: ExitMissingDep, Err: derr}
			}
			if ferr != nil {
				return &ExitError{Code: ExitMissingDep, Err: ferr}
			}
			return nil
		},
	}
}
