package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ytdlq/internal/downloader"
	"ytdlq/internal/util"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "plan <urls...>",
		Short:         "Print the yt-dlp command each URL would run, without downloading",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := optionsFrom(cmd)
			bin := opts.DLBinary
			if bin == "" {
				bin = "yt-dlp"
			}
			dir := util.ExpandHome(opts.OutDir)
			out := cmd.OutOrStdout()
			for _, raw := range args {
				u := strings.TrimSpace(raw)
				if u == "" {
					continue
				}
				req := downloader.Request{URL: u, OutputDir: dir, Format: opts.Format}
				cfg := downloader.ConfigFor(req)
				fmt.Fprintf(out, "# %s (%s)\n", u, opts.Format.Label())
				fmt.Fprintln(out, util.ShellQuote(bin, downloader.BuildArgs(cfg, u)))
			}
			return nil
		},
	}
}
