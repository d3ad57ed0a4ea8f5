package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytdlq/internal/updater"
	"ytdlq/internal/util"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "update",
		Short:         "Run 'yt-dlp -U' and report whether a new version was installed",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := optionsFrom(cmd)
			dlPath, err := locateDownloader(cmd.Context(), opts)
			if err != nil {
				return err
			}
			n, err := updater.Check(cmd.Context(), util.NewDefaultRunner(), dlPath)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			if n.Available {
				fmt.Fprintln(cmd.OutOrStdout(), "Update Available")
			}
			if n.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), n.Message)
			}
			return nil
		},
	}
}
