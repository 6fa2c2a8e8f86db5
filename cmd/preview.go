package cmd

import (
	"fmt"

	"github.com/KaramelBytes/edamaster-cli/internal/export"
	"github.com/spf13/cobra"
)

var pvRun runFlags

var previewCmd = &cobra.Command{
	Use:   "preview <files...>",
	Short: "Print the first participants of the master sheet without writing it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := runExtraction(cmd, args, pvRun)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), export.Preview(session.Records, previewRows(cmd, pvRun)).Markdown())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	addRunFlags(previewCmd, &pvRun)
}
