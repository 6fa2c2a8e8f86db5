package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/edamaster-cli/internal/parser"
	"github.com/KaramelBytes/edamaster-cli/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload, preview and download pages over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		d, err := parser.ParseDelimiter(cfg.Delimiter)
		if err != nil {
			return err
		}
		opt := parser.DefaultOptions()
		opt.Delimiter = d

		srv := server.New(server.Options{
			MaxUploadMB: cfg.MaxUploadMB,
			Suffix:      cfg.FilenameSuffix,
			Parse:       opt,
			PreviewRows: cfg.PreviewRows,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving on http://%s\n", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")
}
