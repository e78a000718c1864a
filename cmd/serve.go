package cmd

import (
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [target]",
	Short: "Run an audit and keep the status endpoint up until interrupted",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd, args[0])
		opts.StatusAddr = serveAddr
		opts.Serve = true
		runOrExit(opts)
	},
}

func init() {
	addScanFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Status endpoint address")
	rootCmd.AddCommand(serveCmd)
}
