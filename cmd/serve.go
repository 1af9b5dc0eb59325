package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gaurav-prasanna/chatdoc/server"
	"github.com/spf13/cobra"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion service",
	Long: `Serve exposes POST /convert, GET / and GET /health.

Examples:
  chatdoc serve
  chatdoc serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, :8000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Addr
	if flagAddr != "" {
		addr = flagAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(newService(cfg), server.Options{
		Addr:           addr,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	return srv.Run(ctx)
}
