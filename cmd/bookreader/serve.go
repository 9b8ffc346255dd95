package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/byte-squad-abac/bookreader/internal/config"
	"github.com/byte-squad-abac/bookreader/internal/home"
	"github.com/byte-squad-abac/bookreader/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bookreader server",
	Long: `Start the bookreader HTTP server.

Documents uploaded to the server are persisted under the home directory
and opened into readers. Reading sessions are recorded to an embedded
SQLite store. Config changes on disk are picked up without a restart.

The server provides:
  - /health - Basic server health check
  - /ready  - Readiness check (library and session store status)

Examples:
  bookreader serve                    # Start on default port 8590
  bookreader serve --port 3000        # Start on custom port
  bookreader serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Load config and watch it for changes
		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cm.WatchConfig()

		// Flags override the config file
		cfg := cm.Get()
		host := cfg.Server.Host
		port := cfg.Server.Port
		if cmd.Flags().Changed("host") {
			host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		// Create server
		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			Home:          h,
			ConfigManager: cm,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().IntVar(&servePort, "port", 8590, "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
