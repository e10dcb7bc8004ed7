package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercheck/papercheck/internal/server"
	"github.com/papercheck/papercheck/internal/task"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the PaperCheck HTTP API",
	Long: `Start the HTTP API server.

The server accepts document uploads, runs asynchronous analysis tasks and
serves annotated previews, problem lists and reports. Progress is
poll-only: clients poll GET /api/tasks/{id}/progress until the task
reaches a terminal state.

Example:
  papercheck serve
  papercheck serve --addr :8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :5001)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger := newLogger()

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	manager := task.NewManager(engine, logger)
	router := server.NewRouter(manager, cfg.Server, logger)

	logger.Info("papercheck listening", "addr", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
