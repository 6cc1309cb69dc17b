// Command kiosk runs the attendance camera kiosk and inspects its journal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"attendcam/internal/config"
	"attendcam/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:          "kiosk",
	Short:        "Face recognition attendance kiosk",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if dbPath != "" {
			cfg.DatabasePath = dbPath
		}
		log = logger.NewLogger(cfg)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKiosk(cmd.Context())
	},
}

var dbPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "attendance journal path (default: $DB_PATH or data/attendance.db)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
