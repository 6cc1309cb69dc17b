package main

import (
	"context"

	"attendcam/internal/app"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the camera, serve the kiosk screen and mark attendance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKiosk(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runKiosk(ctx context.Context) error {
	application, err := app.NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	return application.Run(ctx)
}
