package main

import (
	"fmt"

	"attendcam/internal/repository/sqlite"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the attendance journal schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Printf("✅ Attendance journal ready at %s\n", cfg.DatabasePath)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every attendance record",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := sqlite.NewAttendanceRepository(db).DeleteAll(); err != nil {
			return err
		}
		log.Warning("Attendance journal %s cleared", cfg.DatabasePath)
		fmt.Println("🗑  Attendance journal cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, resetCmd)
}
