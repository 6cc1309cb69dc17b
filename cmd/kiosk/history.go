package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"attendcam/internal/repository/sqlite"

	"github.com/spf13/cobra"
)

var (
	historyLimit   int
	historyStudent string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the most recent attendance records",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := sqlite.NewAttendanceRepository(db)

		if historyStudent != "" {
			count, err := repo.CountByStudent(historyStudent)
			if err != nil {
				return err
			}
			fmt.Printf("Student %s has %d attendance record(s)\n", historyStudent, count)
			return nil
		}

		records, err := repo.Recent(historyLimit)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No attendance recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tSTUDENT\tNAME\tPROGRAM\tLAST\tRECORDED")
		fmt.Fprintln(w, "--\t-------\t----\t-------\t----\t--------")
		for _, a := range records {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				a.ID, a.StudentID, a.Name, a.Program, a.LastSeen, a.RecordedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records to show (0 for all)")
	historyCmd.Flags().StringVar(&historyStudent, "student", "", "only count the records of this student ID")
	rootCmd.AddCommand(historyCmd)
}
