package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		records, err := svc.History(flagHistoryLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no operations recorded")
			return nil
		}

		fmt.Printf("%-20s %-14s %-10s %7s %7s %10s\n",
			"STARTED", "OPERATION", "STATUS", "OK", "FAILED", "DURATION")
		for _, r := range records {
			fmt.Printf("%-20s %-14s %-10s %7d %7d %10s\n",
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Operation, r.Status, r.SuccessCount, r.FailedCount,
				r.Duration().Round(10*time.Millisecond).String())
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "number of records to show")
	rootCmd.AddCommand(historyCmd)
}
