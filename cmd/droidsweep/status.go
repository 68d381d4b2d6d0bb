package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the bridge, attached device, and storage access",
	RunE: func(cmd *cobra.Command, args []string) error {
		report := dev.Status(cmd.Context())

		if !report.BridgeAvailable {
			fmt.Println("bridge:  unavailable (is adb installed and on PATH?)")
			return nil
		}
		fmt.Printf("bridge:  %s\n", report.Version)

		if len(report.Devices) == 0 {
			fmt.Println("device:  none attached")
			return nil
		}
		for _, d := range report.Devices {
			if d.Model != "" {
				fmt.Printf("device:  %s (%s, %s)\n", d.Serial, d.Model, d.State)
			} else {
				fmt.Printf("device:  %s (%s)\n", d.Serial, d.State)
			}
		}

		if len(report.ReadyDevices()) == 0 {
			fmt.Println("storage: not checked (no authorized device)")
			return nil
		}
		fmt.Printf("name:    %s\n", dev.Name(cmd.Context()))
		if report.StorageAccessible {
			fmt.Println("storage: accessible")
		} else {
			fmt.Println("storage: inaccessible")
		}
		return nil
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices the bridge currently tracks",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices := dev.Devices(cmd.Context())
		if len(devices) == 0 {
			fmt.Println("no devices attached")
			return nil
		}
		for _, d := range devices {
			fmt.Printf("%-24s %-14s %s\n", d.Serial, d.State, d.Model)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(devicesCmd)
}
