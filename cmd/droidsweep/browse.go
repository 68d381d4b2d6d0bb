package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/droidsweep/droidsweep/internal/adb"
)

var lsCmd = &cobra.Command{
	Use:   "ls [remote-path]",
	Short: "List a remote directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		remotePath := adb.StorageRoot
		if len(args) == 1 {
			remotePath = args[0]
		}

		entries := dev.List(cmd.Context(), remotePath)
		if len(entries) == 0 {
			fmt.Println("(empty or unreadable)")
			return nil
		}
		for _, e := range entries {
			if e.IsDir {
				fmt.Println(e.Name)
			} else {
				fmt.Printf("%-48s %s\n", e.Name, e.Size)
			}
		}
		return nil
	},
}

var findCmd = &cobra.Command{
	Use:   "find <remote-path>",
	Short: "List all files under a remote directory recursively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := dev.FindFiles(cmd.Context(), args[0])
		for _, f := range files {
			fmt.Println(f)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d files\n", len(files))
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <remote-path>",
	Short: "Pull one file into the staging area for inspection",
	Long: `Pull one remote file into the local staging area and print its
local path. The copy lives until the next operation sweeps staging.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		local, err := svc.Preview(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(local)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(previewCmd)
}
