package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/droidsweep/droidsweep/internal/confirm"
)

var flagScanJSON bool

var scanCmd = &cobra.Command{
	Use:   "scan <remote-path>...",
	Short: "Find duplicate files by content hash",
	Long: `Hash every file under the given remote paths and group files with
identical content. Paths ending in "/" are walked recursively; bare
paths are treated as single files.

Hashing runs on the device when its shell has md5sum or sha1sum;
otherwise files are pulled to the staging area and hashed locally,
skipping files over scan.max_pull_size.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		h, err := svc.StartScan(args)
		if err != nil {
			return err
		}

		out := drain(cmd.Context(), h, svc, confirm.StaticDecider(confirm.DecisionSkip))
		if err := h.Wait(); err != nil {
			return err
		}
		if out.scan == nil {
			// Cancelled before the grouping stage.
			return nil
		}

		if flagScanJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out.scan)
		}

		report := out.scan
		fmt.Printf("\nscanned %d files: %d unique, %d duplicate groups, %d redundant copies\n",
			len(report.Files), len(report.Uniques), len(report.Groups), report.RedundantCount())
		for _, g := range report.Groups {
			fmt.Printf("\n%s\n", g.Hash)
			for _, f := range g.Files {
				fmt.Printf("  %s\n", f)
			}
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&flagScanJSON, "json", false, "print the raw scan report as JSON")
	rootCmd.AddCommand(scanCmd)
}
