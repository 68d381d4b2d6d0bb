package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/droidsweep/droidsweep/internal/confirm"
	"github.com/droidsweep/droidsweep/internal/domain"
)

var (
	flagTransferDest string
	flagOnConflict   string
)

var copyCmd = &cobra.Command{
	Use:   "copy <remote-path>...",
	Short: "Copy remote files into the organized local tree",
	Long: `Copy the given remote files into the destination folder, organized
as <dest>/<album>/<Category>/<Extension>/<Year_Month>/. Paths ending
in "/" are walked recursively.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, args, domain.OperationCopy)
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <remote-path>...",
	Short: "Move remote files into the organized local tree",
	Long: `Like copy, but each file is deleted from the device after a
successful pull. A file whose remote delete fails keeps its local
copy yet counts as failed, because the device still holds it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, args, domain.OperationMove)
	},
}

func runTransfer(cmd *cobra.Command, roots []string, op domain.Operation) error {
	decider, err := conflictDecider()
	if err != nil {
		return err
	}

	svc, cleanup, err := newService()
	if err != nil {
		return err
	}
	defer cleanup()

	h, err := svc.StartTransfer(roots, flagTransferDest, op)
	if err != nil {
		return err
	}

	out := drain(cmd.Context(), h, svc, decider)
	if err := h.Wait(); err != nil {
		return err
	}
	if out.result == nil {
		return nil
	}

	fmt.Printf("%s finished: %d succeeded, %d failed\n",
		out.result.Operation, out.result.Success, out.result.Failed)
	if out.result.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", out.result.Failed, out.result.Total())
	}
	return nil
}

// conflictDecider picks the conflict policy: the flag when given,
// else the configured default.
func conflictDecider() (confirm.Decider, error) {
	policy := flagOnConflict
	if policy == "" {
		policy = cfg.Transfer.OnConflict
	}

	switch policy {
	case "ask":
		return confirm.PromptDecider{}, nil
	case "skip":
		return confirm.StaticDecider(confirm.DecisionSkip), nil
	case "overwrite":
		return confirm.StaticDecider(confirm.DecisionOverwrite), nil
	default:
		return nil, fmt.Errorf("unknown conflict policy: %s", policy)
	}
}

func init() {
	for _, c := range []*cobra.Command{copyCmd, moveCmd} {
		c.Flags().StringVarP(&flagTransferDest, "dest", "d", "", "destination folder (default transfer.dest_root)")
		c.Flags().StringVar(&flagOnConflict, "on-conflict", "", "conflict policy: ask, skip or overwrite")
		rootCmd.AddCommand(c)
	}
}
