package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/droidsweep/droidsweep/internal/confirm"
	"github.com/droidsweep/droidsweep/internal/domain"
	"github.com/droidsweep/droidsweep/internal/service"
)

var (
	flagContainer   string
	flagRestoreDest string
)

var cloudCmd = &cobra.Command{
	Use:   "cloud",
	Short: "Back up device files to, or restore from, an object store",
}

var cloudBackupCmd = &cobra.Command{
	Use:   "backup <remote-path>...",
	Short: "Stage remote files and upload them to the configured store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		h, err := svc.StartBackup(args, flagContainer)
		if err != nil {
			return err
		}
		return drainCloud(cmd, h, svc, domain.OperationCloudBackup)
	},
}

var cloudRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Download a container's objects into a local folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		h, err := svc.StartRestore(flagContainer, flagRestoreDest)
		if err != nil {
			return err
		}
		return drainCloud(cmd, h, svc, domain.OperationCloudRestore)
	},
}

func drainCloud(cmd *cobra.Command, h *service.Handle, svc *service.Service, op domain.Operation) error {
	out := drain(cmd.Context(), h, svc, confirm.StaticDecider(confirm.DecisionSkip))
	if err := h.Wait(); err != nil {
		return err
	}
	if out.result == nil {
		return nil
	}

	fmt.Printf("%s finished: %d succeeded, %d failed\n",
		op, out.result.Success, out.result.Failed)
	if out.result.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", out.result.Failed, out.result.Total())
	}
	return nil
}

func init() {
	cloudBackupCmd.Flags().StringVarP(&flagContainer, "container", "c", "", "container handle (object key prefix)")
	cloudRestoreCmd.Flags().StringVarP(&flagContainer, "container", "c", "", "container handle (object key prefix)")
	cloudRestoreCmd.Flags().StringVarP(&flagRestoreDest, "dest", "d", "", "local destination folder")

	cloudCmd.AddCommand(cloudBackupCmd)
	cloudCmd.AddCommand(cloudRestoreCmd)
	rootCmd.AddCommand(cloudCmd)
}
