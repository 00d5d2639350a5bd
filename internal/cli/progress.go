package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewProgressCmd inspects or resets the stored progress record.
func NewProgressCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Inspect or reset quiz progress",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the progress record as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := loadDeps(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			manager, err := d.progressManager(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(manager.Snapshot())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the first-run progress record",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := loadDeps(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			manager, err := d.progressManager(ctx)
			if err != nil {
				return err
			}
			if err := manager.Reset(ctx); err != nil {
				return err
			}
			cmd.Println("progress reset; unlocked:", manager.FirstQuizID())
			return nil
		},
	})

	study := &cobra.Command{
		Use:   "study",
		Short: "Print the painting study record (favorites, learned, views) as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := loadDeps(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			tracker := d.studyTracker(ctx)
			if reset, _ := cmd.Flags().GetBool("reset"); reset {
				if err := tracker.Reset(ctx); err != nil {
					return err
				}
				cmd.Println("study record cleared")
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tracker.Snapshot())
		},
	}
	study.Flags().Bool("reset", false, "clear the study record instead of printing it")
	cmd.AddCommand(study)
	return cmd
}
