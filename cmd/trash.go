package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newTrashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trash <message-id>",
		Short: "Move a message to the bin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if err := a.gateway.Trash(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Moved %s to bin.\n", args[0])
			return nil
		},
	}
}

func newRmCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm <message-id>",
		Short: "Delete a message permanently",
		Long: `Delete a message permanently, without passing through the bin.
This cannot be undone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("permanent deletion requires --force")
			}

			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if err := a.gateway.DeletePermanently(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s permanently.\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm permanent deletion")
	return cmd
}
