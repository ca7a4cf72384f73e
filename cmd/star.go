package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newStarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "star <message-id>",
		Short: "Star a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setStarred(args[0], true)
		},
	}
}

func newUnstarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unstar <message-id>",
		Short: "Remove the star from a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setStarred(args[0], false)
		},
	}
}

func setStarred(id string, starred bool) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.gateway.SetStarred(ctx, id, starred); err != nil {
		return err
	}
	if starred {
		fmt.Printf("Starred %s.\n", id)
	} else {
		fmt.Printf("Unstarred %s.\n", id)
	}
	return nil
}
