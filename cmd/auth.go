package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailpane/mailpane/internal/session"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Google session",
	}
	cmd.AddCommand(newSignInCmd())
	cmd.AddCommand(newSignOutCmd())
	cmd.AddCommand(newStatusCmd())
	return cmd
}

func newSignInCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signin",
		Short: "Sign in with your Google account",
		Long: `Sign in with your Google account. A previously persisted session is
reused silently when possible; otherwise a browser authorization URL is
printed and the command waits for the authorization code on stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			sess, err := a.sessions.SignIn(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Signed in. Session valid until %s.\n", sess.ExpiresAt.Local().Format("15:04:05"))
			return nil
		},
	}
}

func newSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if err := a.sessions.SignOut(ctx); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			fmt.Printf("State: %s\n", a.sessions.State())
			if a.sessions.State() != session.StateSignedIn {
				return nil
			}
			if sess := a.sessions.Current(); sess != nil {
				fmt.Printf("Session valid until %s.\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
				if !a.sessions.IsSignedIn() {
					fmt.Println("Access token is within the expiry buffer; it will refresh on next use.")
				}
			}
			return nil
		},
	}
}
