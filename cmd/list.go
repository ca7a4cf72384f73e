package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/spf13/cobra"

	"github.com/mailpane/mailpane/internal/gateway"
)

// listRetries bounds how often a transient fetch failure is retried.
const listRetries = 3

func newListCmd() *cobra.Command {
	var (
		folder string
		query  string
		max    int64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List messages in a folder",
		Long: `List messages in a folder (inbox, sent, drafts, or bin), newest
first. A raw Gmail search query can be given instead with -q. Transient
fetch failures are retried with exponential backoff.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			emailType, err := parseFolder(folder)
			if err != nil {
				return err
			}

			if max <= 0 {
				prefs, err := a.store.Preferences(ctx)
				if err != nil {
					return err
				}
				max = int64(prefs.EmailsPerPage)
			}

			list := func() ([]gateway.Email, error) {
				if query != "" {
					return a.gateway.Search(ctx, query, max)
				}
				return a.gateway.ListMessages(ctx, emailType, max)
			}
			emails, err := backoff.Retry(ctx, func() ([]gateway.Email, error) {
				emails, err := list()
				if err != nil && !isRetryable(err) {
					return nil, backoff.Permanent(err)
				}
				return emails, err
			}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(listRetries))
			if err != nil {
				return err
			}

			if len(emails) == 0 {
				if query != "" {
					fmt.Println("No messages matched.")
				} else {
					fmt.Printf("No messages in %s.\n", folder)
				}
				return nil
			}
			for _, email := range emails {
				printEmailLine(email)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "inbox", "folder to list: inbox, sent, drafts, bin")
	cmd.Flags().StringVarP(&query, "query", "q", "", "raw Gmail search query (overrides --folder)")
	cmd.Flags().Int64VarP(&max, "max", "n", 0, "maximum number of messages (default: emailsPerPage preference)")
	return cmd
}

func parseFolder(folder string) (gateway.EmailType, error) {
	switch folder {
	case "inbox":
		return gateway.TypeInbox, nil
	case "sent":
		return gateway.TypeSent, nil
	case "drafts":
		return gateway.TypeDrafts, nil
	case "bin", "trash":
		return gateway.TypeBin, nil
	default:
		return "", fmt.Errorf("unknown folder %q, expected inbox, sent, drafts, or bin", folder)
	}
}

// isRetryable limits retries to transient fetch failures; auth and
// validation problems need the user, not another attempt.
func isRetryable(err error) bool {
	var fetchErr *gateway.FetchError
	return errors.As(err, &fetchErr)
}

func printEmailLine(email gateway.Email) {
	star := " "
	if email.Starred {
		star = "*"
	}
	fmt.Printf("%s %-20s %-22s %-40s %s\n",
		star,
		email.ID,
		truncate(email.Name, 22),
		truncate(email.Subject, 40),
		email.Date.Local().Format(time.DateTime))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
