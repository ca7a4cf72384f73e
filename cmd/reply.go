package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mailpane/mailpane/internal/assist"
	"github.com/mailpane/mailpane/internal/resume"
)

func newReplyCmd() *cobra.Command {
	var (
		instruction string
		useAI       bool
		body        string
		send        bool
		suggestions bool
	)

	cmd := &cobra.Command{
		Use:   "reply <message-id>",
		Short: "Reply to a message, optionally drafted by AI",
		Long: `Reply to a message. With --ai, the reply body is drafted by the
generative API from your instruction, your saved resume profile, and
recent interaction history. Without --send the draft is only printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if suggestions {
				for _, s := range assist.Suggestions {
					fmt.Println("-", s)
				}
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("a message id is required")
			}

			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			original, err := a.gateway.GetMessage(ctx, args[0])
			if err != nil {
				return err
			}

			if useAI {
				client, err := a.assistClient()
				if err != nil {
					return err
				}
				if instruction == "" {
					return fmt.Errorf("--ai requires --instruction")
				}

				var profile *resume.Profile
				if current, ok, err := a.resume.Current(ctx); err == nil && ok {
					profile = &current
				}
				recent, err := a.history.Recent(ctx)
				if err != nil {
					return err
				}

				prompt := assist.BuildPrompt(original, instruction, profile, recent)
				body, err = client.GenerateReply(ctx, prompt)
				if err != nil {
					return err
				}

				if err := a.history.Record(ctx, "reply", original.Subject, instruction); err != nil {
					a.logger.Warn("failed to record interaction", "error", err)
				}
			}

			if body == "" {
				return fmt.Errorf("empty reply body; use --body or --ai with --instruction")
			}

			if !send {
				fmt.Println(body)
				return nil
			}

			to := replyAddress(original.From)
			subject := replySubject(original.Subject)
			if err := a.gateway.SendMessage(ctx, to, subject, body, nil); err != nil {
				return err
			}
			fmt.Printf("Replied to %s.\n", to)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useAI, "ai", false, "draft the reply with the generative API")
	cmd.Flags().StringVarP(&instruction, "instruction", "i", "", "instruction for the AI draft")
	cmd.Flags().StringVarP(&body, "body", "b", "", "reply body (ignored with --ai)")
	cmd.Flags().BoolVar(&send, "send", false, "send the reply instead of printing it")
	cmd.Flags().BoolVar(&suggestions, "suggestions", false, "print canned reply instructions and exit")
	return cmd
}

// replyAddress extracts a bare address from a From header.
func replyAddress(from string) string {
	if open := strings.LastIndex(from, "<"); open != -1 && strings.HasSuffix(from, ">") {
		return strings.TrimSpace(from[open+1 : len(from)-1])
	}
	return strings.TrimSpace(from)
}

func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}
