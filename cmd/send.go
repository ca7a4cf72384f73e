package cmd

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mailpane/mailpane/internal/gateway"
)

func newSendCmd() *cobra.Command {
	var (
		to      string
		subject string
		body    string
		attach  []string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			attachments, err := loadAttachments(attach)
			if err != nil {
				return err
			}

			if err := a.gateway.SendMessage(ctx, to, subject, body, attachments); err != nil {
				return err
			}
			fmt.Printf("Sent to %s.\n", to)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient address (required)")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "message subject")
	cmd.Flags().StringVarP(&body, "body", "b", "", "message body")
	cmd.Flags().StringArrayVar(&attach, "attach", nil, "file to attach (repeatable)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func loadAttachments(paths []string) ([]gateway.Attachment, error) {
	var attachments []gateway.Attachment
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment %s: %w", path, err)
		}
		attachments = append(attachments, gateway.Attachment{
			Filename:    filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Data:        data,
		})
	}
	return attachments, nil
}
