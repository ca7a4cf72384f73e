package gateway

import (
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"
)

// ParseRaw parses a raw RFC 2822 payload (the form BuildSendPayload
// produces, or a draft exported from another client) into an Email.
// Only header and body projection is performed; label-derived fields
// stay at their zero values because a raw payload carries no labels.
func ParseRaw(raw string) (Email, error) {
	mr, err := mail.CreateReader(strings.NewReader(raw))
	if err != nil {
		return Email{}, fmt.Errorf("failed to parse raw message: %w", err)
	}

	email := Email{Type: TypeDrafts}

	if subject, err := mr.Header.Subject(); err == nil && subject != "" {
		email.Subject = subject
	}
	if to, err := mr.Header.AddressList("To"); err == nil && len(to) > 0 {
		email.To = to[0].Address
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		email.From = from[0].String()
		if from[0].Name != "" {
			email.Name = from[0].Name
		} else {
			email.Name = localPart(from[0].Address)
		}
	}
	if date, err := mr.Header.Date(); err == nil {
		email.Date = date
	}

	var plain, htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Email{}, fmt.Errorf("failed to read message part: %w", err)
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, err := h.ContentType()
			if err != nil {
				continue
			}
			data, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			switch contentType {
			case "text/plain":
				if plain == "" {
					plain = string(data)
				}
			case "text/html":
				if htmlBody == "" {
					htmlBody = string(data)
				}
			}
		}
	}

	if plain != "" {
		email.Body = CleanBody(plain)
	} else if htmlBody != "" {
		email.Body = CleanBody(StripHTML(htmlBody))
	}

	return email, nil
}
