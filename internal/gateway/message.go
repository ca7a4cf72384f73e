package gateway

import (
	"encoding/base64"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	gmail "google.golang.org/api/gmail/v1"
)

// signatureMarkers truncate a body at the first occurrence of a known
// signature or footer line.
var signatureMarkers = []string{
	"--",
	"Sent from my iPhone",
	"Sent from my Android",
	"Get Outlook for",
	"Virus-free",
}

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// ParseMessage converts a provider message into an Email record. The
// type, starred, and bin fields are all derived from the same label
// snapshot so they stay mutually consistent.
func ParseMessage(m *gmail.Message) Email {
	from := headerValue(m.Payload, "From")
	to := headerValue(m.Payload, "To")
	subject := headerValue(m.Payload, "Subject")
	if subject == "" {
		subject = "(no subject)"
	}

	fromName, _ := parseAddress(from)
	_, toAddr := parseAddress(to)

	return Email{
		ID:      m.Id,
		To:      toAddr,
		From:    from,
		Subject: subject,
		Body:    CleanBody(extractBody(m.Payload)),
		Date:    parseDate(headerValue(m.Payload, "Date"), m.InternalDate),
		Name:    fromName,
		Starred: hasLabel(m.LabelIds, "STARRED"),
		Bin:     hasLabel(m.LabelIds, "TRASH"),
		Type:    DeriveType(m.LabelIds),
	}
}

// DeriveType maps provider labels onto the application folder.
func DeriveType(labelIDs []string) EmailType {
	switch {
	case hasLabel(labelIDs, "SENT"):
		return TypeSent
	case hasLabel(labelIDs, "DRAFT"):
		return TypeDrafts
	case hasLabel(labelIDs, "TRASH"):
		return TypeBin
	default:
		return TypeInbox
	}
}

func hasLabel(labelIDs []string, label string) bool {
	for _, id := range labelIDs {
		if id == label {
			return true
		}
	}
	return false
}

// headerValue extracts a header from the message payload. Lookup is
// case-insensitive per RFC 5322.
func headerValue(p *gmail.MessagePart, name string) string {
	if p == nil {
		return ""
	}
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// parseAddress splits a `"Display Name" <addr@x>` or bare-address header
// into a display name and address. When no display name is present, the
// local part of the address serves as the name.
func parseAddress(header string) (name, addr string) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "Unknown", ""
	}

	if open := strings.LastIndex(header, "<"); open != -1 && strings.HasSuffix(header, ">") {
		addr = strings.TrimSpace(header[open+1 : len(header)-1])
		name = strings.TrimSpace(header[:open])
		name = strings.Trim(name, `"`)
		if name == "" {
			name = localPart(addr)
		}
		return name, addr
	}

	// Bare address.
	return localPart(header), header
}

func localPart(addr string) string {
	if at := strings.Index(addr, "@"); at != -1 {
		return addr[:at]
	}
	return addr
}

// parseDate prefers the Date header, falling back to the provider's
// internal receipt timestamp (epoch milliseconds) if the header is
// absent or unparsable.
func parseDate(header string, internalDate int64) time.Time {
	if header != "" {
		if t, err := mail.ParseDate(header); err == nil {
			return t
		}
	}
	return time.UnixMilli(internalDate)
}

// extractBody pulls the best-effort plain-text body out of a message
// payload: the top-level body when present, otherwise the first
// text/plain part, otherwise the first text/html part stripped to text,
// recursing into nested multiparts.
func extractBody(p *gmail.MessagePart) string {
	if p == nil {
		return ""
	}
	if p.Body != nil && p.Body.Data != "" {
		return decodeBody(p.Body.Data)
	}

	for _, part := range p.Parts {
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			return decodeBody(part.Body.Data)
		}
	}
	for _, part := range p.Parts {
		if part.MimeType == "text/html" && part.Body != nil && part.Body.Data != "" {
			return StripHTML(decodeBody(part.Body.Data))
		}
		if len(part.Parts) > 0 {
			if nested := extractBody(part); nested != "" {
				return nested
			}
		}
	}
	return ""
}

// decodeBody decodes Gmail's base64url part data, falling back to
// standard base64 for providers that pad.
func decodeBody(data string) string {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}

// StripHTML reduces an HTML document to its text content.
func StripHTML(s string) string {
	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	skipDepth := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				skipDepth++
			case "br", "p", "div", "tr", "li":
				b.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if n := string(name); (n == "script" || n == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

// CleanBody normalizes line endings, collapses runs of three or more
// newlines to two, and truncates at the first known signature marker.
func CleanBody(body string) string {
	if body == "" {
		return ""
	}

	cleaned := strings.ReplaceAll(body, "\r\n", "\n")
	cleaned = strings.ReplaceAll(cleaned, "\r", "\n")
	cleaned = excessNewlines.ReplaceAllString(cleaned, "\n\n")
	cleaned = strings.TrimSpace(cleaned)

	for _, marker := range signatureMarkers {
		if idx := strings.Index(cleaned, marker); idx != -1 {
			cleaned = strings.TrimSpace(cleaned[:idx])
		}
	}
	return cleaned
}
