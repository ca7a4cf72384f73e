package gateway

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/google/uuid"
)

// BuildSendPayload assembles the RFC 2822 message for an outgoing email:
// single-part text/plain when there are no attachments, multipart/mixed
// with a generated boundary when there are.
func BuildSendPayload(to, subject, body string, attachments []Attachment) string {
	var b strings.Builder

	b.WriteString("To: ")
	b.WriteString(to)
	b.WriteString("\r\n")
	b.WriteString("Subject: ")
	b.WriteString(encodeRFC2047(subject))
	b.WriteString("\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(attachments) == 0 {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		b.WriteString("\r\n")
		b.WriteString(body)
		return b.String()
	}

	boundary := "=_mailpane_" + uuid.NewString()
	b.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", boundary))
	b.WriteString("\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")

	for _, att := range attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString(fmt.Sprintf("Content-Type: %s; name=%q\r\n", contentType, att.Filename))
		b.WriteString("Content-Transfer-Encoding: base64\r\n")
		b.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n", att.Filename))
		b.WriteString("\r\n")
		b.WriteString(base64.StdEncoding.EncodeToString(att.Data))
		b.WriteString("\r\n")
	}
	b.WriteString("--" + boundary + "--")

	return b.String()
}

// EncodeWeb encodes a payload for the provider's raw message field:
// base64url without padding (standard base64 with + and / substituted
// and trailing = stripped).
func EncodeWeb(payload string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// encodeRFC2047 encodes a header value per RFC 2047 when it contains
// non-ASCII characters, and leaves it untouched otherwise.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}
