package gateway

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

func encodePart(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantName string
		wantAddr string
	}{
		{
			name:     "quoted display name",
			header:   `"A. Person" <a@example.com>`,
			wantName: "A. Person",
			wantAddr: "a@example.com",
		},
		{
			name:     "unquoted display name",
			header:   "Jordan Lee <jordan@example.com>",
			wantName: "Jordan Lee",
			wantAddr: "jordan@example.com",
		},
		{
			name:     "bare address falls back to local part",
			header:   "a@example.com",
			wantName: "a",
			wantAddr: "a@example.com",
		},
		{
			name:     "angle brackets without display name",
			header:   "<noreply@example.com>",
			wantName: "noreply",
			wantAddr: "noreply@example.com",
		},
		{
			name:     "empty header",
			header:   "",
			wantName: "Unknown",
			wantAddr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, addr := parseAddress(tt.header)
			if name != tt.wantName {
				t.Errorf("parseAddress(%q) name = %q, want %q", tt.header, name, tt.wantName)
			}
			if addr != tt.wantAddr {
				t.Errorf("parseAddress(%q) addr = %q, want %q", tt.header, addr, tt.wantAddr)
			}
		})
	}
}

func TestDeriveType(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   EmailType
	}{
		{"sent", []string{"SENT"}, TypeSent},
		{"draft", []string{"DRAFT"}, TypeDrafts},
		{"trash", []string{"TRASH"}, TypeBin},
		{"inbox", []string{"INBOX", "UNREAD"}, TypeInbox},
		{"no labels", nil, TypeInbox},
		{"trash wins over inbox label", []string{"INBOX", "TRASH"}, TypeBin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveType(tt.labels); got != tt.want {
				t.Errorf("DeriveType(%v) = %q, want %q", tt.labels, got, tt.want)
			}
		})
	}
}

func TestCleanBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "collapses excess newlines and strips signature",
			body: "Hello\n\n\n\nBye\n--\nSent from my iPhone",
			want: "Hello\n\nBye",
		},
		{
			name: "normalizes CRLF",
			body: "Line one\r\nLine two\r\n",
			want: "Line one\nLine two",
		},
		{
			name: "truncates at mobile footer",
			body: "Short note\nSent from my Android device",
			want: "Short note",
		},
		{
			name: "empty body",
			body: "",
			want: "",
		},
		{
			name: "plain body unchanged",
			body: "Just a normal message.",
			want: "Just a normal message.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanBody(tt.body); got != tt.want {
				t.Errorf("CleanBody(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestStripHTML(t *testing.T) {
	html := `<html><head><style>p { color: red; }</style></head>` +
		`<body><p>First</p><p>Second</p><script>alert("x")</script></body></html>`
	got := StripHTML(html)

	if strings.Contains(got, "color") {
		t.Errorf("StripHTML() kept style content: %q", got)
	}
	if strings.Contains(got, "alert") {
		t.Errorf("StripHTML() kept script content: %q", got)
	}
	if !strings.Contains(got, "First") || !strings.Contains(got, "Second") {
		t.Errorf("StripHTML() lost text content: %q", got)
	}
}

func TestParseMessage(t *testing.T) {
	msg := &gmail.Message{
		Id:       "msg-1",
		LabelIds: []string{"INBOX", "STARRED"},
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "FROM", Value: `"A. Person" <a@example.com>`},
				{Name: "to", Value: "me@example.com"},
				{Name: "Subject", Value: "Quarterly review"},
				{Name: "Date", Value: "Mon, 02 Jan 2006 15:04:05 -0700"},
			},
			Body: &gmail.MessagePartBody{
				Data: encodePart("Hello there\r\n\r\n\r\n\r\nRegards"),
			},
		},
	}

	email := ParseMessage(msg)

	if email.ID != "msg-1" {
		t.Errorf("ID = %q, want %q", email.ID, "msg-1")
	}
	if email.Name != "A. Person" {
		t.Errorf("Name = %q, want %q", email.Name, "A. Person")
	}
	if email.To != "me@example.com" {
		t.Errorf("To = %q, want %q", email.To, "me@example.com")
	}
	if email.Subject != "Quarterly review" {
		t.Errorf("Subject = %q, want %q", email.Subject, "Quarterly review")
	}
	if email.Body != "Hello there\n\nRegards" {
		t.Errorf("Body = %q", email.Body)
	}
	if !email.Starred {
		t.Error("Starred = false, want true")
	}
	if email.Bin {
		t.Error("Bin = true, want false")
	}
	if email.Type != TypeInbox {
		t.Errorf("Type = %q, want %q", email.Type, TypeInbox)
	}

	want := time.Date(2006, 1, 2, 15, 4, 5, 0, time.FixedZone("", -7*3600))
	if !email.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", email.Date, want)
	}
}

func TestParseMessage_MissingSubject(t *testing.T) {
	msg := &gmail.Message{
		Id: "msg-2",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "a@example.com"},
			},
		},
	}
	email := ParseMessage(msg)
	if email.Subject != "(no subject)" {
		t.Errorf("Subject = %q, want %q", email.Subject, "(no subject)")
	}
}

func TestParseMessage_DateFallback(t *testing.T) {
	internal := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	msg := &gmail.Message{
		Id:           "msg-3",
		InternalDate: internal.UnixMilli(),
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Date", Value: "not a date"},
			},
		},
	}
	email := ParseMessage(msg)
	if !email.Date.Equal(internal) {
		t.Errorf("Date = %v, want internal date %v", email.Date, internal)
	}
}

func TestExtractBody_Multipart(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "text/html",
				Body:     &gmail.MessagePartBody{Data: encodePart("<p>html body</p>")},
			},
			{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: encodePart("plain body")},
			},
		},
	}

	if got := extractBody(payload); got != "plain body" {
		t.Errorf("extractBody() = %q, want plain part preferred", got)
	}
}

func TestExtractBody_HTMLFallback(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "text/html",
				Body:     &gmail.MessagePartBody{Data: encodePart("<div>only html</div>")},
			},
		},
	}

	if got := extractBody(payload); got != "only html" {
		t.Errorf("extractBody() = %q, want stripped html", got)
	}
}

func TestExtractBody_Nested(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "text/plain",
						Body:     &gmail.MessagePartBody{Data: encodePart("nested plain")},
					},
				},
			},
		},
	}

	if got := extractBody(payload); got != "nested plain" {
		t.Errorf("extractBody() = %q, want nested part", got)
	}
}

func TestDecodeBody_StandardBase64Fallback(t *testing.T) {
	// 0xff bytes encode to '/' in the standard alphabet, which the
	// base64url decoder rejects.
	raw := "\xff\xff\xff"
	encoded := base64.StdEncoding.EncodeToString([]byte(raw))
	if got := decodeBody(encoded); got != raw {
		t.Errorf("decodeBody(%q) = %q, want standard-alphabet fallback", encoded, got)
	}
}
