package gateway

import (
	"time"
)

// EmailType is the application-level folder a message belongs to,
// derived from provider labels.
type EmailType string

const (
	TypeInbox  EmailType = "inbox"
	TypeSent   EmailType = "sent"
	TypeDrafts EmailType = "drafts"
	TypeBin    EmailType = "bin"
)

// Email is the application-level view of a provider message. It is a
// derived, read-mostly projection: the application never owns it beyond
// the current view, and every list operation re-fetches from the
// provider.
type Email struct {
	ID      string    `json:"id"`
	To      string    `json:"to"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Date    time.Time `json:"date"`
	Name    string    `json:"name"`
	Starred bool      `json:"starred"`
	Bin     bool      `json:"bin"`
	Type    EmailType `json:"type"`
}

// Attachment is an outgoing file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Folder queries in the provider's search grammar, keyed by EmailType.
var folderQueries = map[EmailType]string{
	TypeInbox:  "in:inbox",
	TypeSent:   "in:sent",
	TypeDrafts: "in:drafts",
	TypeBin:    "in:trash",
}

// FolderQuery returns the provider query for a folder, defaulting to inbox.
func FolderQuery(t EmailType) string {
	if q, ok := folderQueries[t]; ok {
		return q
	}
	return folderQueries[TypeInbox]
}
