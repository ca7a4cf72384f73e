package assist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mailpane/mailpane/internal/gateway"
	"github.com/mailpane/mailpane/internal/resume"
	"github.com/mailpane/mailpane/internal/store"
)

// recentInteractions bounds how much history a prompt carries.
const recentInteractions = 5

// History records drafted replies so later prompts stay consistent with
// earlier interactions. Retention is bounded by the store.
type History struct {
	store *store.Store
	now   func() time.Time
}

// NewHistory creates an interaction history backed by the given store.
func NewHistory(s *store.Store) *History {
	return &History{store: s, now: time.Now}
}

// Record appends one interaction.
func (h *History) Record(ctx context.Context, interactionType, emailSubject, summary string) error {
	return h.store.AppendContext(ctx, store.ContextEntry{
		ID:           uuid.NewString(),
		Type:         interactionType,
		EmailSubject: emailSubject,
		Summary:      summary,
		CreatedAt:    h.now(),
	})
}

// Recent returns the newest interactions for prompt construction.
func (h *History) Recent(ctx context.Context) ([]store.ContextEntry, error) {
	return h.store.RecentContext(ctx, recentInteractions)
}

// Clear drops all recorded interactions.
func (h *History) Clear(ctx context.Context) error {
	return h.store.ClearContext(ctx)
}

// BuildPrompt assembles the reply-drafting prompt from recent
// interactions, the candidate profile, the email under reply, and the
// user's instruction. Profile may be nil.
func BuildPrompt(email gateway.Email, instruction string, profile *resume.Profile, recent []store.ContextEntry) string {
	var b strings.Builder

	if len(recent) > 0 {
		b.WriteString("Previous Email Interactions Context:\n")
		for _, entry := range recent {
			summary := entry.Summary
			if summary == "" {
				summary = entry.EmailSubject
			}
			fmt.Fprintf(&b, "- %s: %s\n", entry.Type, summary)
		}
		b.WriteString("\n")
	}

	if profile != nil {
		b.WriteString("Candidate Profile:\n")
		fmt.Fprintf(&b, "Name: %s\n", profile.FullName)
		fmt.Fprintf(&b, "Education: %s\n", profile.Education)
		fmt.Fprintf(&b, "Skills: %s\n", profile.Skills)
		fmt.Fprintf(&b, "Experience: %s\n", profile.Experience)
		fmt.Fprintf(&b, "Projects: %s\n", profile.Projects)
		fmt.Fprintf(&b, "Certifications: %s\n", profile.Certifications)
		b.WriteString("\n")
	}

	b.WriteString("Current Email:\n")
	fmt.Fprintf(&b, "From: %s\n", email.From)
	fmt.Fprintf(&b, "Subject: %s\n", email.Subject)
	fmt.Fprintf(&b, "Body: %s\n", email.Body)
	b.WriteString("\n")

	fmt.Fprintf(&b, "User Instruction: %s\n\n", instruction)

	b.WriteString("Based on the context and profile above, generate a professional email reply that:\n")
	b.WriteString("1. Maintains consistency with previous interactions\n")
	b.WriteString("2. Leverages the candidate's background appropriately\n")
	b.WriteString("3. Addresses the current email specifically\n")
	b.WriteString("4. Shows professional growth and learning from past interactions\n")

	return b.String()
}

// Suggestions are canned reply instructions offered to the user.
var Suggestions = []string{
	"Write a professional thank you response",
	"Politely decline this request",
	"Ask for more details about the proposal",
	"Confirm receipt and next steps",
	"Schedule a meeting to discuss further",
	"Provide a brief status update",
	"Express interest and ask questions",
	"Apologize for the delay in response",
}
