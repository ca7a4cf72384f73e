package assist

import (
	"regexp"
	"strings"
)

var (
	reHeaders     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	reBold        = regexp.MustCompile(`\*\*(.*?)\*\*`)
	reItalic      = regexp.MustCompile(`\*(.*?)\*`)
	reLinks       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reCodeBlocks  = regexp.MustCompile("(?s)```.*?```")
	reInlineCode  = regexp.MustCompile("`([^`]+)`")
	reBulletList  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	reNumberList  = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	reExtraBreaks = regexp.MustCompile(`\n{3,}`)

	reGreeting = regexp.MustCompile(`(Dear|Hello|Hi)\s+([^,\n]+),?\s*\n`)
	reClosing  = regexp.MustCompile(`\n(Best regards|Sincerely|Thank you|Thanks)\s*,?\s*\n`)
	reQuotes   = regexp.MustCompile(`>\s*`)
	reRules    = regexp.MustCompile(`---+`)
	reEquals   = regexp.MustCompile(`={3,}`)

	reLeadIn       = regexp.MustCompile(`(?i)^(Here's|Here is|I'll|I will|Let me|I can|I'd be happy to).*?:\s*`)
	reAITerms      = regexp.MustCompile(`(?i)\b(artificial intelligence|language model|AI assistant|I'm an AI|as an AI|AI)\b`)
	reMetaPhrases  = regexp.MustCompile(`(?i)\b(Please note|Note that|Keep in mind)\b`)
	reInstructions = regexp.MustCompile(`(?m)^(Please|Make sure to|Don't forget to|Remember to).*$`)
	rePlaceholder1 = regexp.MustCompile(`(?i)\(.*?customize.*?\)`)
	rePlaceholder2 = regexp.MustCompile(`(?i)\[.*?insert.*?\]`)
)

// SanitizeMarkdown strips markdown formatting from model output so the
// text reads as a plain email body.
func SanitizeMarkdown(text string) string {
	if text == "" {
		return ""
	}

	sanitized := reHeaders.ReplaceAllString(text, "")
	sanitized = reBold.ReplaceAllString(sanitized, "$1")
	sanitized = reItalic.ReplaceAllString(sanitized, "$1")
	sanitized = reLinks.ReplaceAllString(sanitized, "$1")
	sanitized = reCodeBlocks.ReplaceAllString(sanitized, "")
	sanitized = reInlineCode.ReplaceAllString(sanitized, "$1")
	sanitized = reBulletList.ReplaceAllString(sanitized, "• ")
	sanitized = reNumberList.ReplaceAllString(sanitized, "")
	sanitized = reExtraBreaks.ReplaceAllString(sanitized, "\n\n")

	return strings.TrimSpace(sanitized)
}

// FormatEmail sanitizes markdown and normalizes greeting and closing
// spacing for an email body.
func FormatEmail(text string) string {
	if text == "" {
		return ""
	}

	formatted := SanitizeMarkdown(text)
	formatted = reGreeting.ReplaceAllString(formatted, "$1 $2,\n\n")
	formatted = reClosing.ReplaceAllString(formatted, "\n\n$1,\n")

	formatted = reQuotes.ReplaceAllString(formatted, "")
	formatted = strings.ReplaceAll(formatted, "|", "")
	formatted = reRules.ReplaceAllString(formatted, "")
	formatted = reEquals.ReplaceAllString(formatted, "")

	return strings.TrimSpace(formatted)
}

// CleanResponse removes AI disclaimers and meta-text, then applies
// markdown sanitization and email formatting.
func CleanResponse(response string) string {
	if response == "" {
		return ""
	}

	cleaned := reLeadIn.ReplaceAllString(response, "")
	cleaned = reAITerms.ReplaceAllString(cleaned, "")
	cleaned = reMetaPhrases.ReplaceAllString(cleaned, "")
	cleaned = reInstructions.ReplaceAllString(cleaned, "")
	cleaned = rePlaceholder1.ReplaceAllString(cleaned, "")
	cleaned = rePlaceholder2.ReplaceAllString(cleaned, "")

	return FormatEmail(cleaned)
}
