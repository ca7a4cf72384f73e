// Package gateway provides session-aware access to the Gmail API for
// the mailpane client.
//
// The Gateway type wraps the provider's Users service with the
// application's authentication policy: every operation requires a
// signed-in session, and a credential rejection triggers exactly one
// silent refresh followed by one retry.
//
// Provider messages are projected into the application-level Email
// record: folder type derived from labels, best-effort plain-text body
// extraction with HTML fallback, and signature stripping. Outgoing
// messages are assembled as RFC 2822 payloads (single-part text or
// multipart/mixed with attachments) and submitted base64url-encoded.
package gateway
