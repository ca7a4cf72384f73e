// Package logging provides structured logging helpers for mailpane.
//
// It centralizes attribute naming on top of the standard library's slog
// package and scrubs PII before it reaches a log line: email addresses
// are anonymized or hashed so entries can be correlated without leaking
// identities, and tokens are reduced to a length indicator with no
// token content at all.
//
// Create a scoped logger with standard attributes:
//
//	logger := logging.WithComponent(slog.Default(), "gateway")
//	logger.Info("listing messages", logging.Folder("inbox"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("signed in", logging.UserHash(email))
package logging
