// Package cmd implements the command-line interface for mailpane.
//
// This package provides the following commands:
//   - auth: Sign in, sign out, and show session status
//   - list: List messages in a folder
//   - send: Send a message with optional attachments
//   - star/unstar: Toggle the starred marker on a message
//   - trash: Move a message to the bin
//   - rm: Delete a message permanently
//   - reply: Reply to a message, optionally drafted by the generative API
//   - resume: Manage the resume profile used for AI replies
//   - version: Display version information
package cmd
