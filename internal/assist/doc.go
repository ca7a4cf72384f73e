// Package assist drafts email replies with the generative language API.
//
// A drafted reply flows through three stages: prompt construction from
// recent interaction history and the candidate's resume profile, the
// generateContent call itself, and response cleanup that strips
// markdown formatting and AI meta-text so the result reads as a plain
// professional email.
package assist
