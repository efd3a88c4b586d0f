// Package view renders the HTML bodies of outgoing messages.
package view

// VerificationEmailSubject is the subject line of the verification email.
const VerificationEmailSubject = "Verify your email"
