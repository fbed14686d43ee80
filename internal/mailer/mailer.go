// Package mailer delivers outgoing email.
//
// A Transport never returns a Go error for an ordinary delivery failure; it reports
// the failure in SendResult so that callers can keep going and account for it.
package mailer

import (
	"context"
)

// Message is a single outgoing email. Text and HTML are alternative renderings of
// the same content; either may be empty.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
	// Tag labels the message in logs (for example the reminder kind).
	Tag string
}

// SendResult reports the outcome of one delivery attempt.
type SendResult struct {
	Success   bool
	MessageID string
	Error     string
}

// Transport delivers messages.
type Transport interface {
	Send(ctx context.Context, msg Message) SendResult
}

func failed(err error) SendResult {
	return SendResult{Success: false, Error: err.Error()}
}
