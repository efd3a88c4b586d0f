package domain

import "context"

// Message is a composed email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers composed messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
