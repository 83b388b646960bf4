package model

import "context"

// Notifier sends account emails. Implementations must not block on delivery.
type Notifier interface {
	SendVerification(ctx context.Context, email string, rawToken string)
	SendPasswordReset(ctx context.Context, email string, rawToken string)
}

// Mail is a rendered outbound message.
type Mail struct {
	To      string
	Subject string
	HTML    string
}

// Deliverer hands a message to a mail transport.
type Deliverer interface {
	Deliver(ctx context.Context, mail Mail) error
}
