package notify

import (
	"context"

	"github.com/dtroode/authkeeper-server/internal/logger"
	"github.com/dtroode/authkeeper-server/internal/model"
)

var _ model.Notifier = (*Notifier)(nil)

type mailQueue interface {
	Enqueue(mail model.Mail) error
}

// Notifier composes account emails and hands them to the dispatcher.
// It never blocks the caller on delivery.
type Notifier struct {
	composer *Composer
	queue    mailQueue
	logger   *logger.Logger
}

func NewNotifier(composer *Composer, queue mailQueue, logger *logger.Logger) *Notifier {
	return &Notifier{
		composer: composer,
		queue:    queue,
		logger:   logger,
	}
}

// SendVerification enqueues the email verification link.
func (n *Notifier) SendVerification(ctx context.Context, email string, rawToken string) {
	mail, err := n.composer.Verification(email, rawToken)
	if err != nil {
		n.logger.Error("Notifier: failed to compose verification email", "error", err.Error())
		return
	}
	n.enqueue(mail)
}

// SendPasswordReset enqueues the password reset link.
func (n *Notifier) SendPasswordReset(ctx context.Context, email string, rawToken string) {
	mail, err := n.composer.PasswordReset(email, rawToken)
	if err != nil {
		n.logger.Error("Notifier: failed to compose password reset email", "error", err.Error())
		return
	}
	n.enqueue(mail)
}

func (n *Notifier) enqueue(mail model.Mail) {
	if err := n.queue.Enqueue(mail); err != nil {
		n.logger.Warn("Notifier: message dropped",
			"subject", mail.Subject,
			"error", err.Error())
	}
}
