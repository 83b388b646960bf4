package notify

import (
	"context"

	"github.com/dtroode/authkeeper-server/internal/logger"
	"github.com/dtroode/authkeeper-server/internal/model"
)

var _ model.Deliverer = (*LogDeliverer)(nil)

// LogDeliverer writes messages to the application log instead of sending
// them. Used in development.
type LogDeliverer struct {
	logger *logger.Logger
}

func NewLogDeliverer(logger *logger.Logger) *LogDeliverer {
	return &LogDeliverer{logger: logger}
}

func (d *LogDeliverer) Deliver(ctx context.Context, mail model.Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.logger.Info("Mail",
		"to", mail.To,
		"subject", mail.Subject,
		"body", mail.HTML)
	return nil
}
