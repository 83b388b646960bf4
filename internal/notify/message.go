package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"github.com/dtroode/authkeeper-server/internal/model"
)

const (
	verificationSubject  = "Verify your email address"
	passwordResetSubject = "Reset your password"
)

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Welcome!</p>
<p>Please confirm your email address by following the link below. The link is valid for 24 hours.</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>If you did not create an account, you can ignore this message.</p>
</body>
</html>`))

var passwordResetTemplate = template.Must(template.New("password-reset").Parse(`<!DOCTYPE html>
<html>
<body>
<p>We received a request to reset your password.</p>
<p>Follow the link below to choose a new one. The link is valid for 1 hour.</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>If you did not request a reset, you can ignore this message.</p>
</body>
</html>`))

// Composer renders account emails with links back to the client application.
type Composer struct {
	clientURL string
}

func NewComposer(clientURL string) *Composer {
	return &Composer{clientURL: strings.TrimRight(clientURL, "/")}
}

// Verification renders the email verification message.
func (c *Composer) Verification(to, rawToken string) (model.Mail, error) {
	return c.render(to, verificationSubject, verificationTemplate, "/verify-email", rawToken)
}

// PasswordReset renders the password reset message.
func (c *Composer) PasswordReset(to, rawToken string) (model.Mail, error) {
	return c.render(to, passwordResetSubject, passwordResetTemplate, "/reset-password", rawToken)
}

func (c *Composer) render(to, subject string, tmpl *template.Template, path, rawToken string) (model.Mail, error) {
	link := c.clientURL + path + "?token=" + url.QueryEscape(rawToken)

	var body bytes.Buffer
	if err := tmpl.Execute(&body, struct{ Link string }{Link: link}); err != nil {
		return model.Mail{}, fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}

	return model.Mail{
		To:      to,
		Subject: subject,
		HTML:    body.String(),
	}, nil
}

// NewMsg builds a MIME message for mail sent from the given address.
func NewMsg(from string, mail model.Mail) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("failed to set sender: %w", err)
	}
	if err := msg.To(mail.To); err != nil {
		return nil, fmt.Errorf("failed to set recipient: %w", err)
	}
	msg.Subject(mail.Subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(gomail.TypeTextHTML, mail.HTML)

	return msg, nil
}
