// Package mail delivers notification emails over SMTP.
package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"fintrack/internal/log"
)

// Mailer sends account emails. When no SMTP host is configured the
// mailer is a logging no-op so email failures can never block account
// operations anywhere in the stack.
type Mailer struct {
	dialer    *gomail.Dialer
	from      string
	clientURL string
	logger    *log.Logger
}

type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	ClientURL string
}

func New(cfg Config, logger *log.Logger) *Mailer {
	m := &Mailer{
		from:      cfg.From,
		clientURL: cfg.ClientURL,
		logger:    logger.WithComponent(log.ComponentMailer),
	}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

// Configured reports whether SMTP delivery is available.
func (m *Mailer) Configured() bool {
	return m.dialer != nil
}

// SendWelcome sends the post-registration greeting.
func (m *Mailer) SendWelcome(email, name string) error {
	if !m.Configured() {
		m.logger.Info("Email not configured - skipping welcome email", log.FieldEmail, email)
		return nil
	}

	body := fmt.Sprintf(`<h1>Thank you for joining, %s!</h1>
<p>Welcome to Fintrack. We're excited to have you on board.</p>
<p>You can now start tracking your expenses and managing your budgets.</p>
<p>Best regards,<br>The Fintrack Team</p>`, name)

	return m.send(email, "Welcome to Fintrack!", body)
}

// SendPasswordReset sends the reset link for a pending token.
func (m *Mailer) SendPasswordReset(email, token string) error {
	if !m.Configured() {
		m.logger.Info("Email not configured - skipping password reset email", log.FieldEmail, email)
		return nil
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", m.clientURL, token)
	body := fmt.Sprintf(`<h1>Password Reset</h1>
<p>You requested a password reset for your Fintrack account.</p>
<p>Click the link below to reset your password:</p>
<a href="%s">Reset Password</a>
<p>This link will expire in 1 hour.</p>
<p>If you didn't request this, please ignore this email.</p>
<p>Best regards,<br>The Fintrack Team</p>`, resetLink)

	return m.send(email, "Password Reset Request", body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	m.logger.Info("Email sent", log.FieldEmail, to, "subject", subject)
	return nil
}
