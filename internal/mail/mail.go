package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"nearmex/internal/config"
)

// Notifier delivers account notifications.
type Notifier interface {
	SendPasswordReset(ctx context.Context, to, username, resetURL string) error
	SendReviewRemoved(ctx context.Context, to, username, destination string) error
}

// New returns an SMTP sender, or a logging no-op when SMTP credentials are
// missing.
func New(cfg *config.Config, logger *logrus.Logger) Notifier {
	if !cfg.SMTPEnabled() {
		logger.Warn("SMTP credentials not configured; emails will not be sent")
		return &NoopSender{logger: logger}
	}
	return NewSMTPSender(cfg.SMTP, logger)
}

// SMTPSender sends HTML mail through a single SMTP relay.
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger *logrus.Logger
}

func NewSMTPSender(cfg config.SMTPConfig, logger *logrus.Logger) *SMTPSender {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, username, resetURL string) error {
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
<h2 style="color: #660000;">Hello %s,</h2>
<p>We received a request to reset your <strong>NearMex</strong> password.</p>
<p><a href="%s">Choose a new password</a>. The link expires in one hour.</p>
<p>If you did not ask for this, you can ignore this message.</p>
</div>`, html.EscapeString(username), html.EscapeString(resetURL))
	return s.send(to, "NearMex password reset", body)
}

func (s *SMTPSender) SendReviewRemoved(ctx context.Context, to, username, destination string) error {
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
<h2 style="color: #660000;">Hello %s,</h2>
<p>A <strong>NearMex</strong> moderator removed your review of <strong>%s</strong>.</p>
<p>This can happen when content breaks our guidelines. Contact us if you think it was a mistake.</p>
<hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
<p style="font-size: 12px; color: #999;">This is an automated message, please do not reply.</p>
</div>`, html.EscapeString(username), html.EscapeString(destination))
	return s.send(to, "One of your reviews was removed", body)
}

func (s *SMTPSender) send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = fmt.Sprintf("NearMex <%s>", s.cfg.From)
	e.To = []string{to}
	e.Subject = subject
	e.HTML = []byte(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	var err error
	if s.cfg.Port == 465 {
		err = e.SendWithTLS(addr, auth, &tls.Config{ServerName: s.cfg.Host})
	} else {
		err = e.Send(addr, auth)
	}
	if err != nil {
		s.logger.WithError(err).WithField("to", to).Error("failed to send email")
		return fmt.Errorf("send %q: %w", subject, err)
	}
	s.logger.WithField("to", to).Infof("email sent: %s", subject)
	return nil
}

// NoopSender logs instead of sending.
type NoopSender struct {
	logger *logrus.Logger
}

func NewNoopSender(logger *logrus.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

func (n *NoopSender) SendPasswordReset(ctx context.Context, to, username, resetURL string) error {
	n.logger.WithField("to", to).Warn("smtp disabled; password reset email not sent")
	return nil
}

func (n *NoopSender) SendReviewRemoved(ctx context.Context, to, username, destination string) error {
	n.logger.WithField("to", to).Warn("smtp disabled; review removal email not sent")
	return nil
}
