package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/spec-kit/helpdesk/internal/config"
)

// SMTPSender renders messages and delivers them through an SMTP relay.
type SMTPSender struct {
	cfg      config.MailConfig
	renderer *Renderer
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender builds a sender for the configured relay.
func NewSMTPSender(cfg config.MailConfig, renderer *Renderer) *SMTPSender {
	return &SMTPSender{cfg: cfg, renderer: renderer, send: smtp.SendMail}
}

// Send implements Mailer.
func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("mail %s has no recipient", msg.Kind)
	}
	subject, body, err := s.renderer.Render(msg)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n\r\n", subject)
	b.WriteString(body)

	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	return s.send(s.cfg.SMTPAddr(), auth, s.cfg.From, []string{msg.To}, []byte(b.String()))
}
