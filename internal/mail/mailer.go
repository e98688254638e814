package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"go-catalog/internal/config"
)

// Mailer dispatches a message out-of-band. Callers treat delivery as
// fire-and-forget: the result is logged, never surfaced to the client.
type Mailer interface {
	Send(to, subject, body string) error
}

// NewFromConfig returns an SMTP mailer when an address is configured,
// otherwise a mailer that only logs (useful in development and tests).
func NewFromConfig(cfg *config.Config) Mailer {
	if cfg.Mail.SMTPAddr == "" {
		return &LogMailer{}
	}
	return &SMTPMailer{Addr: cfg.Mail.SMTPAddr, From: cfg.Mail.From}
}

type SMTPMailer struct {
	Addr string
	From string
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, to, subject, body)
	return smtp.SendMail(m.Addr, nil, m.From, []string{to}, []byte(msg))
}

type LogMailer struct{}

func (m *LogMailer) Send(to, subject, body string) error {
	log.Printf("[Mail] to=%s subject=%q body=%q", to, subject, body)
	return nil
}
