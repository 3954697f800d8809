package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Message is a structured outbound notice.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer attempts delivery of a single message.
type Mailer interface {
	Send(msg Message) error
}

// NopMailer discards every message. Used when no SMTP relay is configured,
// typically in local development.
type NopMailer struct{}

func (NopMailer) Send(Message) error { return nil }

// SMTPMailer delivers mail over plain SMTP, optionally authenticated.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPMailer(host, port, from, username, password string) *SMTPMailer {
	host = strings.TrimSpace(host)
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@booking.local"
	}

	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%s", host, strings.TrimSpace(port)),
		from: from,
		auth: auth,
	}
}

func (m *SMTPMailer) Send(msg Message) error {
	raw := buildMessage(m.from, msg)
	return smtp.SendMail(m.addr, m.auth, m.from, []string{msg.To}, []byte(raw))
}

// Minimal RFC 5322 message; enough for Mailpit and most SMTP relays.
func buildMessage(from string, msg Message) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		msg.To,
		msg.Subject,
		msg.Body,
	)
}
