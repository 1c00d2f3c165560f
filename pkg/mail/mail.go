// Package mail sends transactional e-mail.
//
// Messages are built fluently and handed to a Sender. Services never wait on
// delivery: they enqueue on a Dispatcher, whose workers send in the
// background and only log failures.
//
//	d := mail.NewDispatcher(mail.FromConfig(), 4)
//	defer d.Close()
//	d.Enqueue(mail.To("user@example.com").Subject("Hi").Body("<p>Hello</p>"))
package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/nuber-eats/nuber/config"
	"github.com/nuber-eats/nuber/pkg/logger"
)

// SMTP holds connection credentials.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func smtpFromConfig() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", "smtp.mailtrap.io"),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "no-reply@nuber.local"),
		FromName: config.Get("MAIL_FROM_NAME", "Nuber Eats"),
	}
}

// ------------------- Message -------------------

// Message is a fluent builder for an email.
type Message struct {
	to      []string
	subject string
	body    string
	isHTML  bool
}

// To starts a message to the given recipients.
func To(addresses ...string) *Message {
	return &Message{to: addresses, isHTML: true}
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets an HTML body.
func (m *Message) Body(html string) *Message {
	m.body = html
	m.isHTML = true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.body = text
	m.isHTML = false
	return m
}

// Render executes tmpl with data and uses the result as the HTML body.
func (m *Message) Render(tmpl *template.Template, data interface{}) (*Message, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return m, fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
	}
	return m.Body(buf.String()), nil
}

func (m *Message) Recipients() []string { return m.to }
func (m *Message) Content() string      { return m.body }

func (m *Message) raw(from string) []byte {
	contentType := "text/plain"
	if m.isHTML {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	b.WriteString("Subject: " + m.subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(m.body)
	return []byte(b.String())
}

// ------------------- Senders -------------------

// Sender delivers one message.
type Sender interface {
	Send(m *Message) error
}

// SMTPSender delivers over SMTP, implicit TLS on port 465 and STARTTLS
// otherwise.
type SMTPSender struct {
	cfg SMTP
}

func NewSMTPSender(cfg SMTP) *SMTPSender { return &SMTPSender{cfg: cfg} }

func (s *SMTPSender) Send(m *Message) error {
	cfg := s.cfg
	from := fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	addr := cfg.Host + ":" + cfg.Port
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	if cfg.Port == "465" {
		return sendTLS(addr, auth, cfg.From, m.to, m.raw(from), cfg.Host)
	}
	return smtp.SendMail(addr, auth, cfg.From, m.to, m.raw(from))
}

func sendTLS(addr string, auth smtp.Auth, from string, to []string, raw []byte, host string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("mail: TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = w.Write(raw)
	return err
}

// LogSender writes messages to the log instead of sending them. Used when no
// SMTP account is configured.
type LogSender struct{}

func (LogSender) Send(m *Message) error {
	logger.Info("mail: not sent, no SMTP account configured", "to", strings.Join(m.to, ","), "subject", m.subject)
	return nil
}

// FromConfig returns the SMTP sender when MAIL_USERNAME is set and a
// LogSender otherwise.
func FromConfig() Sender {
	cfg := smtpFromConfig()
	if cfg.Username == "" {
		return LogSender{}
	}
	return NewSMTPSender(cfg)
}
