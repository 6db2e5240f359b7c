package suggestion

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// ErrCredentialsMissing is returned when the mailer has no SMTP login.
var ErrCredentialsMissing = errors.New("SMTP credentials missing: set CLARIO_SMTP_USER and CLARIO_SMTP_PASS")

// Mailer delivers a suggestion to the team.
type Mailer interface {
	Send(ctx context.Context, s Suggestion) error
}

// SMTPMailer sends suggestions over SMTP with STARTTLS.
type SMTPMailer struct {
	Host string
	Port int
	User string
	Pass string

	// To is the recipient. Empty means User.
	To string

	dialTimeout time.Duration
}

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(host string, port int, user, pass, to string) *SMTPMailer {
	return &SMTPMailer{
		Host:        host,
		Port:        port,
		User:        user,
		Pass:        pass,
		To:          to,
		dialTimeout: 15 * time.Second,
	}
}

func (m *SMTPMailer) recipient() string {
	if m.To != "" {
		return m.To
	}
	return m.User
}

// Send delivers s. It fails fast with ErrCredentialsMissing when no login
// is configured.
func (m *SMTPMailer) Send(ctx context.Context, s Suggestion) error {
	if m.User == "" || m.Pass == "" {
		return ErrCredentialsMissing
	}
	to := m.recipient()
	msg := buildMessage(m.User, to, s)

	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	dialer := net.Dialer{Timeout: m.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if err := c.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	if err := c.Auth(smtp.PlainAuth("", m.User, m.Pass, m.Host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(m.User); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}
	return c.Quit()
}

// Subject returns the mail subject for s.
func Subject(s Suggestion) string {
	return "New Clario Suggestion: " + s.Category
}

// Body returns the plain-text mail body for s.
func Body(s Suggestion) string {
	email := s.Email
	if email == "" {
		email = "N/A"
	}
	return fmt.Sprintf("Category: %s\nEmail: %s\n\n%s", s.Category, email, s.Message)
}

func buildMessage(from, to string, s Suggestion) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	if s.Email != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", s.Email)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", headerSafe(Subject(s)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(Body(s), "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// headerSafe strips line breaks so user input cannot inject headers.
func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
