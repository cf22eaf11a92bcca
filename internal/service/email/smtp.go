package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPProvider sends mail through a plain SMTP relay. In development this
// points at Mailhog, which accepts anything without TLS or auth.
type SMTPProvider struct {
	addr      string
	host      string
	username  string
	password  string
	fromEmail string
	fromName  string
	useTLS    bool
}

func NewSMTPProvider(host string, port int, username, password, fromEmail, fromName string, useTLS bool) *SMTPProvider {
	return &SMTPProvider{
		addr:      fmt.Sprintf("%s:%d", host, port),
		host:      host,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
		fromName:  fromName,
		useTLS:    useTLS,
	}
}

func (p *SMTPProvider) Send(ctx context.Context, to, subject, body string, isHTML bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := p.buildMessage(to, subject, body, isHTML)

	if p.useTLS {
		return p.sendOverTLS(ctx, to, message)
	}

	var auth smtp.Auth
	if p.username != "" {
		auth = smtp.PlainAuth("", p.username, p.password, p.host)
	}
	if err := smtp.SendMail(p.addr, auth, p.fromEmail, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", p.addr, err)
	}
	return nil
}

// buildMessage assembles the RFC 5322 envelope. Headers are written in a
// fixed order so repeated sends of the same alert are byte-identical.
func (p *SMTPProvider) buildMessage(to, subject, body string, isHTML bool) string {
	contentType := "text/plain; charset=UTF-8"
	if isHTML {
		contentType = "text/html; charset=UTF-8"
	}

	from := p.fromEmail
	if p.fromName != "" {
		from = fmt.Sprintf("%s <%s>", p.fromName, p.fromEmail)
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: " + contentType + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

// sendOverTLS speaks SMTP over an implicit TLS connection, honoring the
// caller's deadline for the dial.
func (p *SMTPProvider) sendOverTLS(ctx context.Context, to, message string) error {
	dialer := &tls.Dialer{
		Config: &tls.Config{
			ServerName: p.host,
			MinVersion: tls.VersionTLS12,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", p.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set connection deadline: %w", err)
		}
	}

	client, err := smtp.NewClient(conn, p.host)
	if err != nil {
		return fmt.Errorf("failed to open smtp session: %w", err)
	}
	defer client.Close()

	if p.username != "" {
		auth := smtp.PlainAuth("", p.username, p.password, p.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(p.fromEmail); err != nil {
		return fmt.Errorf("sender rejected: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("recipient rejected: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message body: %w", err)
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message body: %w", err)
	}

	return client.Quit()
}
