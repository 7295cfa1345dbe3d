// Package mailer отправляет транзакционные письма через SMTP.
package mailer

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// Ошибки отправки
var (
	ErrNotConfigured = errors.New("smtp is not configured")
)

// Config - параметры SMTP подключения
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer отправляет письма через внешний SMTP сервер
type SMTPMailer struct {
	config Config
}

// NewSMTPMailer создает новый экземпляр SMTPMailer.
func NewSMTPMailer(config Config) *SMTPMailer {
	return &SMTPMailer{config: config}
}

// SendPasswordReset отправляет письмо со ссылкой сброса пароля.
// Ссылка содержит одноразовый токен и живет один час.
func (m *SMTPMailer) SendPasswordReset(to, username, resetURL string) error {
	if m.config.Host == "" || m.config.From == "" {
		return ErrNotConfigured
	}

	subject := "Password Reset Request"
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>You requested a password reset. Click the link below to set a new password:</p>
<p><a href="%s">%s</a></p>
<p>The link is valid for one hour. If you did not request a reset, ignore this email.</p>`,
		username, resetURL, resetURL)

	msg := buildMessage(m.config.From, to, subject, body)

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// buildMessage собирает RFC 5322 сообщение с HTML телом
func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
