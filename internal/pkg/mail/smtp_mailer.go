package mail

import (
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

var (
	ErrDisabled     = errors.New("smtp not configured")
	ErrHeaderInject = errors.New("line breaks are not allowed in mail headers")
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	Sender   string
}

func (c Config) Enabled() bool {
	return c.Host != "" && c.Port != ""
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends plain-text emails via SMTP
type SMTPMailer struct {
	cfg  Config
	send sendFunc
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.Sender == "" {
		cfg.Sender = fmt.Sprintf("no-reply@%s", "localhost")
		slog.Warn("SMTP_SENDER not set, using default sender", "sender", cfg.Sender)
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) SendMail(to, subject, body string) error {
	if !m.cfg.Enabled() {
		return ErrDisabled
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return ErrHeaderInject
	}

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := m.cfg.Host + ":" + m.cfg.Port

	err := m.send(addr, auth, m.cfg.Sender, []string{to}, buildMessage(m.cfg.Sender, to, subject, body))
	if err != nil {
		slog.Error("SMTP send error", "addr", addr, "err", err)
		return err
	}
	slog.Info("email sent", "addr", addr)
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	return []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", from, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
			body,
	)
}
