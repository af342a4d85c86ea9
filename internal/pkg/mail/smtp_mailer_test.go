package mail

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newCapturingMailer(cfg Config, sendErr error) (*SMTPMailer, *capturedMail) {
	m := NewSMTPMailer(cfg)
	got := &capturedMail{}
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		got.addr, got.auth, got.from, got.to, got.msg = addr, a, from, to, string(msg)
		return sendErr
	}
	return m, got
}

func TestSendMail(t *testing.T) {
	m, got := newCapturingMailer(Config{Host: "smtp.example.com", Port: "587", Username: "u", Password: "p", Sender: "tests@gentest.dev"}, nil)

	require.NoError(t, m.SendMail("dev@example.com", "Your tests", "it('works')"))
	assert.Equal(t, "smtp.example.com:587", got.addr)
	assert.NotNil(t, got.auth)
	assert.Equal(t, "tests@gentest.dev", got.from)
	assert.Equal(t, []string{"dev@example.com"}, got.to)
	assert.Contains(t, got.msg, "Subject: Your tests\r\n")
	assert.Contains(t, got.msg, "Content-Type: text/plain; charset=UTF-8\r\n\r\nit('works')")
}

func TestSendMailWithoutCredentials(t *testing.T) {
	m, got := newCapturingMailer(Config{Host: "localhost", Port: "1025"}, nil)
	require.NoError(t, m.SendMail("dev@example.com", "s", "b"))
	assert.Nil(t, got.auth)
	assert.Equal(t, "no-reply@localhost", got.from)
}

func TestSendMailRejects(t *testing.T) {
	m, _ := newCapturingMailer(Config{}, nil)
	assert.ErrorIs(t, m.SendMail("dev@example.com", "s", "b"), ErrDisabled)

	m, _ = newCapturingMailer(Config{Host: "localhost", Port: "25"}, nil)
	assert.ErrorIs(t, m.SendMail("dev@example.com", "hi\r\nBcc: x@example.com", "b"), ErrHeaderInject)

	m, _ = newCapturingMailer(Config{Host: "localhost", Port: "25"}, errors.New("connection refused"))
	assert.Error(t, m.SendMail("dev@example.com", "s", "b"))
}
