package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// Email sends alert mail through a plain SMTP relay.
type Email struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// NewEmail returns nil when no SMTP host is configured.
func NewEmail(host string, port int, username, password, from, to string) *Email {
	if host == "" || to == "" {
		return nil
	}
	if port == 0 {
		port = 587
	}
	if from == "" {
		from = username
	}
	return &Email{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		To:       to,
	}
}

func (e *Email) Send(ctx context.Context, subject, body string) error {
	if e == nil || e.Host == "" {
		return errors.New("email disabled")
	}
	// smtp.SendMail has no context hook; the dial timeout comes from the
	// OS default and sends stay short in practice.
	msg := strings.Join([]string{
		fmt.Sprintf("From: API Monitor <%s>", e.From),
		"To: " + e.To,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if e.Username != "" {
		auth = smtp.PlainAuth("", e.Username, e.Password, e.Host)
	}
	addr := net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
	return smtp.SendMail(addr, auth, e.From, []string{e.To}, []byte(msg))
}
