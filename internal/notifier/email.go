package notifier

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/coney-counter/coney-counter-api/internal/config"
	"github.com/coney-counter/coney-counter-api/internal/models"
)

var ErrEmailNotConfigured = errors.New("email is not configured")

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	host        string
	port        int
	user        string
	pass        string
	from        string
	frontendURL string
	sendMail    sendMailFunc
}

func NewMailer(cfg *config.Config) *Mailer {
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	return &Mailer{
		host:        cfg.SMTPHost,
		port:        port,
		user:        cfg.SMTPUser,
		pass:        cfg.SMTPPass,
		from:        cfg.SMTPFrom,
		frontendURL: cfg.FrontendURL,
		sendMail:    smtp.SendMail,
	}
}

func (m *Mailer) Configured() bool {
	return m != nil && m.host != "" && m.user != "" && m.pass != "" && m.from != ""
}

// SendApproval tells a user their account was approved.
func (m *Mailer) SendApproval(user models.User) error {
	if !m.Configured() {
		return ErrEmailNotConfigured
	}
	if user.Email == "" {
		return fmt.Errorf("user %d has no email address", user.ID)
	}

	body := fmt.Sprintf("Hi %s,\n\nYour Coney Counter account has been approved. Start logging coneys at:\n\n%s\n\nSee you at the chili parlor!",
		user.DisplayName(), strings.TrimRight(m.frontendURL, "/"))
	return m.send(user.Email, "Your Coney Counter account is approved", body)
}

func (m *Mailer) send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	return m.sendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
