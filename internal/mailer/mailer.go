package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	logrus "github.com/sirupsen/logrus"

	"geocollect/internal/config"
)

// Sender delivers the three notification mails the platform produces. All
// sends are best-effort side effects: callers queue them and never let a
// delivery failure reach the API response.
type Sender interface {
	SendConfirmation(toEmail, token string) error
	SendReset(toEmail, token string) error
	SendSubmissionAlert(initiativeName string) error
}

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	host       string
	port       string
	user       string
	pass       string
	adminEmail string
	baseURL    string
}

// LogSender is the fallback when SMTP is unconfigured: links that would have
// been mailed are written to the log instead.
type LogSender struct {
	baseURL string
}

// NewFromEnv picks the SMTP sender when SMTP_HOST and SMTP_USER are set,
// otherwise the logging fallback.
func NewFromEnv() Sender {
	host := config.GetEnv("SMTP_HOST", "")
	user := config.GetEnv("SMTP_USER", "")
	baseURL := strings.TrimRight(config.GetEnv("FRONTEND_URL", "http://localhost:5173"), "/")
	if host == "" || user == "" {
		return LogSender{baseURL: baseURL}
	}
	return SMTPSender{
		host:       host,
		port:       config.GetEnv("SMTP_PORT", "587"),
		user:       user,
		pass:       config.GetEnv("SMTP_PASS", ""),
		adminEmail: config.GetEnv("ADMIN_EMAIL", user),
		baseURL:    baseURL,
	}
}

func (s SMTPSender) SendConfirmation(toEmail, token string) error {
	url := fmt.Sprintf("%s/confirm-email/%s", s.baseURL, token)
	body := "Thank you for registering.\n\n" +
		"Please confirm your address by following this link:\n" + url + "\n\n" +
		"If the link does not work, copy and paste it into your browser."
	return s.send(toEmail, "Confirm your registration", body)
}

func (s SMTPSender) SendReset(toEmail, token string) error {
	url := fmt.Sprintf("%s/reset-password/%s", s.baseURL, token)
	body := "To reset your password, follow this link: " + url
	return s.send(toEmail, "Password reset", body)
}

func (s SMTPSender) SendSubmissionAlert(initiativeName string) error {
	body := "A new initiative has been submitted: " + initiativeName
	return s.send(s.adminEmail, "New initiative submitted", body)
}

func (s SMTPSender) send(to, subject, body string) error {
	addr := s.host + ":" + s.port
	var auth smtp.Auth
	if s.pass != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	msg := []byte(fmt.Sprintf(
		"From: GeoCollect <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.user, to, subject, body,
	))
	return smtp.SendMail(addr, auth, s.user, []string{to}, msg)
}

func (s LogSender) SendConfirmation(toEmail, token string) error {
	logrus.WithFields(logrus.Fields{
		"to":   toEmail,
		"link": fmt.Sprintf("%s/confirm-email/%s", s.baseURL, token),
	}).Info("SMTP not configured: confirmation link")
	return nil
}

func (s LogSender) SendReset(toEmail, token string) error {
	logrus.WithFields(logrus.Fields{
		"to":   toEmail,
		"link": fmt.Sprintf("%s/reset-password/%s", s.baseURL, token),
	}).Info("SMTP not configured: reset link")
	return nil
}

func (s LogSender) SendSubmissionAlert(initiativeName string) error {
	logrus.WithField("initiative", initiativeName).Info("SMTP not configured: submission alert")
	return nil
}
