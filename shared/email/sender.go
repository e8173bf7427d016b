package email

import (
	"fmt"
	"net/smtp"

	"video-judge/internal/models"
	"video-judge/shared/config"
	"video-judge/shared/report"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Sender struct {
	config *config.EmailConfig
	send   sendFunc
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
		send:   smtp.SendMail,
	}
}

// SendReport mails the evaluation digest. Reports with no entries and no
// failures are not sent.
func (s *Sender) SendReport(r *models.EmailReport) error {
	if r == nil {
		return fmt.Errorf("report cannot be nil")
	}

	if len(r.Entries) == 0 && r.Failed == 0 {
		return nil
	}

	subject := fmt.Sprintf("Video Evaluation Digest - %d Evaluated (%s)",
		len(r.Entries), r.Date.Format("Jan 2, 2006"))

	body, err := report.RenderHTML(r)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.SendHTML(subject, body)
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	msg := []byte(fmt.Sprintf(`To: %s
From: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, s.config.ToEmail, s.config.FromEmail, subject, htmlBody))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	if err := s.send(addr, auth, s.config.FromEmail, []string{s.config.ToEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", addr, err)
	}
	return nil
}
