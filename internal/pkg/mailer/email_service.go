package mailer

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendLogAlert(source, message string, occurredAt time.Time) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	recipient   string
}

func NewEmailService(host string, port int, username, password, senderEmail, recipient string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		recipient:   recipient,
	}
}

func (s *emailService) SendLogAlert(source, message string, occurredAt time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", s.recipient)
	m.SetHeader("Subject", fmt.Sprintf("[LogHive] error reported by %s", source))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Error-level log recorded</h2>
			<p><strong>Source:</strong> %s</p>
			<p><strong>At:</strong> %s</p>
			<pre style="background: #f5f5f5; padding: 12px;">%s</pre>
		</div>
	`, source, occurredAt.Format(time.RFC3339), message)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send log alert mail: %w", err)
	}
	return nil
}
