package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/task-service/internal/config"
	"github.com/Dan9191/task-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, a smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, a smtp.Auth) error {
			return e.Send(addr, a)
		},
	}
}

// SendDueDigest mails the list of tasks due on day
func (s *Sender) SendDueDigest(to []string, day models.Date, tasks []models.Task) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = to
	e.Subject = fmt.Sprintf("Tasks due %s (%d)", day, len(tasks))
	e.Text = []byte(digestBody(day, tasks))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send due digest to %s: %v", strings.Join(to, ","), err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", strings.Join(to, ","), e.Subject)
	return nil
}

func digestBody(day models.Date, tasks []models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following tasks are due on %s:\n\n", day)
	for _, t := range tasks {
		fmt.Fprintf(&b, "- [%s] %s (status: %s, owner: %s, id: %s)\n", t.Priority, t.Task, t.Status, t.CreatedBy, t.ID)
	}
	b.WriteString("\nTask Service")
	return b.String()
}
