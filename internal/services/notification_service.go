// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/hirehub/hirehub-backend/internal/config"
	"github.com/hirehub/hirehub-backend/internal/i18n"
	"github.com/hirehub/hirehub-backend/internal/models"
)

const notificationTimeout = 30 * time.Second

// Mailer delivers one HTML email.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type smtpMailer struct {
	cfg config.EmailConfig
}

func (m smtpMailer) Send(to, subject, body string) error {
	auth := smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)

	from := m.cfg.FromEmail
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail)
	}
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, body))

	addr := fmt.Sprintf("%s:%s", m.cfg.SMTPHost, m.cfg.SMTPPort)
	return smtp.SendMail(addr, auth, m.cfg.FromEmail, []string{to}, msg)
}

// NotificationService emails candidates when their application moves. Sends
// happen in the background and failures are only logged.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
	mailer Mailer
	wg     sync.WaitGroup
}

var statusChangeTemplate = template.Must(template.New("status_change").Parse(`
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.CandidateName}},</h2>
	<p>Your application for <strong>{{.JobTitle}}</strong> at {{.Company}} is now <strong>{{.Status}}</strong>.</p>
	{{if .Reason}}<p>Note from the hiring team: {{.Reason}}</p>{{end}}
	<a href="{{.ApplicationsURL}}">View your applications</a>
	<p>Best regards,<br>HireHub Team</p>
</body>
</html>`))

type statusChangeData struct {
	CandidateName   string
	JobTitle        string
	Company         string
	Status          models.ApplicationStatus
	Reason          string
	ApplicationsURL string
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	var mailer Mailer
	if cfg.Email.Enabled() {
		mailer = smtpMailer{cfg: cfg.Email}
	}
	return NewNotificationServiceWithMailer(db, cfg, mailer)
}

// NewNotificationServiceWithMailer uses mailer for delivery; a nil mailer
// disables email.
func NewNotificationServiceWithMailer(db *gorm.DB, cfg *config.Config, mailer Mailer) *NotificationService {
	return &NotificationService{
		db:     db,
		config: cfg,
		mailer: mailer,
	}
}

// NotifyStatusChanged queues the status email for app and returns at once.
func (s *NotificationService) NotifyStatusChanged(app *models.Application, entry *models.StatusHistory) {
	if s.mailer == nil || app == nil || entry == nil {
		return
	}

	applicationID := app.ID
	status := entry.ToStatus
	reason := ""
	if entry.Reason != nil {
		reason = *entry.Reason
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()

		if err := s.sendStatusChangeEmail(ctx, applicationID, status, reason); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"application_id": applicationID,
				"status":         status,
			}).Warn("Failed to send status change email")
		}
	}()
}

// Wait blocks until queued notifications have finished.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

func (s *NotificationService) sendStatusChangeEmail(ctx context.Context, applicationID uint, status models.ApplicationStatus, reason string) error {
	var app models.Application
	err := s.db.WithContext(ctx).
		Preload("Job", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Candidate").
		First(&app, applicationID).Error
	if err != nil {
		return fmt.Errorf("failed to load application: %w", err)
	}
	if app.Candidate == nil || app.Candidate.Email == "" || app.Job == nil {
		return fmt.Errorf("application %d has no reachable candidate", applicationID)
	}

	data := statusChangeData{
		CandidateName:   app.Candidate.FullName,
		JobTitle:        app.Job.Title,
		Company:         app.Job.Company,
		Status:          status,
		Reason:          reason,
		ApplicationsURL: fmt.Sprintf("%s/applications", s.config.Frontend.BaseURL),
	}

	var body bytes.Buffer
	if err := statusChangeTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := i18n.T(i18n.DefaultLanguage, i18n.KeyNotificationStatusSubject, app.Job.Title)
	return s.mailer.Send(app.Candidate.Email, subject, body.String())
}
