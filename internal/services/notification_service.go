// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/craftkala/craftkala-backend/internal/config"
	"github.com/craftkala/craftkala-backend/internal/models"
)

// NotificationService delivers workflow emails to applicants and records
// back-office notifications for the admin dashboard. Email delivery is
// best-effort: failures are logged, never surfaced to the workflow.
type NotificationService struct {
	db  *gorm.DB
	cfg config.EmailConfig
}

func NewNotificationService(db *gorm.DB, cfg config.EmailConfig) *NotificationService {
	return &NotificationService{db: db, cfg: cfg}
}

var submittedTemplate = template.Must(template.New("submitted").Parse(`
<h2>Namaste {{.OwnerName}},</h2>
<p>Your seller application for <strong>{{.BusinessName}}</strong> has been received and is now under review.</p>
<p>Our team typically reviews applications within 3-5 business days. We will email you as soon as a decision is made.</p>
<p>Warm regards,<br>The CraftKala Team</p>
`))

var approvedTemplate = template.Must(template.New("approved").Parse(`
<h2>Congratulations {{.OwnerName}}!</h2>
<p>Your seller application for <strong>{{.BusinessName}}</strong> has been approved.</p>
<p>Your artisan storefront is now live. Sign in to add your first products and start selling on CraftKala.</p>
<p>Warm regards,<br>The CraftKala Team</p>
`))

var rejectedTemplate = template.Must(template.New("rejected").Parse(`
<h2>Namaste {{.OwnerName}},</h2>
<p>We reviewed your seller application for <strong>{{.BusinessName}}</strong> and unfortunately could not approve it at this time.</p>
<p><strong>Reason:</strong> {{.Reason}}</p>
<p>You can update your application and resubmit it for another review at any time.</p>
<p>Warm regards,<br>The CraftKala Team</p>
`))

type applicationEmailData struct {
	OwnerName    string
	BusinessName string
	Reason       string
}

func (s *NotificationService) NotifyApplicationSubmitted(app *models.SellerApplication) {
	s.sendApplicationEmail(app, "Your CraftKala seller application is under review", submittedTemplate, "")

	appID := app.ID
	s.recordAdminNotification(&models.AdminNotification{
		Type:                "application_submitted",
		Title:               "New seller application",
		Message:             fmt.Sprintf("%s (%s) submitted a seller application", app.BusinessInfo.BusinessName, app.BusinessInfo.OwnerName),
		Priority:            "high",
		RelatedResourceType: "seller_application",
		RelatedResourceID:   &appID,
	})
}

func (s *NotificationService) NotifyApplicationApproved(app *models.SellerApplication) {
	s.sendApplicationEmail(app, "Welcome to CraftKala - your application is approved!", approvedTemplate, "")
}

func (s *NotificationService) NotifyApplicationRejected(app *models.SellerApplication, reason string) {
	s.sendApplicationEmail(app, "An update on your CraftKala seller application", rejectedTemplate, reason)
}

func (s *NotificationService) NotifyApplicationResubmitted(app *models.SellerApplication) {
	appID := app.ID
	s.recordAdminNotification(&models.AdminNotification{
		Type:                "application_resubmitted",
		Title:               "Seller application resubmitted",
		Message:             fmt.Sprintf("%s resubmitted their seller application after rejection", app.BusinessInfo.BusinessName),
		Priority:            "medium",
		RelatedResourceType: "seller_application",
		RelatedResourceID:   &appID,
	})
}

func (s *NotificationService) sendApplicationEmail(app *models.SellerApplication, subject string, tmpl *template.Template, reason string) {
	if s.cfg.SMTPHost == "" {
		logrus.Debug("SMTP not configured, skipping applicant email")
		return
	}

	var body bytes.Buffer
	err := tmpl.Execute(&body, applicationEmailData{
		OwnerName:    app.BusinessInfo.OwnerName,
		BusinessName: app.BusinessInfo.BusinessName,
		Reason:       reason,
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to render notification email")
		return
	}

	to := app.BusinessInfo.Contact.Email
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.cfg.FromName, s.cfg.FromEmail, to, subject, body.String())

	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort

	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{to}, []byte(msg)); err != nil {
		logrus.WithFields(logrus.Fields{
			"to":    to,
			"error": err,
		}).Error("Failed to send notification email")
		return
	}

	logrus.WithField("to", to).Info("Notification email sent")
}

func (s *NotificationService) recordAdminNotification(notification *models.AdminNotification) {
	if s.db == nil {
		return
	}
	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).Error("Failed to record admin notification")
	}
}
