// Package email sends quota alert notifications to the platform
// administrator.
package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/charmbracelet/log"
	mail "github.com/xhit/go-simple-mail/v2"

	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/format"
	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
)

// NotificationService handles quota alert emails.
type NotificationService struct {
	config *config.EmailConfig
}

// QuotaAlert contains the data for a quota alert email.
type QuotaAlert struct {
	Username         string
	UserID           int64
	DiskSpaceUsed    string
	DiskSpaceQuota   string
	DiskSpacePercent int
	ImagesUsed       int64
	ImagesQuota      int64
}

// New creates a new email notification service.
func New(cfg *config.EmailConfig) *NotificationService {
	return &NotificationService{
		config: cfg,
	}
}

// SendQuotaAlert notifies the administrator that a user's disk usage crossed
// the alert threshold.
func (n *NotificationService) SendQuotaAlert(username string, quota *imagesvc.Quota) error {
	if !n.config.Enabled {
		log.Debug("Email notifications are disabled, skipping quota alert")
		return nil
	}

	if n.config.AdminEmail == "" {
		log.Warn("Admin email is empty, skipping quota alert", "user", username)
		return nil
	}

	alert := QuotaAlert{
		Username:         username,
		UserID:           quota.UserID,
		DiskSpaceUsed:    format.Bytes(quota.DiskSpaceUsed),
		DiskSpaceQuota:   format.Bytes(quota.DiskSpaceQuota),
		DiskSpacePercent: quota.DiskSpacePercent,
		ImagesUsed:       quota.ImagesUsed,
		ImagesQuota:      quota.ImagesQuota,
	}

	subject := fmt.Sprintf("[CompressRank] Disk quota alert - %s at %d%%", username, alert.DiskSpacePercent)

	body, err := n.generateEmailBody(alert)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return n.sendEmail(n.config.AdminEmail, subject, body)
}

//go:embed templates/*.html
var templatesFS embed.FS

// generateEmailBody creates the HTML email body.
func (n *NotificationService) generateEmailBody(alert QuotaAlert) (string, error) {
	t, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "quota_alert.html", alert); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// sendEmail sends an email using go-simple-mail library.
func (n *NotificationService) sendEmail(to, subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = n.config.SMTPHost
	server.Port = n.config.SMTPPort
	server.Username = n.config.Username
	server.Password = n.config.Password

	if n.config.UseSSL {
		server.Encryption = mail.EncryptionSSLTLS
	} else if n.config.UseTLS {
		server.Encryption = mail.EncryptionSTARTTLS
	} else {
		server.Encryption = mail.EncryptionNone
	}

	if n.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	email := mail.NewMSG()

	fromName := n.config.FromName
	if fromName == "" {
		fromName = "CompressRank Admin"
	}
	email.SetFrom(fmt.Sprintf("%s <%s>", fromName, n.config.FromEmail))
	email.AddTo(to)
	email.SetSubject(subject)
	email.SetBody(mail.TextHTML, body)

	if err := email.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Quota alert sent", "to", to, "subject", subject)
	return nil
}
