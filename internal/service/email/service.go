package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/domain"
)

// Provider defines the interface for email providers
type Provider interface {
	Send(ctx context.Context, to, subject, body string, isHTML bool) error
}

// Config holds email service configuration
type Config struct {
	// Provider type: "sendgrid" or "smtp"
	Provider string

	// From email address
	FromEmail string
	FromName  string

	// SendGrid configuration
	SendGridAPIKey string

	// SMTP configuration (for Mailhog or other SMTP servers)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool

	// Base URL for links in emails
	BaseURL string

	// Station name shown in headers and subjects
	StationName string
}

// DefaultConfig returns a default configuration for development (Mailhog)
func DefaultConfig() *Config {
	return &Config{
		Provider:    "smtp",
		FromEmail:   "noreply@forecourt.local",
		FromName:    "Forecourt Back Office",
		SMTPHost:    "localhost",
		SMTPPort:    1025, // Mailhog default port
		SMTPUseTLS:  false,
		BaseURL:     "http://localhost:3000",
		StationName: "Fuel Station",
	}
}

// Service implements the EmailService interface
type Service struct {
	config    *Config
	provider  Provider
	templates map[string]*template.Template
	log       *zap.Logger
}

// NewService creates a new email service
func NewService(config *Config, log *zap.Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}

	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
		log:       log,
	}

	// Initialize provider
	switch config.Provider {
	case "sendgrid":
		if config.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SendGrid API key is required")
		}
		s.provider = NewSendGridProvider(config.SendGridAPIKey, config.FromEmail, config.FromName)
	case "smtp":
		s.provider = NewSMTPProvider(
			config.SMTPHost,
			config.SMTPPort,
			config.SMTPUsername,
			config.SMTPPassword,
			config.FromEmail,
			config.FromName,
			config.SMTPUseTLS,
		)
	default:
		return nil, fmt.Errorf("unknown email provider: %s", config.Provider)
	}

	// Load templates
	s.loadTemplates()

	return s, nil
}

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {
	s.templates["reconciliation_alert"] = template.Must(template.New("reconciliation_alert").Parse(reconciliationAlertTemplate))
	s.templates["daily_report"] = template.Must(template.New("daily_report").Parse(dailyReportTemplate))
}

// Send sends a generic email
func (s *Service) Send(ctx context.Context, to, subject, body string) error {
	s.log.Info("Sending email",
		zap.String("to", to),
		zap.String("subject", subject),
	)

	if err := s.provider.Send(ctx, to, subject, body, false); err != nil {
		s.log.Error("Failed to send email",
			zap.String("to", to),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendHTML sends an HTML email
func (s *Service) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	s.log.Info("Sending HTML email",
		zap.String("to", to),
		zap.String("subject", subject),
	)

	if err := s.provider.Send(ctx, to, subject, htmlBody, true); err != nil {
		s.log.Error("Failed to send HTML email",
			zap.String("to", to),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send HTML email: %w", err)
	}

	return nil
}

// SendTemplate sends an email using a template
func (s *Service) SendTemplate(ctx context.Context, to, templateName string, data map[string]interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	if data == nil {
		data = make(map[string]interface{})
	}
	data["BaseURL"] = s.config.BaseURL
	data["StationName"] = s.config.StationName

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject, ok := data["Subject"].(string)
	if !ok {
		subject = fmt.Sprintf("Notification from %s", s.config.StationName)
	}

	return s.SendHTML(ctx, to, subject, buf.String())
}

// SendReconciliationAlert notifies the manager that a shift reading failed
// its variance checks.
func (s *Service) SendReconciliationAlert(ctx context.Context, to string, reading *domain.ShiftReading) error {
	data := map[string]interface{}{
		"Subject": fmt.Sprintf("Reconciliation %s: %s %s %s shift",
			reading.ValidationStatus, reading.TankID, reading.Date, reading.ShiftType),
		"TankID":          reading.TankID,
		"Date":            reading.Date,
		"Shift":           string(reading.ShiftType),
		"Status":          string(reading.ValidationStatus),
		"IsFail":          reading.ValidationStatus == domain.ValidationStatusFail,
		"TotalElectronic": reading.TotalElectronic.String(),
		"TankMovement":    reading.TankVolumeMovement.String(),
		"VariancePercent": reading.ElectronicVsTankPercent.String(),
		"LossPercent":     reading.LossPercent.String(),
		"ExpectedAmount":  reading.ExpectedAmountElectronic.StringFixed(2),
		"CashBanked":      reading.ActualCashBanked.StringFixed(2),
		"CashDifference":  reading.CashDifference.StringFixed(2),
		"RecordedBy":      reading.RecordedBy,
	}

	return s.SendTemplate(ctx, to, "reconciliation_alert", data)
}

// SendDailyReport mails the daily summary to the manager.
func (s *Service) SendDailyReport(ctx context.Context, to string, summary *domain.DailySummary) error {
	data := map[string]interface{}{
		"Subject":         fmt.Sprintf("Daily reconciliation summary for %s", summary.Date),
		"Date":            summary.Date,
		"Rows":            summary.Rows,
		"TotalLitersSold": summary.TotalLitersSold.String(),
		"TotalDelivered":  summary.TotalDelivered.String(),
		"TotalExpected":   summary.TotalExpected.StringFixed(2),
		"TotalBanked":     summary.TotalBanked.StringFixed(2),
		"TotalDifference": summary.TotalDifference.StringFixed(2),
		"PassCount":       summary.StatusCounts[string(domain.ValidationStatusPass)],
		"WarningCount":    summary.StatusCounts[string(domain.ValidationStatusWarning)],
		"FailCount":       summary.StatusCounts[string(domain.ValidationStatusFail)],
	}

	return s.SendTemplate(ctx, to, "daily_report", data)
}
