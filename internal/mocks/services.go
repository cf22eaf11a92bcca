package mocks

import (
	"context"

	"github.com/forecourt/backoffice/internal/domain"
)

// MockEmailService is a mock implementation of EmailService interface
type MockEmailService struct {
	SendFunc                    func(ctx context.Context, to, subject, body string) error
	SendHTMLFunc                func(ctx context.Context, to, subject, htmlBody string) error
	SendTemplateFunc            func(ctx context.Context, to, templateName string, data map[string]interface{}) error
	SendReconciliationAlertFunc func(ctx context.Context, to string, reading *domain.ShiftReading) error
	SendDailyReportFunc         func(ctx context.Context, to string, summary *domain.DailySummary) error

	// Track sent emails for assertions
	SentEmails []SentEmail
}

// SentEmail represents a sent email for testing
type SentEmail struct {
	To       string
	Subject  string
	Body     string
	Template string
	Data     map[string]interface{}
}

func (m *MockEmailService) Send(ctx context.Context, to, subject, body string) error {
	m.SentEmails = append(m.SentEmails, SentEmail{To: to, Subject: subject, Body: body})
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}
	return nil
}

func (m *MockEmailService) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	m.SentEmails = append(m.SentEmails, SentEmail{To: to, Subject: subject, Body: htmlBody})
	if m.SendHTMLFunc != nil {
		return m.SendHTMLFunc(ctx, to, subject, htmlBody)
	}
	return nil
}

func (m *MockEmailService) SendTemplate(ctx context.Context, to, templateName string, data map[string]interface{}) error {
	m.SentEmails = append(m.SentEmails, SentEmail{To: to, Template: templateName, Data: data})
	if m.SendTemplateFunc != nil {
		return m.SendTemplateFunc(ctx, to, templateName, data)
	}
	return nil
}

func (m *MockEmailService) SendReconciliationAlert(ctx context.Context, to string, reading *domain.ShiftReading) error {
	m.SentEmails = append(m.SentEmails, SentEmail{To: to, Template: "reconciliation_alert"})
	if m.SendReconciliationAlertFunc != nil {
		return m.SendReconciliationAlertFunc(ctx, to, reading)
	}
	return nil
}

func (m *MockEmailService) SendDailyReport(ctx context.Context, to string, summary *domain.DailySummary) error {
	m.SentEmails = append(m.SentEmails, SentEmail{To: to, Template: "daily_report"})
	if m.SendDailyReportFunc != nil {
		return m.SendDailyReportFunc(ctx, to, summary)
	}
	return nil
}

// GetSentEmails returns all sent emails for assertions
func (m *MockEmailService) GetSentEmails() []SentEmail {
	return m.SentEmails
}

// ClearSentEmails clears the sent emails list
func (m *MockEmailService) ClearSentEmails() {
	m.SentEmails = nil
}

// MockAlertNotifier is a mock implementation of AlertNotifier interface
type MockAlertNotifier struct {
	NotifyReconciliationFailureFunc func(ctx context.Context, reading *domain.ShiftReading) error

	// Notified collects the readings passed to the notifier
	Notified []*domain.ShiftReading
}

func (m *MockAlertNotifier) NotifyReconciliationFailure(ctx context.Context, reading *domain.ShiftReading) error {
	m.Notified = append(m.Notified, reading)
	if m.NotifyReconciliationFailureFunc != nil {
		return m.NotifyReconciliationFailureFunc(ctx, reading)
	}
	return nil
}
