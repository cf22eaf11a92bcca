package email

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/domain"
)

// MockProvider is a mock email provider for testing
type MockProvider struct {
	SentEmails []MockEmail
	ShouldFail bool
	FailError  error
}

type MockEmail struct {
	To      string
	Subject string
	Body    string
	IsHTML  bool
}

func (m *MockProvider) Send(ctx context.Context, to, subject, body string, isHTML bool) error {
	if m.ShouldFail {
		if m.FailError != nil {
			return m.FailError
		}
		return errors.New("mock send failed")
	}

	m.SentEmails = append(m.SentEmails, MockEmail{
		To:      to,
		Subject: subject,
		Body:    body,
		IsHTML:  isHTML,
	})
	return nil
}

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(provider *MockProvider) *Service {
	return &Service{
		config: &Config{
			Provider:    "mock",
			FromEmail:   "test@forecourt.local",
			FromName:    "Forecourt Test",
			BaseURL:     "http://localhost:3000",
			StationName: "Test Station",
		},
		provider:  provider,
		templates: make(map[string]*template.Template),
		log:       newTestLogger(),
	}
}

func TestService_Send_Success(t *testing.T) {
	// Arrange
	mockProvider := &MockProvider{}
	service := newTestService(mockProvider)

	// Act
	err := service.Send(context.Background(), "manager@example.com", "Test Subject", "Test Body")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mockProvider.SentEmails) != 1 {
		t.Fatalf("expected 1 email sent, got %d", len(mockProvider.SentEmails))
	}
	email := mockProvider.SentEmails[0]
	if email.To != "manager@example.com" {
		t.Errorf("expected to 'manager@example.com', got '%s'", email.To)
	}
	if email.Subject != "Test Subject" {
		t.Errorf("expected subject 'Test Subject', got '%s'", email.Subject)
	}
	if email.Body != "Test Body" {
		t.Errorf("expected body 'Test Body', got '%s'", email.Body)
	}
	if email.IsHTML {
		t.Error("expected plain text email, got HTML")
	}
}

func TestService_Send_Failure(t *testing.T) {
	// Arrange
	mockProvider := &MockProvider{
		ShouldFail: true,
		FailError:  errors.New("SMTP connection failed"),
	}
	service := newTestService(mockProvider)

	// Act
	err := service.Send(context.Background(), "manager@example.com", "Test Subject", "Test Body")

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "SMTP connection failed") {
		t.Errorf("expected error to contain 'SMTP connection failed', got '%s'", err.Error())
	}
}

func TestService_SendHTML_Success(t *testing.T) {
	// Arrange
	mockProvider := &MockProvider{}
	service := newTestService(mockProvider)

	htmlBody := "<h1>Hello World</h1>"

	// Act
	err := service.SendHTML(context.Background(), "manager@example.com", "HTML Subject", htmlBody)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mockProvider.SentEmails) != 1 {
		t.Fatalf("expected 1 email sent, got %d", len(mockProvider.SentEmails))
	}
	email := mockProvider.SentEmails[0]
	if !email.IsHTML {
		t.Error("expected HTML email, got plain text")
	}
	if email.Body != htmlBody {
		t.Errorf("expected body '%s', got '%s'", htmlBody, email.Body)
	}
}

func TestService_SendTemplate_NotFound(t *testing.T) {
	// Arrange
	mockProvider := &MockProvider{}
	service := newTestService(mockProvider)

	// Act
	err := service.SendTemplate(context.Background(), "manager@example.com", "nonexistent", nil)

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "template not found") {
		t.Errorf("expected 'template not found' error, got '%s'", err.Error())
	}
}

func TestService_SendReconciliationAlert_Success(t *testing.T) {
	// Arrange
	mockProvider := &MockProvider{}
	service := newTestService(mockProvider)
	service.loadTemplates()

	reading := &domain.ShiftReading{
		ID:                       "reading-1",
		TankID:                   "tank-diesel",
		Date:                     "2024-06-01",
		ShiftType:                domain.ShiftTypeDay,
		TotalElectronic:          dec("1500"),
		TankVolumeMovement:       dec("1450"),
		ElectronicVsTankPercent:  dec("3.33"),
		LossPercent:              dec("3.33"),
		ExpectedAmountElectronic: dec("3000.00"),
		ActualCashBanked:         dec("2850.00"),
		CashDifference:           dec("-150.00"),
		ValidationStatus:         domain.ValidationStatusFail,
		RecordedBy:               "supervisor@example.com",
	}

	// Act
	err := service.SendReconciliationAlert(context.Background(), "manager@example.com", reading)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mockProvider.SentEmails) != 1 {
		t.Fatalf("expected 1 email sent, got %d", len(mockProvider.SentEmails))
	}
	email := mockProvider.SentEmails[0]
	if !strings.Contains(email.Subject, "FAIL") {
		t.Errorf("expected subject to contain status, got '%s'", email.Subject)
	}
	if !strings.Contains(email.Body, "tank-diesel") {
		t.Error("expected body to contain tank ID")
	}
	if !strings.Contains(email.Body, "3.33") {
		t.Error("expected body to contain variance percent")
	}
	if !strings.Contains(email.Body, "-150.00") {
		t.Error("expected body to contain cash difference")
	}
	if !strings.Contains(email.Body, "alert-fail") {
		t.Error("expected failure styling for FAIL status")
	}
}

func TestService_SendReconciliationAlert_WarningStyling(t *testing.T) {
	// Arrange
	mockProvider := &MockProvider{}
	service := newTestService(mockProvider)
	service.loadTemplates()

	reading := &domain.ShiftReading{
		TankID:           "tank-petrol",
		Date:             "2024-06-01",
		ShiftType:        domain.ShiftTypeNight,
		ValidationStatus: domain.ValidationStatusWarning,
	}

	// Act
	err := service.SendReconciliationAlert(context.Background(), "manager@example.com", reading)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	email := mockProvider.SentEmails[0]
	if !strings.Contains(email.Body, "alert-warning") {
		t.Error("expected warning styling for WARNING status")
	}
}

func TestService_SendDailyReport_Success(t *testing.T) {
	// Arrange
	mockProvider := &MockProvider{}
	service := newTestService(mockProvider)
	service.loadTemplates()

	summary := &domain.DailySummary{
		Date: "2024-06-01",
		Rows: []domain.DailySummaryRow{
			{
				TankName:         "TANK-DIESEL",
				ShiftType:        domain.ShiftTypeDay,
				TotalElectronic:  dec("1500"),
				TotalDelivered:   dec("0"),
				ExpectedAmount:   dec("3000.00"),
				ActualCashBanked: dec("3000.00"),
				ValidationStatus: domain.ValidationStatusPass,
			},
			{
				TankName:         "TANK-PETROL",
				ShiftType:        domain.ShiftTypeDay,
				TotalElectronic:  dec("800"),
				TotalDelivered:   dec("15000"),
				ExpectedAmount:   dec("2000.00"),
				ActualCashBanked: dec("1900.00"),
				ValidationStatus: domain.ValidationStatusFail,
			},
		},
		TotalLitersSold: dec("2300"),
		TotalDelivered:  dec("15000"),
		TotalExpected:   dec("5000.00"),
		TotalBanked:     dec("4900.00"),
		TotalDifference: dec("-100.00"),
		StatusCounts:    map[string]int{"PASS": 1, "FAIL": 1},
	}

	// Act
	err := service.SendDailyReport(context.Background(), "manager@example.com", summary)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mockProvider.SentEmails) != 1 {
		t.Fatalf("expected 1 email sent, got %d", len(mockProvider.SentEmails))
	}
	email := mockProvider.SentEmails[0]
	if !strings.Contains(email.Subject, "2024-06-01") {
		t.Errorf("expected subject to contain date, got '%s'", email.Subject)
	}
	if !strings.Contains(email.Body, "TANK-DIESEL") {
		t.Error("expected body to contain first tank row")
	}
	if !strings.Contains(email.Body, "TANK-PETROL") {
		t.Error("expected body to contain second tank row")
	}
	if !strings.Contains(email.Body, "4900.00") {
		t.Error("expected body to contain total banked")
	}
	if !strings.Contains(email.Body, "1 failed") {
		t.Error("expected body to contain fail count")
	}
}

func TestNewService_SendGridProvider(t *testing.T) {
	// Arrange
	config := &Config{
		Provider:       "sendgrid",
		SendGridAPIKey: "test-api-key",
		FromEmail:      "test@example.com",
		FromName:       "Test",
	}

	// Act
	service, err := NewService(config, newTestLogger())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if service == nil {
		t.Fatal("expected service, got nil")
	}
	if _, ok := service.provider.(*SendGridProvider); !ok {
		t.Error("expected SendGridProvider")
	}
}

func TestNewService_SMTPProvider(t *testing.T) {
	// Arrange
	config := &Config{
		Provider:  "smtp",
		SMTPHost:  "localhost",
		SMTPPort:  1025,
		FromEmail: "test@example.com",
		FromName:  "Test",
	}

	// Act
	service, err := NewService(config, newTestLogger())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if service == nil {
		t.Fatal("expected service, got nil")
	}
	if _, ok := service.provider.(*SMTPProvider); !ok {
		t.Error("expected SMTPProvider")
	}
}

func TestNewService_UnknownProvider(t *testing.T) {
	// Arrange
	config := &Config{
		Provider: "unknown",
	}

	// Act
	_, err := NewService(config, newTestLogger())

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "unknown email provider") {
		t.Errorf("expected 'unknown email provider' error, got '%s'", err.Error())
	}
}

func TestNewService_SendGridMissingAPIKey(t *testing.T) {
	// Arrange
	config := &Config{
		Provider:       "sendgrid",
		SendGridAPIKey: "", // Missing
	}

	// Act
	_, err := NewService(config, newTestLogger())

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "API key is required") {
		t.Errorf("expected 'API key is required' error, got '%s'", err.Error())
	}
}

func TestDefaultConfig(t *testing.T) {
	// Act
	config := DefaultConfig()

	// Assert
	if config.Provider != "smtp" {
		t.Errorf("expected provider 'smtp', got '%s'", config.Provider)
	}
	if config.SMTPHost != "localhost" {
		t.Errorf("expected SMTP host 'localhost', got '%s'", config.SMTPHost)
	}
	if config.SMTPPort != 1025 {
		t.Errorf("expected SMTP port 1025, got %d", config.SMTPPort)
	}
}
