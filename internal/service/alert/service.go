// Package alert fans reconciliation alerts out to the station manager.
// It consumes the alert subject from the message queue so that alerting
// never sits on the submission request path.
package alert

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/adapter/queue"
	"github.com/forecourt/backoffice/internal/observability/telemetry"
	"github.com/forecourt/backoffice/internal/ports"
)

const handlerTimeout = 30 * time.Second

// Service subscribes to reading.alert and notifies the manager by email
// and the external webhook. Delivery is best effort: a failed channel is
// logged and skipped, never retried.
type Service struct {
	mq           queue.MessageQueue
	emailService ports.EmailService
	notifier     ports.AlertNotifier
	readings     ports.ReadingRepository
	managerEmail string
	log          *zap.Logger
}

// NewService creates the alert worker. emailService and notifier may be
// nil when the channel is not configured.
func NewService(
	mq queue.MessageQueue,
	emailService ports.EmailService,
	notifier ports.AlertNotifier,
	readings ports.ReadingRepository,
	managerEmail string,
	log *zap.Logger,
) *Service {
	return &Service{
		mq:           mq,
		emailService: emailService,
		notifier:     notifier,
		readings:     readings,
		managerEmail: managerEmail,
		log:          log,
	}
}

// Start subscribes to the alert subject. Handlers run on the queue
// consumer goroutine.
func (s *Service) Start() error {
	if err := s.mq.Subscribe(queue.SubjectReadingAlert, s.handleAlert); err != nil {
		return err
	}
	s.log.Info("Alert worker started", zap.String("subject", queue.SubjectReadingAlert))
	return nil
}

func (s *Service) handleAlert(data []byte) error {
	var event queue.ReadingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.log.Error("Malformed alert event", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	reading, err := s.readings.FindByID(ctx, event.ReadingID)
	if err != nil {
		s.log.Error("Failed to load reading for alert",
			zap.String("reading_id", event.ReadingID),
			zap.Error(err))
		return err
	}
	if reading == nil {
		s.log.Warn("Alert references unknown reading", zap.String("reading_id", event.ReadingID))
		return nil
	}

	s.log.Info("Dispatching reconciliation alert",
		zap.String("reading_id", reading.ID),
		zap.String("tank_id", reading.TankID),
		zap.String("status", string(reading.ValidationStatus)))

	if s.emailService != nil && s.managerEmail != "" {
		if err := s.emailService.SendReconciliationAlert(ctx, s.managerEmail, reading); err != nil {
			s.log.Error("Failed to email reconciliation alert",
				zap.String("reading_id", reading.ID),
				zap.Error(err))
		} else {
			telemetry.AlertsSentTotal.WithLabelValues("email").Inc()
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyReconciliationFailure(ctx, reading); err != nil {
			s.log.Error("Failed to push reconciliation alert to webhook",
				zap.String("reading_id", reading.ID),
				zap.Error(err))
		} else {
			telemetry.AlertsSentTotal.WithLabelValues("webhook").Inc()
		}
	}

	return nil
}
