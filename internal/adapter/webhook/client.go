package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
)

// Client posts reconciliation failures to an external endpoint (station
// group dashboard, pager bridge). The breaker keeps a dead endpoint from
// stalling the alert worker; there are no retries, a failed notification
// is logged and dropped.
type Client struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	log        *zap.Logger
}

func NewClient(url string, log *zap.Logger) ports.AlertNotifier {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "alert-webhook",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Alert webhook circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		breaker:    cb,
		log:        log,
	}
}

func (c *Client) NotifyReconciliationFailure(ctx context.Context, reading *domain.ShiftReading) error {
	body, err := json.Marshal(map[string]interface{}{
		"reading_id":        reading.ID,
		"tank_id":           reading.TankID,
		"date":              reading.Date,
		"shift_type":        reading.ShiftType,
		"validation_status": reading.ValidationStatus,
		"loss_percent":      reading.LossPercent,
		"cash_difference":   reading.CashDifference,
		"recorded_by":       reading.RecordedBy,
	})
	if err != nil {
		return err
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("alert webhook returned %d", resp.StatusCode)
		}
		return nil, nil
	})
	return err
}
