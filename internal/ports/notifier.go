package ports

import (
	"context"

	"github.com/forecourt/backoffice/internal/domain"
)

// AlertNotifier pushes reconciliation failures to an external endpoint.
type AlertNotifier interface {
	NotifyReconciliationFailure(ctx context.Context, reading *domain.ShiftReading) error
}
