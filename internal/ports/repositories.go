package ports

import (
	"context"

	"github.com/forecourt/backoffice/internal/domain"
)

type TankRepository interface {
	Save(ctx context.Context, tank *domain.Tank) error
	FindByID(ctx context.Context, id string) (*domain.Tank, error)
	FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.Tank, error)
	UpdateStatus(ctx context.Context, id string, status domain.AssetStatus) error
}

type IslandRepository interface {
	Save(ctx context.Context, island *domain.Island) error
	FindByID(ctx context.Context, id string) (*domain.Island, error)
	FindAll(ctx context.Context) ([]domain.Island, error)
}

type PumpRepository interface {
	Save(ctx context.Context, pump *domain.Pump) error
	FindByID(ctx context.Context, id string) (*domain.Pump, error)
	FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.Pump, error)
	UpdateStatus(ctx context.Context, id string, status domain.AssetStatus) error
}

type NozzleRepository interface {
	Save(ctx context.Context, nozzle *domain.Nozzle) error
	FindByID(ctx context.Context, id string) (*domain.Nozzle, error)
	FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.Nozzle, error)
	UpdateStatus(ctx context.Context, id string, status domain.AssetStatus) error
}

type ReadingRepository interface {
	// Save persists the reading with its children and claims the given
	// pool deliveries in one transaction.
	Save(ctx context.Context, reading *domain.ShiftReading, claimDeliveryIDs []string) error
	FindByID(ctx context.Context, id string) (*domain.ShiftReading, error)
	FindByIdentity(ctx context.Context, tankID, date string, shift domain.ShiftType) (*domain.ShiftReading, error)
	FindLatestByTank(ctx context.Context, tankID string) (*domain.ShiftReading, error)
	FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.ShiftReading, error)
	FindByDate(ctx context.Context, date string) ([]domain.ShiftReading, error)
}

type DeliveryRepository interface {
	Save(ctx context.Context, delivery *domain.Delivery) error
	FindByID(ctx context.Context, id string) (*domain.Delivery, error)
	FindUnlinked(ctx context.Context, tankID string) ([]domain.Delivery, error)
}

type CustomerRepository interface {
	Save(ctx context.Context, customer *domain.Customer) error
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	FindAll(ctx context.Context, activeOnly bool) ([]domain.Customer, error)
}

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
