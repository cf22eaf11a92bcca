package mocks

import (
	"context"

	"github.com/forecourt/backoffice/internal/domain"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	SaveFunc        func(ctx context.Context, user *domain.User) error
	FindByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *MockUserRepository) Save(ctx context.Context, user *domain.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

// MockTankRepository is a mock implementation of TankRepository
type MockTankRepository struct {
	SaveFunc         func(ctx context.Context, tank *domain.Tank) error
	FindByIDFunc     func(ctx context.Context, id string) (*domain.Tank, error)
	FindAllFunc      func(ctx context.Context, filter map[string]interface{}) ([]domain.Tank, error)
	UpdateStatusFunc func(ctx context.Context, id string, status domain.AssetStatus) error
}

func (m *MockTankRepository) Save(ctx context.Context, tank *domain.Tank) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tank)
	}
	return nil
}

func (m *MockTankRepository) FindByID(ctx context.Context, id string) (*domain.Tank, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTankRepository) FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.Tank, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, filter)
	}
	return []domain.Tank{}, nil
}

func (m *MockTankRepository) UpdateStatus(ctx context.Context, id string, status domain.AssetStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

// MockIslandRepository is a mock implementation of IslandRepository
type MockIslandRepository struct {
	SaveFunc     func(ctx context.Context, island *domain.Island) error
	FindByIDFunc func(ctx context.Context, id string) (*domain.Island, error)
	FindAllFunc  func(ctx context.Context) ([]domain.Island, error)
}

func (m *MockIslandRepository) Save(ctx context.Context, island *domain.Island) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, island)
	}
	return nil
}

func (m *MockIslandRepository) FindByID(ctx context.Context, id string) (*domain.Island, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockIslandRepository) FindAll(ctx context.Context) ([]domain.Island, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return []domain.Island{}, nil
}

// MockPumpRepository is a mock implementation of PumpRepository
type MockPumpRepository struct {
	SaveFunc         func(ctx context.Context, pump *domain.Pump) error
	FindByIDFunc     func(ctx context.Context, id string) (*domain.Pump, error)
	FindAllFunc      func(ctx context.Context, filter map[string]interface{}) ([]domain.Pump, error)
	UpdateStatusFunc func(ctx context.Context, id string, status domain.AssetStatus) error
}

func (m *MockPumpRepository) Save(ctx context.Context, pump *domain.Pump) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, pump)
	}
	return nil
}

func (m *MockPumpRepository) FindByID(ctx context.Context, id string) (*domain.Pump, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPumpRepository) FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.Pump, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, filter)
	}
	return []domain.Pump{}, nil
}

func (m *MockPumpRepository) UpdateStatus(ctx context.Context, id string, status domain.AssetStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

// MockNozzleRepository is a mock implementation of NozzleRepository
type MockNozzleRepository struct {
	SaveFunc         func(ctx context.Context, nozzle *domain.Nozzle) error
	FindByIDFunc     func(ctx context.Context, id string) (*domain.Nozzle, error)
	FindAllFunc      func(ctx context.Context, filter map[string]interface{}) ([]domain.Nozzle, error)
	UpdateStatusFunc func(ctx context.Context, id string, status domain.AssetStatus) error
}

func (m *MockNozzleRepository) Save(ctx context.Context, nozzle *domain.Nozzle) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, nozzle)
	}
	return nil
}

func (m *MockNozzleRepository) FindByID(ctx context.Context, id string) (*domain.Nozzle, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockNozzleRepository) FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.Nozzle, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, filter)
	}
	return []domain.Nozzle{}, nil
}

func (m *MockNozzleRepository) UpdateStatus(ctx context.Context, id string, status domain.AssetStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

// MockReadingRepository is a mock implementation of ReadingRepository
type MockReadingRepository struct {
	SaveFunc             func(ctx context.Context, reading *domain.ShiftReading, claimDeliveryIDs []string) error
	FindByIDFunc         func(ctx context.Context, id string) (*domain.ShiftReading, error)
	FindByIdentityFunc   func(ctx context.Context, tankID, date string, shift domain.ShiftType) (*domain.ShiftReading, error)
	FindLatestByTankFunc func(ctx context.Context, tankID string) (*domain.ShiftReading, error)
	FindAllFunc          func(ctx context.Context, filter map[string]interface{}) ([]domain.ShiftReading, error)
	FindByDateFunc       func(ctx context.Context, date string) ([]domain.ShiftReading, error)
}

func (m *MockReadingRepository) Save(ctx context.Context, reading *domain.ShiftReading, claimDeliveryIDs []string) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, reading, claimDeliveryIDs)
	}
	return nil
}

func (m *MockReadingRepository) FindByID(ctx context.Context, id string) (*domain.ShiftReading, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockReadingRepository) FindByIdentity(ctx context.Context, tankID, date string, shift domain.ShiftType) (*domain.ShiftReading, error) {
	if m.FindByIdentityFunc != nil {
		return m.FindByIdentityFunc(ctx, tankID, date, shift)
	}
	return nil, nil
}

func (m *MockReadingRepository) FindLatestByTank(ctx context.Context, tankID string) (*domain.ShiftReading, error) {
	if m.FindLatestByTankFunc != nil {
		return m.FindLatestByTankFunc(ctx, tankID)
	}
	return nil, nil
}

func (m *MockReadingRepository) FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.ShiftReading, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, filter)
	}
	return []domain.ShiftReading{}, nil
}

func (m *MockReadingRepository) FindByDate(ctx context.Context, date string) ([]domain.ShiftReading, error) {
	if m.FindByDateFunc != nil {
		return m.FindByDateFunc(ctx, date)
	}
	return []domain.ShiftReading{}, nil
}

// MockDeliveryRepository is a mock implementation of DeliveryRepository
type MockDeliveryRepository struct {
	SaveFunc         func(ctx context.Context, delivery *domain.Delivery) error
	FindByIDFunc     func(ctx context.Context, id string) (*domain.Delivery, error)
	FindUnlinkedFunc func(ctx context.Context, tankID string) ([]domain.Delivery, error)
}

func (m *MockDeliveryRepository) Save(ctx context.Context, delivery *domain.Delivery) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, delivery)
	}
	return nil
}

func (m *MockDeliveryRepository) FindByID(ctx context.Context, id string) (*domain.Delivery, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockDeliveryRepository) FindUnlinked(ctx context.Context, tankID string) ([]domain.Delivery, error) {
	if m.FindUnlinkedFunc != nil {
		return m.FindUnlinkedFunc(ctx, tankID)
	}
	return []domain.Delivery{}, nil
}

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	SaveFunc     func(ctx context.Context, customer *domain.Customer) error
	FindByIDFunc func(ctx context.Context, id string) (*domain.Customer, error)
	FindAllFunc  func(ctx context.Context, activeOnly bool) ([]domain.Customer, error)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *domain.Customer) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, customer)
	}
	return nil
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, activeOnly bool) ([]domain.Customer, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, activeOnly)
	}
	return []domain.Customer{}, nil
}
