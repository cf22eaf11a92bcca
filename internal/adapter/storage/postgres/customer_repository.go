package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
)

type CustomerRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCustomerRepository(db *gorm.DB, log *zap.Logger) ports.CustomerRepository {
	return &CustomerRepository{
		db:  db,
		log: log,
	}
}

func (r *CustomerRepository) Save(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, activeOnly bool) ([]domain.Customer, error) {
	var customers []domain.Customer
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	err := query.Order("name").Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}
