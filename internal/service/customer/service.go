// Package customer maintains the account-customer directory used by diesel
// allocations.
package customer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/adapter/cache"
	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
)

type Service struct {
	customers ports.CustomerRepository
	cache     ports.Cache
	listTTL   time.Duration
	log       *zap.Logger
}

func NewService(customers ports.CustomerRepository, c ports.Cache, listTTL time.Duration, log *zap.Logger) ports.CustomerService {
	if listTTL <= 0 {
		listTTL = 10 * time.Minute
	}

	return &Service{
		customers: customers,
		cache:     c,
		listTTL:   listTTL,
		log:       log,
	}
}

func (s *Service) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	if customer.Name == "" {
		return errors.New("customer name is required")
	}

	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	customer.Active = true
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()

	if err := s.customers.Save(ctx, customer); err != nil {
		return err
	}

	// The allocation form reads the cached directory; refresh it.
	if err := s.cache.Delete(ctx, cache.CustomersKey()); err != nil {
		s.log.Warn("Failed to invalidate customer cache", zap.Error(err))
	}

	return nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context, activeOnly bool) ([]domain.Customer, error) {
	if !activeOnly {
		return s.customers.FindAll(ctx, false)
	}

	key := cache.CustomersKey()
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var customers []domain.Customer
		if err := json.Unmarshal([]byte(cached), &customers); err == nil {
			return customers, nil
		}
	}

	customers, err := s.customers.FindAll(ctx, true)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(customers); err == nil {
		if err := s.cache.Set(ctx, key, string(data), s.listTTL); err != nil {
			s.log.Warn("Failed to cache customer list", zap.Error(err))
		}
	}

	return customers, nil
}
