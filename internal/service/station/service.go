// Package station manages the forecourt inventory: tanks, islands, pumps
// and nozzles. Readings reference this inventory, so creation validates the
// wiring (a nozzle must point at an existing pump and tank of the same fuel).
package station

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
)

type Service struct {
	tanks   ports.TankRepository
	islands ports.IslandRepository
	pumps   ports.PumpRepository
	nozzles ports.NozzleRepository
	log     *zap.Logger
}

func NewService(tanks ports.TankRepository, islands ports.IslandRepository, pumps ports.PumpRepository, nozzles ports.NozzleRepository, log *zap.Logger) ports.StationService {
	return &Service{
		tanks:   tanks,
		islands: islands,
		pumps:   pumps,
		nozzles: nozzles,
		log:     log,
	}
}

func (s *Service) CreateTank(ctx context.Context, tank *domain.Tank) error {
	if tank.Name == "" {
		return errors.New("tank name is required")
	}
	if tank.FuelType != domain.FuelTypeDiesel && tank.FuelType != domain.FuelTypePetrol {
		return fmt.Errorf("unknown fuel type: %s", tank.FuelType)
	}
	if tank.CapacityLiters.IsNegative() || tank.CapacityLiters.IsZero() {
		return errors.New("tank capacity must be positive")
	}

	if tank.ID == "" {
		tank.ID = uuid.NewString()
	}
	if tank.Status == "" {
		tank.Status = domain.AssetStatusActive
	}

	s.log.Info("Creating tank",
		zap.String("tank_id", tank.ID),
		zap.String("fuel_type", string(tank.FuelType)),
	)

	return s.tanks.Save(ctx, tank)
}

func (s *Service) GetTank(ctx context.Context, id string) (*domain.Tank, error) {
	return s.tanks.FindByID(ctx, id)
}

func (s *Service) ListTanks(ctx context.Context, filter map[string]interface{}) ([]domain.Tank, error) {
	return s.tanks.FindAll(ctx, filter)
}

func (s *Service) UpdateTankStatus(ctx context.Context, id string, status domain.AssetStatus) error {
	if !validStatus(status) {
		return fmt.Errorf("unknown status: %s", status)
	}

	tank, err := s.tanks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if tank == nil {
		return errors.New("tank not found")
	}

	return s.tanks.UpdateStatus(ctx, id, status)
}

func (s *Service) CreateIsland(ctx context.Context, island *domain.Island) error {
	if island.Name == "" {
		return errors.New("island name is required")
	}
	if island.ID == "" {
		island.ID = uuid.NewString()
	}

	return s.islands.Save(ctx, island)
}

func (s *Service) ListIslands(ctx context.Context) ([]domain.Island, error) {
	return s.islands.FindAll(ctx)
}

func (s *Service) CreatePump(ctx context.Context, pump *domain.Pump) error {
	if pump.Name == "" {
		return errors.New("pump name is required")
	}

	island, err := s.islands.FindByID(ctx, pump.IslandID)
	if err != nil {
		return err
	}
	if island == nil {
		return errors.New("island not found")
	}

	if pump.ID == "" {
		pump.ID = uuid.NewString()
	}
	if pump.Status == "" {
		pump.Status = domain.AssetStatusActive
	}

	return s.pumps.Save(ctx, pump)
}

func (s *Service) ListPumps(ctx context.Context, filter map[string]interface{}) ([]domain.Pump, error) {
	return s.pumps.FindAll(ctx, filter)
}

func (s *Service) UpdatePumpStatus(ctx context.Context, id string, status domain.AssetStatus) error {
	if !validStatus(status) {
		return fmt.Errorf("unknown status: %s", status)
	}

	pump, err := s.pumps.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if pump == nil {
		return errors.New("pump not found")
	}

	return s.pumps.UpdateStatus(ctx, id, status)
}

func (s *Service) CreateNozzle(ctx context.Context, nozzle *domain.Nozzle) error {
	pump, err := s.pumps.FindByID(ctx, nozzle.PumpID)
	if err != nil {
		return err
	}
	if pump == nil {
		return errors.New("pump not found")
	}

	tank, err := s.tanks.FindByID(ctx, nozzle.TankID)
	if err != nil {
		return err
	}
	if tank == nil {
		return errors.New("tank not found")
	}

	// A nozzle dispenses whatever its tank holds.
	if nozzle.FuelType == "" {
		nozzle.FuelType = tank.FuelType
	}
	if nozzle.FuelType != tank.FuelType {
		return fmt.Errorf("nozzle fuel type %s does not match tank fuel type %s", nozzle.FuelType, tank.FuelType)
	}

	if nozzle.ID == "" {
		nozzle.ID = uuid.NewString()
	}
	if nozzle.Status == "" {
		nozzle.Status = domain.AssetStatusActive
	}

	s.log.Info("Creating nozzle",
		zap.String("nozzle_id", nozzle.ID),
		zap.String("pump_id", nozzle.PumpID),
		zap.String("tank_id", nozzle.TankID),
	)

	return s.nozzles.Save(ctx, nozzle)
}

func (s *Service) ListNozzles(ctx context.Context, filter map[string]interface{}) ([]domain.Nozzle, error) {
	return s.nozzles.FindAll(ctx, filter)
}

func (s *Service) UpdateNozzleStatus(ctx context.Context, id string, status domain.AssetStatus) error {
	if !validStatus(status) {
		return fmt.Errorf("unknown status: %s", status)
	}

	nozzle, err := s.nozzles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if nozzle == nil {
		return errors.New("nozzle not found")
	}

	return s.nozzles.UpdateStatus(ctx, id, status)
}

func validStatus(status domain.AssetStatus) bool {
	switch status {
	case domain.AssetStatusActive, domain.AssetStatusInactive, domain.AssetStatusMaintenance:
		return true
	}
	return false
}
