package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
)

// StationHandler exposes the forecourt infrastructure registry: tanks,
// islands, pumps and nozzles.
type StationHandler struct {
	service ports.StationService
	log     *zap.Logger
}

func NewStationHandler(service ports.StationService, log *zap.Logger) *StationHandler {
	return &StationHandler{
		service: service,
		log:     log,
	}
}

type statusUpdateRequest struct {
	Status domain.AssetStatus `json:"status"`
}

// Tanks

func (h *StationHandler) CreateTank(c *fiber.Ctx) error {
	var tank domain.Tank
	if err := c.BodyParser(&tank); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.CreateTank(c.Context(), &tank); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(tank)
}

func (h *StationHandler) GetTank(c *fiber.Ctx) error {
	tank, err := h.service.GetTank(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if tank == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tank not found"})
	}
	return c.JSON(tank)
}

func (h *StationHandler) ListTanks(c *fiber.Ctx) error {
	filter := make(map[string]interface{})
	if fuelType := c.Query("fuel_type"); fuelType != "" {
		filter["fuel_type"] = fuelType
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	tanks, err := h.service.ListTanks(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(tanks)
}

func (h *StationHandler) UpdateTankStatus(c *fiber.Ctx) error {
	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.UpdateTankStatus(c.Context(), c.Params("id"), req.Status); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusOK)
}

// Islands

func (h *StationHandler) CreateIsland(c *fiber.Ctx) error {
	var island domain.Island
	if err := c.BodyParser(&island); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.CreateIsland(c.Context(), &island); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(island)
}

func (h *StationHandler) ListIslands(c *fiber.Ctx) error {
	islands, err := h.service.ListIslands(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(islands)
}

// Pumps

func (h *StationHandler) CreatePump(c *fiber.Ctx) error {
	var pump domain.Pump
	if err := c.BodyParser(&pump); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.CreatePump(c.Context(), &pump); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(pump)
}

func (h *StationHandler) ListPumps(c *fiber.Ctx) error {
	filter := make(map[string]interface{})
	if islandID := c.Query("island_id"); islandID != "" {
		filter["island_id"] = islandID
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	pumps, err := h.service.ListPumps(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(pumps)
}

func (h *StationHandler) UpdatePumpStatus(c *fiber.Ctx) error {
	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.UpdatePumpStatus(c.Context(), c.Params("id"), req.Status); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusOK)
}

// Nozzles

func (h *StationHandler) CreateNozzle(c *fiber.Ctx) error {
	var nozzle domain.Nozzle
	if err := c.BodyParser(&nozzle); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.CreateNozzle(c.Context(), &nozzle); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(nozzle)
}

func (h *StationHandler) ListNozzles(c *fiber.Ctx) error {
	filter := make(map[string]interface{})
	if pumpID := c.Query("pump_id"); pumpID != "" {
		filter["pump_id"] = pumpID
	}
	if tankID := c.Query("tank_id"); tankID != "" {
		filter["tank_id"] = tankID
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	nozzles, err := h.service.ListNozzles(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(nozzles)
}

func (h *StationHandler) UpdateNozzleStatus(c *fiber.Ctx) error {
	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.UpdateNozzleStatus(c.Context(), c.Params("id"), req.Status); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusOK)
}

// statusForError maps service validation messages onto HTTP statuses.
// Anything unrecognized is treated as an internal failure.
func statusForError(err error) int {
	msg := err.Error()
	switch {
	case strings.HasSuffix(msg, "not found"):
		return fiber.StatusNotFound
	case strings.Contains(msg, "required"),
		strings.Contains(msg, "must"),
		strings.Contains(msg, "unknown"),
		strings.Contains(msg, "does not match"):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
