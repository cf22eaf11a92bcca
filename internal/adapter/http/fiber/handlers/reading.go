package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/ports"
	"github.com/forecourt/backoffice/internal/service/reading"
)

// ReadingHandler exposes shift reading submission and retrieval. Submission
// runs the reconciliation calculator and freezes the result; the handler
// only translates service verdicts into HTTP statuses.
type ReadingHandler struct {
	service ports.ReadingService
	log     *zap.Logger
}

func NewReadingHandler(service ports.ReadingService, log *zap.Logger) *ReadingHandler {
	return &ReadingHandler{
		service: service,
		log:     log,
	}
}

func (h *ReadingHandler) Submit(c *fiber.Ctx) error {
	var sub ports.ReadingSubmission
	if err := c.BodyParser(&sub); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if sub.RecordedBy == "" {
		if userID, ok := c.Locals("user_id").(string); ok {
			sub.RecordedBy = userID
		}
	}

	result, err := h.service.SubmitReading(c.Context(), &sub)
	if err != nil {
		h.log.Warn("Reading submission rejected",
			zap.String("tank_id", sub.TankID),
			zap.String("date", sub.Date),
			zap.Error(err))
		return c.Status(submitStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *ReadingHandler) Get(c *fiber.Ctx) error {
	r, err := h.service.GetReading(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if r == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reading not found"})
	}
	return c.JSON(r)
}

func (h *ReadingHandler) List(c *fiber.Ctx) error {
	filter := make(map[string]interface{})
	if tankID := c.Query("tank_id"); tankID != "" {
		filter["tank_id"] = tankID
	}
	if date := c.Query("date"); date != "" {
		filter["date"] = date
	}
	if status := c.Query("validation_status"); status != "" {
		filter["validation_status"] = status
	}

	readings, err := h.service.ListReadings(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(readings)
}

// PreviousShift returns the tank's latest frozen reading, the carryover
// source the entry form pre-fills from.
func (h *ReadingHandler) PreviousShift(c *fiber.Ctx) error {
	r, err := h.service.GetPreviousShift(c.Context(), c.Params("tankId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if r == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No previous reading for this tank"})
	}
	return c.JSON(r)
}

// submitStatus maps submission failures onto HTTP statuses. The mismatch
// case is 422: the payload is well formed but the allocations do not
// balance and the operator has not confirmed them.
func submitStatus(err error) int {
	switch {
	case errors.Is(err, reading.ErrDuplicateReading), errors.Is(err, reading.ErrDeliveryNotClaimable):
		return fiber.StatusConflict
	case errors.Is(err, reading.ErrAllocationMismatch):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, reading.ErrTankNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, reading.ErrNoAttendant), errors.Is(err, reading.ErrNonDieselAllocation):
		return fiber.StatusBadRequest
	}
	return statusForError(err)
}
