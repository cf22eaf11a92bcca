package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/ports"
)

// DeliveryHandler records tanker offloads into the unlinked pool and lists
// what is still waiting to be claimed by a shift reading.
type DeliveryHandler struct {
	service ports.DeliveryService
	log     *zap.Logger
}

func NewDeliveryHandler(service ports.DeliveryService, log *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		service: service,
		log:     log,
	}
}

func (h *DeliveryHandler) Create(c *fiber.Ctx) error {
	var req ports.DeliveryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.RecordedBy == "" {
		if userID, ok := c.Locals("user_id").(string); ok {
			req.RecordedBy = userID
		}
	}

	delivery, err := h.service.RecordDelivery(c.Context(), &req)
	if err != nil {
		h.log.Warn("Delivery rejected",
			zap.String("tank_id", req.TankID),
			zap.Error(err))
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(delivery)
}

func (h *DeliveryHandler) Get(c *fiber.Ctx) error {
	delivery, err := h.service.GetDelivery(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if delivery == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Delivery not found"})
	}
	return c.JSON(delivery)
}

// ListUnlinked returns deliveries awaiting a shift reading, optionally
// narrowed to one tank.
func (h *DeliveryHandler) ListUnlinked(c *fiber.Ctx) error {
	deliveries, err := h.service.ListUnlinked(c.Context(), c.Query("tank_id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(deliveries)
}
