package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/ports"
)

// CustomerHandler manages the account customer directory used by the
// allocation form.
type CustomerHandler struct {
	service ports.CustomerService
	log     *zap.Logger
}

func NewCustomerHandler(service ports.CustomerService, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		log:     log,
	}
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var customer domain.Customer
	if err := c.BodyParser(&customer); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.CreateCustomer(c.Context(), &customer); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	customer, err := h.service.GetCustomer(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if customer == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
	}
	return c.JSON(customer)
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	activeOnly := c.Query("active") == "true"

	customers, err := h.service.ListCustomers(c.Context(), activeOnly)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(customers)
}
