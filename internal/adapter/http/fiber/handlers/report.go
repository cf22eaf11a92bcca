package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/ports"
)

// ReportHandler serves the daily summary, the attendant sale breakdown and
// the spreadsheet export.
type ReportHandler struct {
	service ports.ReportService
	log     *zap.Logger
}

func NewReportHandler(service ports.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log,
	}
}

func (h *ReportHandler) DailySummary(c *fiber.Ctx) error {
	summary, err := h.service.DailySummary(c.Context(), c.Params("date"))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summary)
}

// ExportDailySummary streams the summary as an xlsx download.
func (h *ReportHandler) ExportDailySummary(c *fiber.Ctx) error {
	date := c.Params("date")

	data, err := h.service.ExportDailySummary(c.Context(), date)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="daily_summary_%s.xlsx"`, date))
	return c.Send(data)
}

func (h *ReportHandler) AttendantSales(c *fiber.Ctx) error {
	report, err := h.service.AttendantSales(c.Context(), c.Params("date"))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}
