package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lumio-edu/lumio-api/internal/middleware"
	"github.com/lumio-edu/lumio-api/internal/models"
	"github.com/lumio-edu/lumio-api/internal/service"
	"github.com/lumio-edu/lumio-api/internal/utils"
)

// ExportHandler serves downloadable grade reports.
type ExportHandler struct {
	service service.ExportService
	logger  zerolog.Logger
}

// NewExportHandler constructs the handler.
func NewExportHandler(service service.ExportService, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		logger:  logger.With().Str("component", "export_handler").Logger(),
	}
}

// RegisterClassScoped attaches the export route under the classes group.
func (h *ExportHandler) RegisterClassScoped(router fiber.Router) {
	router.Get("/:id/export", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), h.classGrades)
}

func (h *ExportHandler) classGrades(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	format := c.Query("format", service.ExportFormatCSV)

	file, err := h.service.ClassGrades(requestContext(c), userIDFromContext(c), classID, format)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrNotClassOwner):
			return utils.SendError(c, fiber.StatusForbidden, "not the class owner")
		case errors.Is(err, service.ErrUnsupportedExportFormat):
			return utils.SendError(c, fiber.StatusBadRequest, "unsupported export format")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Send(file.Data)
}
