package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lumio-edu/lumio-api/internal/dto"
	"github.com/lumio-edu/lumio-api/internal/middleware"
	"github.com/lumio-edu/lumio-api/internal/models"
	"github.com/lumio-edu/lumio-api/internal/service"
	"github.com/lumio-edu/lumio-api/internal/utils"
)

// AssistantHandler wires the AI assistant HTTP routes.
type AssistantHandler struct {
	service service.AssistantService
	logger  zerolog.Logger
}

// NewAssistantHandler constructs the handler.
func NewAssistantHandler(service service.AssistantService, logger zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		service: service,
		logger:  logger.With().Str("component", "assistant_handler").Logger(),
	}
}

// Register attaches assistant endpoints to the router group.
func (h *AssistantHandler) Register(router fiber.Router) {
	router.Post("/query", h.query)
	router.Post("/generate-assignment", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), h.generateAssignment)
}

func (h *AssistantHandler) query(c *fiber.Ctx) error {
	payload := dto.AssistantQueryRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Query(requestContext(c), userIDFromContext(c), userRoleFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assistant response", response)
}

func (h *AssistantHandler) generateAssignment(c *fiber.Ctx) error {
	payload := dto.GenerateAssignmentRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	generated, err := h.service.GenerateAssignment(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment content generated", generated)
}

func (h *AssistantHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAssistantNotConfigured):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "ai assistant is not configured")
	case errors.Is(err, service.ErrGeneratedContentInvalid):
		return utils.SendError(c, fiber.StatusBadGateway, "generated content failed validation")
	case errors.Is(err, service.ErrGradingServiceUnavailable):
		return utils.SendError(c, fiber.StatusBadGateway, "assistant service unavailable")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
