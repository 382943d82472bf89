package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agency-billing/internal/application/billing"
	"github.com/jhoicas/agency-billing/internal/application/dto"
)

// SettingsHandler configuración global y plantillas (solo admin).
type SettingsHandler struct {
	settings  *billing.SettingsUseCase
	templates *billing.TemplateUseCase
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(settings *billing.SettingsUseCase, templates *billing.TemplateUseCase) *SettingsHandler {
	return &SettingsHandler{settings: settings, templates: templates}
}

// GetSettings GET /api/settings
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.settings.Get(c.UserContext(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateSettings PUT /api/settings
// Solo afecta a facturas creadas desde ese momento.
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.SettingsDTO
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.settings.Update(c.UserContext(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListTemplates GET /api/templates
func (h *SettingsHandler) ListTemplates(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.templates.List(c.UserContext(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateTemplate POST /api/templates
func (h *SettingsHandler) CreateTemplate(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.TemplateRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.templates.Create(c.UserContext(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
