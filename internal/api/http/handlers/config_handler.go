package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fluxdesk/helpdesk-sla/internal/api/dto"
	"github.com/fluxdesk/helpdesk-sla/internal/service"
	"github.com/fluxdesk/helpdesk-sla/pkg/util"
)

// ConfigHandler exposes the SLA configuration surface: thresholds, business
// hours and the holiday calendar.
type ConfigHandler struct {
	configService *service.ConfigService
}

// NewConfigHandler returns a new handler instance.
func NewConfigHandler(configService *service.ConfigService) *ConfigHandler {
	return &ConfigHandler{configService: configService}
}

// ListConfigs returns the active per-priority configurations.
func (h *ConfigHandler) ListConfigs(c *fiber.Ctx) error {
	configs, err := h.configService.ListConfigs(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.SlaConfigResponse, 0, len(configs))
	for i := range configs {
		out = append(out, dto.NewSlaConfigResponse(&configs[i]))
	}
	return c.JSON(fiber.Map{"configs": out})
}

// UpdateConfig updates one priority's thresholds.
func (h *ConfigHandler) UpdateConfig(c *fiber.Ctx) error {
	var req dto.SlaConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	cfg, err := h.configService.UpdateConfig(c.UserContext(), service.SlaConfigUpdateInput{
		Priority:             c.Params("priority"),
		ResponseLimitHours:   req.ResponseLimitHours,
		ResolutionLimitHours: req.ResolutionLimitHours,
		RiskPercent:          req.RiskPercent,
		UseBusinessHours:     req.UseBusinessHours,
		UseHolidays:          req.UseHolidays,
		Description:          req.Description,
		Active:               req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSlaConfigResponse(cfg))
}

// ListBusinessHours returns every configured weekday window.
func (h *ConfigHandler) ListBusinessHours(c *fiber.Ctx) error {
	hours, err := h.configService.ListBusinessHours(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.BusinessHoursResponse, 0, len(hours))
	for i := range hours {
		out = append(out, dto.NewBusinessHoursResponse(&hours[i]))
	}
	return c.JSON(fiber.Map{"business_hours": out})
}

// UpsertBusinessHours creates or replaces one weekday window.
func (h *ConfigHandler) UpsertBusinessHours(c *fiber.Ctx) error {
	var req dto.BusinessHoursRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	hours, err := h.configService.UpsertBusinessHours(c.UserContext(), req.Weekday, req.StartMinute, req.EndMinute, req.Active)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBusinessHoursResponse(hours))
}

// ListHolidays returns the holiday rows of a year, defaulting to the current
// one.
func (h *ConfigHandler) ListHolidays(c *fiber.Ctx) error {
	year := c.QueryInt("year", time.Now().Year())
	holidays, err := h.configService.ListHolidays(c.UserContext(), year)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"year": year, "holidays": dto.NewHolidayResponses(holidays)})
}

// GenerateHolidays computes and stores the national calendar for a year range.
func (h *ConfigHandler) GenerateHolidays(c *fiber.Ctx) error {
	var req dto.GenerateHolidaysRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if req.FromYear == 0 {
		req.FromYear = time.Now().Year()
	}
	if req.ToYear == 0 {
		req.ToYear = req.FromYear
	}

	holidays, err := h.configService.GenerateHolidays(c.UserContext(), req.FromYear, req.ToYear)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"from_year": req.FromYear,
		"to_year":   req.ToYear,
		"holidays":  dto.NewHolidayResponses(holidays),
	})
}
