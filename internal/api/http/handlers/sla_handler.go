package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fluxdesk/helpdesk-sla/internal/service"
	"github.com/fluxdesk/helpdesk-sla/pkg/util"
)

// SlaHandler exposes per-ticket evaluation, the dashboard and the admin
// recompute surface.
type SlaHandler struct {
	slaService     *service.SlaService
	metricsService *service.MetricsService
}

// NewSlaHandler returns a new handler instance.
func NewSlaHandler(slaService *service.SlaService, metricsService *service.MetricsService) *SlaHandler {
	return &SlaHandler{slaService: slaService, metricsService: metricsService}
}

// TicketSla returns the current SLA state of one ticket.
func (h *SlaHandler) TicketSla(c *fiber.Ctx) error {
	result, err := h.slaService.EvaluateOne(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Dashboard returns the aggregate metrics for a period. period_start and
// period_end are optional RFC 3339 dates or instants.
func (h *SlaHandler) Dashboard(c *fiber.Ctx) error {
	start, err := parsePeriodParam(c.Query("period_start"))
	if err != nil {
		return util.NewValidationError("invalid period_start", map[string]any{"value": c.Query("period_start")})
	}
	end, err := parsePeriodParam(c.Query("period_end"))
	if err != nil {
		return util.NewValidationError("invalid period_end", map[string]any{"value": c.Query("period_end")})
	}

	metrics, err := h.metricsService.Dashboard(c.UserContext(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(metrics)
}

// Recompute triggers a full batch recompute.
func (h *SlaHandler) Recompute(c *fiber.Ctx) error {
	stats, err := h.slaService.RecomputeAll(c.UserContext(), "manual")
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// Runs lists recent batch runs.
func (h *SlaHandler) Runs(c *fiber.Ctx) error {
	runs, err := h.slaService.ListRuns(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"runs": runs})
}

func parsePeriodParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
