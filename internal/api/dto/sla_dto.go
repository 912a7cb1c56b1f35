package dto

import (
	"time"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

// DashboardQuery captures the optional period filters.
type DashboardQuery struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// SlaConfigRequest payload for updating one priority's thresholds.
type SlaConfigRequest struct {
	ResponseLimitHours   float64 `json:"response_limit_hours"`
	ResolutionLimitHours float64 `json:"resolution_limit_hours"`
	RiskPercent          float64 `json:"risk_percent"`
	UseBusinessHours     bool    `json:"use_business_hours"`
	UseHolidays          bool    `json:"use_holidays"`
	Description          string  `json:"description"`
	Active               bool    `json:"active"`
}

// SlaConfigResponse mirrors one configuration row.
type SlaConfigResponse struct {
	Priority             domain.TicketPriority `json:"priority"`
	ResponseLimitHours   float64               `json:"response_limit_hours"`
	ResolutionLimitHours float64               `json:"resolution_limit_hours"`
	RiskPercent          float64               `json:"risk_percent"`
	UseBusinessHours     bool                  `json:"use_business_hours"`
	UseHolidays          bool                  `json:"use_holidays"`
	Description          string                `json:"description"`
	Active               bool                  `json:"active"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// NewSlaConfigResponse maps a domain configuration.
func NewSlaConfigResponse(cfg *domain.SlaConfig) SlaConfigResponse {
	return SlaConfigResponse{
		Priority:             cfg.Priority,
		ResponseLimitHours:   cfg.ResponseLimitHours,
		ResolutionLimitHours: cfg.ResolutionLimitHours,
		RiskPercent:          cfg.RiskPercent,
		UseBusinessHours:     cfg.UseBusinessHours,
		UseHolidays:          cfg.UseHolidays,
		Description:          cfg.Description,
		Active:               cfg.Active,
		UpdatedAt:            cfg.UpdatedAt,
	}
}

// BusinessHoursRequest payload for one weekday window.
type BusinessHoursRequest struct {
	Weekday     int  `json:"weekday"`
	StartMinute int  `json:"start_minute"`
	EndMinute   int  `json:"end_minute"`
	Active      bool `json:"active"`
}

// BusinessHoursResponse mirrors one window row.
type BusinessHoursResponse struct {
	Weekday     int       `json:"weekday"`
	StartMinute int       `json:"start_minute"`
	EndMinute   int       `json:"end_minute"`
	Active      bool      `json:"active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBusinessHoursResponse maps a domain window.
func NewBusinessHoursResponse(h *domain.BusinessHours) BusinessHoursResponse {
	return BusinessHoursResponse{
		Weekday:     int(h.Weekday),
		StartMinute: h.Window.StartMinute,
		EndMinute:   h.Window.EndMinute,
		Active:      h.Active,
		UpdatedAt:   h.UpdatedAt,
	}
}

// HolidayResponse mirrors one holiday row.
type HolidayResponse struct {
	Date      string             `json:"date"`
	Name      string             `json:"name"`
	Kind      domain.HolidayKind `json:"kind"`
	Recurring bool               `json:"recurring"`
	Active    bool               `json:"active"`
}

// NewHolidayResponses maps a holiday slice.
func NewHolidayResponses(holidays []domain.Holiday) []HolidayResponse {
	out := make([]HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		out = append(out, HolidayResponse{
			Date:      h.Date.Format("2006-01-02"),
			Name:      h.Name,
			Kind:      h.Kind,
			Recurring: h.Recurring,
			Active:    h.Active,
		})
	}
	return out
}

// GenerateHolidaysRequest payload for the holiday generation endpoint.
type GenerateHolidaysRequest struct {
	FromYear int `json:"from_year"`
	ToYear   int `json:"to_year"`
}
