package domain

import "time"

// SlaConfig holds the per-priority thresholds. At most one active row exists
// per priority; lookup falls back to the default priority when a ticket's
// priority has no configuration.
type SlaConfig struct {
	ID                   string
	Priority             TicketPriority
	ResponseLimitHours   float64
	ResolutionLimitHours float64
	RiskPercent          float64
	UseBusinessHours     bool
	UseHolidays          bool
	Description          string
	Active               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// BusinessWindow is a daily working window in minutes from midnight.
// Invariant: EndMinute > StartMinute.
type BusinessWindow struct {
	StartMinute int
	EndMinute   int
}

// BusinessHours is one configured window for a weekday.
type BusinessHours struct {
	ID        string
	Weekday   time.Weekday
	Window    BusinessWindow
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HolidayKind classifies holidays.
type HolidayKind string

const (
	HolidayNational HolidayKind = "nacional"
	HolidayOptional HolidayKind = "ponto_facultativo"
	HolidayRegional HolidayKind = "regional"
)

// Holiday is a non-working calendar date. Recurring holidays repeat every
// year at the same month/day; movable feasts are one-off rows per year.
type Holiday struct {
	ID        string
	Date      time.Time
	Name      string
	Kind      HolidayKind
	Recurring bool
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PauseKind distinguishes status-driven pauses from operator-requested ones.
type PauseKind string

const (
	PauseAutomatic PauseKind = "automatic"
	PauseManual    PauseKind = "manual"
)

// PauseInterval is a span during which a ticket's SLA clocks are frozen.
// EndedAt == nil means the pause is still open; at most one open pause may
// exist per ticket. DurationHours is wall-clock time, set on close; the
// business-hour contribution to SLA is computed separately by the accumulator.
type PauseInterval struct {
	ID            string
	TicketID      string
	StartedAt     time.Time
	EndedAt       *time.Time
	DurationHours *float64
	Kind          PauseKind
	TriggerStatus TicketStatus
	Reason        string
	CreatedAt     time.Time
}

// Open reports whether the pause has not been closed yet.
func (p *PauseInterval) Open() bool {
	return p.EndedAt == nil
}

// SlaClock is the derived state of one SLA clock (response or resolution).
// Exactly one of OnTime, AtRisk, Breached is true.
type SlaClock struct {
	LimitHours  float64 `json:"limit_hours"`
	WorkedHours float64 `json:"worked_hours"`
	PausedHours float64 `json:"paused_hours"`
	Percent     float64 `json:"percent"`
	OnTime      bool    `json:"on_time"`
	AtRisk      bool    `json:"at_risk"`
	Breached    bool    `json:"breached"`
}

// SlaResult is the derived SLA record for one ticket. It is cache material,
// never source of truth.
type SlaResult struct {
	TicketID    string         `json:"ticket_id"`
	ExternalKey string         `json:"external_key"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"status"`
	Paused      bool           `json:"paused"`
	Active      bool           `json:"active"`
	HasConfig   bool           `json:"has_config"`
	Response    SlaClock       `json:"response"`
	Resolution  SlaClock       `json:"resolution"`
	EvaluatedAt time.Time      `json:"evaluated_at"`
}

// PrioritySummary is the per-priority dashboard breakdown.
type PrioritySummary struct {
	Priority        TicketPriority `json:"priority"`
	Total           int            `json:"total"`
	AtRisk          int            `json:"at_risk"`
	Breached        int            `json:"breached"`
	Paused          int            `json:"paused"`
	AtRiskPercent   float64        `json:"at_risk_percent"`
	BreachedPercent float64        `json:"breached_percent"`
}

// DashboardMetrics is the aggregate payload consumed by the admin frontend.
type DashboardMetrics struct {
	TotalTickets       int               `json:"total_tickets"`
	OpenTickets        int               `json:"open_tickets"`
	TicketsAtRisk      int               `json:"tickets_at_risk"`
	TicketsBreached    int               `json:"tickets_breached"`
	TicketsPaused      int               `json:"tickets_paused"`
	CompliancePercent  float64           `json:"compliance_percent"`
	AtRiskPercent      float64           `json:"at_risk_percent"`
	BreachedPercent    float64           `json:"breached_percent"`
	AvgResponseHours   float64           `json:"avg_response_hours"`
	AvgResolutionHours float64           `json:"avg_resolution_hours"`
	ByPriority         []PrioritySummary `json:"by_priority"`
	TopAtRisk          []SlaResult       `json:"top_at_risk"`
	TopBreached        []SlaResult       `json:"top_breached"`
	TopPaused          []SlaResult       `json:"top_paused"`
	PeriodStart        time.Time         `json:"period_start"`
	PeriodEnd          time.Time         `json:"period_end"`
	CutoverDate        time.Time         `json:"sla_cutover_date"`
	GeneratedAt        time.Time         `json:"generated_at"`
	CachedAt           *time.Time        `json:"cached_at,omitempty"`
}

// BatchStats summarizes one full recompute run.
type BatchStats struct {
	Processed int   `json:"processed"`
	AtRisk    int   `json:"at_risk"`
	Breached  int   `json:"breached"`
	Paused    int   `json:"paused"`
	Failed    int   `json:"failed"`
	ElapsedMS int64 `json:"elapsed_ms"`
}

// BatchRun is the persisted log row for a recompute run.
type BatchRun struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	ExecutedAt   time.Time `json:"executed_at"`
	Processed    int       `json:"processed"`
	AtRisk       int       `json:"at_risk"`
	Breached     int       `json:"breached"`
	Paused       int       `json:"paused"`
	Failed       int       `json:"failed"`
	ElapsedMS    int64     `json:"elapsed_ms"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// StatusHistory records one ticket status transition.
type StatusHistory struct {
	ID        string
	TicketID  string
	OldStatus TicketStatus
	NewStatus TicketStatus
	ChangedBy string
	Comment   string
	CreatedAt time.Time
}
