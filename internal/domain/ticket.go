package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates the canonical lifecycle states for tickets. Raw
// status strings coming from the store may use legacy spellings and must be
// passed through NormalizeStatus before comparison.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "aberto"
	StatusInProgress TicketStatus = "em_atendimento"
	StatusWaiting    TicketStatus = "aguardando"
	StatusReview     TicketStatus = "em_analise"
	StatusResolved   TicketStatus = "concluido"
	StatusCancelled  TicketStatus = "cancelado"
)

// TicketPriority is the SLA category of a ticket, lower-cased and unaccented.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "baixa"
	PriorityNormal   TicketPriority = "normal"
	PriorityHigh     TicketPriority = "alta"
	PriorityCritical TicketPriority = "critica"
)

// Ticket is the read model the SLA engine consumes. The surrounding
// application owns the record; the engine only reads it. All instants are
// normalized to the service reference timezone before they reach this struct.
type Ticket struct {
	ID              string
	ExternalKey     string
	Title           string
	Priority        TicketPriority
	Status          TicketStatus
	OpenedAt        time.Time
	FirstResponseAt *time.Time
	ConcludedAt     *time.Time
	CancelledAt     *time.Time
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Deleted reports whether the ticket is soft-deleted.
func (t *Ticket) Deleted() bool {
	return t.DeletedAt != nil
}

// IsActive reports whether the SLA clocks run in this status.
func (s TicketStatus) IsActive() bool {
	return s == StatusOpen || s == StatusInProgress
}

// IsPausing reports whether this status freezes the SLA clocks.
func (s TicketStatus) IsPausing() bool {
	return s == StatusWaiting || s == StatusReview
}

// IsFinal reports whether the SLA clocks stopped for good.
func (s TicketStatus) IsFinal() bool {
	return s == StatusResolved || s == StatusCancelled
}

// statusAliases maps every historical spelling found in production data to the
// canonical status. Normalization happens once at the ingestion boundary; the
// engine never sees raw strings.
var statusAliases = map[string]TicketStatus{
	"aberto":         StatusOpen,
	"em andamento":   StatusInProgress,
	"em atendimento": StatusInProgress,
	"em_atendimento": StatusInProgress,
	"aguardando":     StatusWaiting,
	"em análise":     StatusReview,
	"em analise":     StatusReview,
	"em_analise":     StatusReview,
	"concluído":      StatusResolved,
	"concluido":      StatusResolved,
	"expirado":       StatusCancelled,
	"cancelado":      StatusCancelled,
}

// NormalizeStatus maps a raw status string, in any historical spelling, to the
// canonical TicketStatus. Unknown values fall back to a lower-cased,
// unaccented token so they at least compare consistently.
func NormalizeStatus(raw string) TicketStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	if status, ok := statusAliases[key]; ok {
		return status
	}
	return TicketStatus(slugify(key))
}

// NormalizePriority maps a raw priority label to its canonical form.
// "Alta" and "alta" are the same category.
func NormalizePriority(raw string) TicketPriority {
	key := slugify(strings.ToLower(strings.TrimSpace(raw)))
	if key == "" {
		return PriorityNormal
	}
	return TicketPriority(key)
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "ã", "a", "â", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "õ", "o", "ô", "o",
	"ú", "u", "ç", "c",
)

func slugify(s string) string {
	return accentReplacer.Replace(strings.ReplaceAll(s, " ", "_"))
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	StatusOpen:       {StatusInProgress, StatusWaiting, StatusReview, StatusCancelled},
	StatusInProgress: {StatusWaiting, StatusReview, StatusResolved, StatusCancelled},
	StatusWaiting:    {StatusInProgress, StatusReview, StatusResolved, StatusCancelled},
	StatusReview:     {StatusInProgress, StatusWaiting, StatusResolved, StatusCancelled},
	StatusResolved:   {StatusInProgress},
	StatusCancelled:  {},
}

// IsValidTransition reports whether moving from current to next is allowed.
func IsValidTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
