package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fluxdesk/helpdesk-sla/internal/api/dto"
	"github.com/fluxdesk/helpdesk-sla/internal/auth"
	"github.com/fluxdesk/helpdesk-sla/internal/service"
	"github.com/fluxdesk/helpdesk-sla/pkg/util"
)

// TicketsHandler exposes the ticket lifecycle surface consumed by agents.
type TicketsHandler struct {
	ticketService *service.TicketService
}

// NewTicketsHandler returns a new handler instance.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{ticketService: ticketService}
}

// Get returns one ticket.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.ticketService.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// UpdateStatus applies a status transition.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if req.Status == "" {
		return util.NewValidationError("status is required", nil)
	}

	ticket, err := h.ticketService.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, actorID(c), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// Pause opens a manual pause on the ticket.
func (h *TicketsHandler) Pause(c *fiber.Ctx) error {
	var req dto.PauseRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	pause, err := h.ticketService.PauseTicket(c.UserContext(), c.Params("id"), actorID(c), req.Reason)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPauseResponse(pause))
}

// Resume closes the open pause on the ticket.
func (h *TicketsHandler) Resume(c *fiber.Ctx) error {
	pause, err := h.ticketService.ResumeTicket(c.UserContext(), c.Params("id"), actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPauseResponse(pause))
}

// History lists the recorded status transitions.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	entries, err := h.ticketService.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"history": dto.NewStatusHistoryEntries(entries)})
}

func actorID(c *fiber.Ctx) string {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return principal.SubjectID
	}
	return ""
}
