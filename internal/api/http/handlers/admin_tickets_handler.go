package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/shopmena/helpdesk/internal/api/dto"
	"github.com/shopmena/helpdesk/internal/auth"
	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/service"
	apperrors "github.com/shopmena/helpdesk/pkg/util"
)

// AdminTicketsHandler manages console-side ticket endpoints.
type AdminTicketsHandler struct {
	service *service.TicketService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketService *service.TicketService) *AdminTicketsHandler {
	return &AdminTicketsHandler{service: ticketService}
}

// ListTickets GET /admin/tickets.
func (h *AdminTicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTicketsForAdmin(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets, principal.Language())})
}

// GetTicket GET /admin/tickets/:id. Returns the full conversation,
// internal notes included.
func (h *AdminTicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	ticket, msgs, err := h.service.GetTicketForAdmin(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, msgs, principal.Language())})
}

// Reply POST /admin/tickets/:id/messages.
func (h *AdminTicketsHandler) Reply(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.AdminReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperrors.NewValidationError("body required", nil)
	}

	msg, err := h.service.ReplyAsAdmin(c.UserContext(), principal.User, c.Params("id"), req.Body, req.IsInternal, req.CorrelationID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewMessageResponse(msg)})
}

// UpdateTicket PATCH /admin/tickets/:id.
func (h *AdminTicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == nil && req.Priority == nil {
		return apperrors.NewValidationError("status or priority required", nil)
	}

	input := service.TicketUpdateInput{}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		if !domain.ValidStatus(status) {
			return apperrors.NewValidationError("invalid status", nil)
		}
		input.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(*req.Priority)
		if !domain.ValidPriority(priority) {
			return apperrors.NewValidationError("invalid priority", nil)
		}
		input.Priority = &priority
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), principal.User, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket, principal.Language())})
}

// Stats GET /admin/tickets/stats.
func (h *AdminTicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.StatsForAdmin(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketStatsResponse(stats)})
}
