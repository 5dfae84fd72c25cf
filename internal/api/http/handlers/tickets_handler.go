package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/shopmena/helpdesk/internal/api/dto"
	"github.com/shopmena/helpdesk/internal/auth"
	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/service"
	apperrors "github.com/shopmena/helpdesk/pkg/util"
)

// TicketsHandler manages customer-facing ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Subject) == "" {
		return apperrors.NewValidationError("subject required", nil)
	}
	priority := domain.TicketPriority(req.Priority)
	if req.Priority != "" && !domain.ValidPriority(priority) {
		return apperrors.NewValidationError("invalid priority", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), principal.User, service.TicketCreateInput{
		Subject:  req.Subject,
		Category: req.Category,
		Priority: priority,
		Body:     req.Body,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketSummary(ticket, principal.Language())})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTicketsForUser(c.UserContext(), principal.User.ID, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets, principal.Language())})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, msgs, err := h.service.GetTicketForUser(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, msgs, principal.Language())})
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AddMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperrors.NewValidationError("body required", nil)
	}

	msg, err := h.service.AddUserMessage(c.UserContext(), principal.User, c.Params("id"), req.Body, req.CorrelationID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewMessageResponse(msg)})
}

// Stats GET /tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	stats, err := h.service.StatsForUser(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketStatsResponse(stats)})
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	filter := service.TicketListFilter{}

	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.TicketStatus(strings.TrimSpace(part))
			if !domain.ValidStatus(status) {
				return filter, apperrors.NewValidationError("invalid status filter", map[string]any{"status": part})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if raw := c.Query("priority"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			priority := domain.TicketPriority(strings.TrimSpace(part))
			if !domain.ValidPriority(priority) {
				return filter, apperrors.NewValidationError("invalid priority filter", map[string]any{"priority": part})
			}
			filter.Priorities = append(filter.Priorities, priority)
		}
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	if q := c.Query("q"); q != "" {
		filter.SearchTerm = &q
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, apperrors.NewValidationError("invalid limit", nil)
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, apperrors.NewValidationError("invalid offset", nil)
		}
		filter.Offset = offset
	}
	return filter, nil
}

func ticketSummaries(tickets []domain.Ticket, lang domain.Language) []dto.TicketSummary {
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketSummary(&tickets[i], lang))
	}
	return items
}

func ticketDetail(ticket *domain.Ticket, msgs []domain.TicketMessage, lang domain.Language) dto.TicketDetail {
	detail := dto.TicketDetail{TicketSummary: dto.NewTicketSummary(ticket, lang)}
	detail.Messages = make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		detail.Messages = append(detail.Messages, dto.NewMessageResponse(&msgs[i]))
	}
	return detail
}

func ticketStatsResponse(stats *domain.TicketStats) dto.TicketStatsResponse {
	return dto.TicketStatsResponse{
		Total:       stats.Total,
		Open:        stats.Open,
		InProgress:  stats.InProgress,
		WaitingUser: stats.WaitingUser,
		Resolved:    stats.Resolved,
		Closed:      stats.Closed,
	}
}
