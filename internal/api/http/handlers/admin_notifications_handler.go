package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/shopmena/helpdesk/internal/api/dto"
	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/service"
	apperrors "github.com/shopmena/helpdesk/pkg/util"
)

// AdminNotificationsHandler manages console-side notification fan-out.
type AdminNotificationsHandler struct {
	service *service.NotificationService
}

// NewAdminNotificationsHandler constructs handler.
func NewAdminNotificationsHandler(notificationService *service.NotificationService) *AdminNotificationsHandler {
	return &AdminNotificationsHandler{service: notificationService}
}

var broadcastTypes = map[domain.NotificationType]bool{
	domain.NotificationTypeOrderUpdate: true,
	domain.NotificationTypePromotion:   true,
	domain.NotificationTypeSystem:      true,
}

// Broadcast POST /admin/notifications/broadcast. Stores one copy per
// active customer.
func (h *AdminNotificationsHandler) Broadcast(c *fiber.Ctx) error {
	var req dto.BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.TitleEn) == "" || strings.TrimSpace(req.BodyEn) == "" {
		return apperrors.NewValidationError("title_en and body_en required", nil)
	}
	notificationType := domain.NotificationType(req.Type)
	if !broadcastTypes[notificationType] {
		return apperrors.NewValidationError("unsupported broadcast type", map[string]any{"type": req.Type})
	}

	delivered, err := h.service.Broadcast(c.UserContext(), service.NotificationInput{
		Type:    notificationType,
		TitleEn: req.TitleEn,
		TitleAr: req.TitleAr,
		BodyEn:  req.BodyEn,
		BodyAr:  req.BodyAr,
		Payload: req.Payload,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"delivered": delivered}})
}
