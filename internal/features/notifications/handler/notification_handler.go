package handler

import (
	"errors"
	"net/http"

	"storefront-admin/internal/core/auth"
	"storefront-admin/internal/core/config"
	"storefront-admin/internal/features/notifications/service"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles the websocket endpoint and chat messages.
type NotificationHandler struct {
	// service relays events between redis and the hub.
	service *service.NotificationService
	// hub holds the consoles connected to this instance.
	hub *service.Hub
	// authCfg validates the token passed on the websocket query string.
	authCfg config.AuthConfig
}

// NewNotificationHandler creates a new instance of NotificationHandler.
func NewNotificationHandler(s *service.NotificationService, hub *service.Hub, authCfg config.AuthConfig) *NotificationHandler {
	return &NotificationHandler{
		service: s,
		hub:     hub,
		authCfg: authCfg,
	}
}

// ChatMessageRequest is the body of POST /chat/messages.
type ChatMessageRequest struct {
	// From is the display name of the sender.
	From string `json:"from"`
	// Text is the message body.
	Text string `json:"text"`
}

// Upgrade gates GET /ws. Browsers cannot set an Authorization header on a
// websocket handshake, so the token travels as a query parameter instead.
func (h *NotificationHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, ok := auth.Resolve(h.authCfg, c.Query("token")); !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid token",
		})
	}
	return c.Next()
}

// ServeWS handles GET /ws after Upgrade. The callback blocks for the lifetime
// of the connection.
func (h *NotificationHandler) ServeWS() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.service.HandleConnection(service.NewClient(h.hub, conn))
	})
}

// PostChatMessage handles POST /chat/messages.
// @Summary Broadcast a chat message to all connected consoles
// @Tags Notifications
// @Accept json
// @Produce json
// @Param body body ChatMessageRequest true "Message"
// @Success 202 {object} domain.ChatMessage
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /chat/messages [post]
func (h *NotificationHandler) PostChatMessage(c *fiber.Ctx) error {
	var req ChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	msg, err := h.service.PostChat(c.Context(), req.From, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrSenderRequired) || errors.Is(err, service.ErrTextRequired) {
			return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to publish message",
		})
	}

	return c.Status(http.StatusAccepted).JSON(msg)
}
