package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-admin/internal/core/cache"
	"storefront-admin/internal/core/logger"
	"storefront-admin/internal/features/notifications/domain"

	"go.uber.org/zap"
)

// Local validation errors for chat messages.
var (
	// ErrSenderRequired is returned when a chat message has no sender name.
	ErrSenderRequired = errors.New("sender is required")
	// ErrTextRequired is returned when a chat message has no body.
	ErrTextRequired = errors.New("message text is required")
)

// maxChatTextLen bounds a single chat message body.
const maxChatTextLen = 2000

// NotificationService relays events between the redis channel and the
// websocket hub. Chat messages go out through redis first so every gateway
// instance, not just this one, fans them out to its consoles.
type NotificationService struct {
	// hub fans payloads out to the consoles connected to this instance.
	hub *Hub
	// bus is the cross-instance event channel.
	bus cache.EventBus
	// channel is the redis channel name carrying admin events.
	channel string
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(hub *Hub, bus cache.EventBus, channel string) *NotificationService {
	return &NotificationService{
		hub:     hub,
		bus:     bus,
		channel: channel,
	}
}

// Run starts the hub and pumps the event channel into it until ctx is
// cancelled. Blocks; run it in its own goroutine.
func (s *NotificationService) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	msgs, cancel, err := s.bus.Subscribe(ctx, s.channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.channel, err)
	}
	defer cancel()

	for {
		select {
		case payload, ok := <-msgs:
			if !ok {
				return nil
			}
			s.hub.Broadcast(payload)
		case <-ctx.Done():
			return nil
		}
	}
}

// HandleConnection serves one upgraded console connection until it drops.
func (s *NotificationService) HandleConnection(client *Client) {
	client.Serve()
}

// PostChat validates and publishes an operator chat message. The message
// comes back to this instance through the subscription like any other event.
func (s *NotificationService) PostChat(ctx context.Context, from, text string) (*domain.ChatMessage, error) {
	from = strings.TrimSpace(from)
	text = strings.TrimSpace(text)

	if from == "" {
		return nil, ErrSenderRequired
	}
	if text == "" {
		return nil, ErrTextRequired
	}
	if len(text) > maxChatTextLen {
		text = text[:maxChatTextLen]
	}

	msg := &domain.ChatMessage{
		Kind: domain.KindChatMessage,
		From: from,
		Text: text,
		At:   time.Now().UTC(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat message: %w", err)
	}

	if err := s.bus.Publish(ctx, s.channel, payload); err != nil {
		logger.Get().Error("Failed to publish chat message", zap.Error(err))
		return nil, fmt.Errorf("failed to publish chat message: %w", err)
	}

	return msg, nil
}
