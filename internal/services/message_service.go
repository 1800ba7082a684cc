package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/siddeshwardm/chat-application/internal/models"
	"github.com/siddeshwardm/chat-application/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Deliverer pushes a payload to a user's live connections.
type Deliverer interface {
	DeliverToUser(recipientID string, payload any)
}

type SendInput struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

type MessageService struct {
	messages *repository.MessageRepo
	users    *repository.UserRepo
	hub      Deliverer
}

func NewMessageService(messages *repository.MessageRepo, users *repository.UserRepo, hub Deliverer) *MessageService {
	return &MessageService{messages: messages, users: users, hub: hub}
}

// SidebarUsers lists everyone except me, each with the number of unseen
// messages they have sent me.
func (s *MessageService) SidebarUsers(ctx context.Context, me uuid.UUID) ([]models.UserWithUnread, error) {
	users, err := s.users.ListExcept(ctx, me)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", me.String()).Msg("Failed to list users")
		return nil, fmt.Errorf("list users: %w", err)
	}
	counts, err := s.messages.UnreadCountsBySender(ctx, me)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", me.String()).Msg("Failed to count unread messages")
		return nil, fmt.Errorf("count unread: %w", err)
	}

	out := make([]models.UserWithUnread, 0, len(users))
	for _, u := range users {
		out = append(out, models.UserWithUnread{User: u, UnreadCount: counts[u.ID]})
	}
	return out, nil
}

// Conversation marks everything other sent me as seen, then returns the
// whole exchange oldest first.
func (s *MessageService) Conversation(ctx context.Context, me, other uuid.UUID) ([]models.Message, error) {
	if _, err := s.messages.MarkSeen(ctx, other, me); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", me.String()).Msg("Failed to mark messages seen")
		return nil, fmt.Errorf("mark seen: %w", err)
	}
	list, err := s.messages.Conversation(ctx, me, other)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", me.String()).Msg("Failed to load conversation")
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return list, nil
}

// Send persists a text message and hands it to the receiver's open
// connections. Delivery is best effort and never fails the send.
func (s *MessageService) Send(ctx context.Context, sender, receiver uuid.UUID, in SendInput) (*models.Message, error) {
	if in.Image != "" {
		return nil, ErrImageUnsupported
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, inputError("Message text is required")
	}
	if _, err := s.users.FindByID(ctx, receiver); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("lookup receiver: %w", err)
	}

	msg := &models.Message{SenderID: sender, ReceiverID: receiver, Text: text}
	if err := s.messages.Create(ctx, msg); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", sender.String()).Msg("Failed to create message")
		return nil, fmt.Errorf("create message: %w", err)
	}
	s.hub.DeliverToUser(receiver.String(), msg)
	return msg, nil
}
