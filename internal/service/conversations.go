package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

const maxTitleLength = 80

// StartConversation opens a chat thread for the caller, titled after the first message.
func (s *Service) StartConversation(ctx context.Context, sc tenant.Scope, firstMessage string) (*domain.Conversation, error) {
	if err := authorize(sc, domain.PermAgentUse); err != nil {
		return nil, err
	}
	title := strings.Join(strings.Fields(firstMessage), " ")
	if r := []rune(title); len(r) > maxTitleLength {
		title = string(r[:maxTitleLength-1]) + "…"
	}
	if title == "" {
		title = "New conversation"
	}
	c := &domain.Conversation{
		ID:      uuid.NewString(),
		HotelID: sc.HotelID,
		StaffID: sc.StaffID,
		Title:   title,
	}
	if err := s.store.CreateConversation(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetConversation loads one of the caller's conversations with its messages.
func (s *Service) GetConversation(ctx context.Context, sc tenant.Scope, id string) (*domain.Conversation, error) {
	if err := authorize(sc, domain.PermAgentUse); err != nil {
		return nil, err
	}
	c, err := s.store.GetConversation(ctx, sc.HotelID, id)
	if err != nil {
		return nil, storeErr(err, "conversation")
	}
	if c.StaffID != sc.StaffID {
		return nil, domain.ErrNotFound("conversation not found")
	}
	return c, nil
}

func (s *Service) ListConversations(ctx context.Context, sc tenant.Scope, limit int) ([]domain.Conversation, error) {
	if err := authorize(sc, domain.PermAgentUse); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxSearchLimit {
		limit = DefaultSearchLimit
	}
	return s.store.ListConversations(ctx, sc.HotelID, sc.StaffID, limit)
}

// AppendMessages persists messages to one of the caller's conversations.
func (s *Service) AppendMessages(ctx context.Context, sc tenant.Scope, conversationID string, msgs ...domain.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	for i := range msgs {
		if msgs[i].ID == "" {
			msgs[i].ID = uuid.NewString()
		}
		msgs[i].ConversationID = conversationID
		if msgs[i].CreatedAt.IsZero() {
			msgs[i].CreatedAt = s.now().UTC()
		}
	}
	return storeErr(s.store.AppendMessages(ctx, sc.HotelID, conversationID, msgs...), "conversation")
}

func (s *Service) DeleteConversation(ctx context.Context, sc tenant.Scope, id string) error {
	if _, err := s.GetConversation(ctx, sc, id); err != nil {
		return err
	}
	return storeErr(s.store.DeleteConversation(ctx, sc.HotelID, id), "conversation")
}
