package sqldb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

const conversationColumns = `id, hotel_id, staff_id, title, created_at, updated_at`

type messageRow struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	Seq            int       `db:"seq"`
	Role           string    `db:"role"`
	Content        string    `db:"content"`
	ToolCalls      string    `db:"tool_calls"`
	ToolCallID     string    `db:"tool_call_id"`
	Name           string    `db:"name"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r messageRow) message() (domain.ChatMessage, error) {
	msg := domain.ChatMessage{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		Role:           r.Role,
		Content:        r.Content,
		ToolCallID:     r.ToolCallID,
		Name:           r.Name,
		CreatedAt:      r.CreatedAt,
	}
	if r.ToolCalls != "" {
		if err := json.Unmarshal([]byte(r.ToolCalls), &msg.ToolCalls); err != nil {
			return msg, fmt.Errorf("failed to unmarshal tool calls: %w", err)
		}
	}
	return msg, nil
}

func (s *Store) CreateConversation(ctx context.Context, c *domain.Conversation) error {
	stamp(&c.CreatedAt, &c.UpdatedAt)
	_, err := s.exec(ctx, s.db, `INSERT INTO conversations (`+conversationColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.HotelID, c.StaffID, c.Title, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (s *Store) GetConversation(ctx context.Context, hotelID, id string) (*domain.Conversation, error) {
	var c domain.Conversation
	if err := s.get(ctx, s.db, &c, `SELECT `+conversationColumns+` FROM conversations WHERE hotel_id = ? AND id = ?`, hotelID, id); err != nil {
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}

	var rows []messageRow
	if err := s.list(ctx, s.db, &rows, `SELECT id, conversation_id, seq, role, content, tool_calls, tool_call_id,
			name, created_at
		FROM chat_messages WHERE conversation_id = ? ORDER BY seq`, id); err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	c.Messages = make([]domain.ChatMessage, 0, len(rows))
	for _, r := range rows {
		msg, err := r.message()
		if err != nil {
			return nil, err
		}
		c.Messages = append(c.Messages, msg)
	}
	return &c, nil
}

func (s *Store) ListConversations(ctx context.Context, hotelID, staffID string, limit int) ([]domain.Conversation, error) {
	if limit <= 0 {
		limit = 100 // default limit
	}
	var out []domain.Conversation
	err := s.list(ctx, s.db, &out, `SELECT `+conversationColumns+` FROM conversations
		WHERE hotel_id = ? AND staff_id = ? ORDER BY updated_at DESC LIMIT ?`, hotelID, staffID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return out, nil
}

// AppendMessages adds messages after the conversation's last one and bumps its updated_at.
func (s *Store) AppendMessages(ctx context.Context, hotelID, conversationID string, msgs ...domain.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var seq int
		if err := s.get(ctx, tx, &seq, `SELECT COALESCE(MAX(seq), 0) FROM chat_messages WHERE conversation_id = ?`,
			conversationID); err != nil {
			return err
		}

		for _, msg := range msgs {
			seq++
			var toolCalls string
			if len(msg.ToolCalls) > 0 {
				b, err := json.Marshal(msg.ToolCalls)
				if err != nil {
					return fmt.Errorf("failed to marshal tool calls: %w", err)
				}
				toolCalls = string(b)
			}
			created := msg.CreatedAt
			if created.IsZero() {
				created = now()
			}
			if _, err := s.exec(ctx, tx, `INSERT INTO chat_messages (id, conversation_id, hotel_id, seq, role,
					content, tool_calls, tool_call_id, name, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				msg.ID, conversationID, hotelID, seq, msg.Role, msg.Content, toolCalls, msg.ToolCallID,
				msg.Name, created); err != nil {
				return fmt.Errorf("failed to insert message: %w", err)
			}
		}

		return s.execOne(ctx, tx, `UPDATE conversations SET updated_at = ? WHERE hotel_id = ? AND id = ?`,
			now(), hotelID, conversationID)
	})
	if err != nil {
		return fmt.Errorf("failed to append messages to %s: %w", conversationID, err)
	}
	return nil
}

func (s *Store) DeleteConversation(ctx context.Context, hotelID, id string) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.exec(ctx, tx, `DELETE FROM chat_messages WHERE hotel_id = ? AND conversation_id = ?`, hotelID, id); err != nil {
			return err
		}
		return s.execOne(ctx, tx, `DELETE FROM conversations WHERE hotel_id = ? AND id = ?`, hotelID, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}
	return nil
}
