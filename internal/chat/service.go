// AngelaMos | 2026
// service.go

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/localmart/internal/config"
	"github.com/angelamos/localmart/internal/core"
	"github.com/angelamos/localmart/internal/realtime"
)

var (
	ErrEmptyMessage   = errors.New("message content is empty")
	ErrMessageTooLong = errors.New("message content too long")
	ErrSelfChat       = errors.New("cannot start a conversation with yourself")
)

type Service struct {
	repo      Repository
	publisher realtime.Publisher
	logger    *slog.Logger
	cfg       config.ChatConfig
}

func NewService(
	repo Repository,
	publisher realtime.Publisher,
	cfg config.ChatConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
	}
}

func (s *Service) ListConversations(
	ctx context.Context,
	userID string,
) ([]ConversationResponse, error) {
	rows, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]ConversationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toConversationResponse(&rows[i]))
	}

	return out, nil
}

// StartConversation maps the caller onto the pair by the role the
// session is acting as: a customer talks to a business, a business
// answers a customer. Repeat calls land on the same row.
func (s *Service) StartConversation(
	ctx context.Context,
	userID, activeRole, otherUserID string,
) (*Conversation, error) {
	if userID == otherUserID {
		return nil, ErrSelfChat
	}

	customerID, businessID := userID, otherUserID
	if activeRole == "business" {
		customerID, businessID = otherUserID, userID
	}

	conv, err := s.repo.FindOrCreate(ctx, customerID, businessID)
	if err != nil {
		return nil, err
	}

	return conv, nil
}

func (s *Service) GetMessages(
	ctx context.Context,
	userID, conversationID string,
	before *time.Time,
	limit int,
) ([]Message, error) {
	conv, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(userID) {
		return nil, fmt.Errorf("get messages: %w", core.ErrForbidden)
	}

	if limit <= 0 || limit > s.cfg.HistoryPageSize {
		limit = s.cfg.HistoryPageSize
	}

	return s.repo.ListMessages(ctx, conversationID, before, limit)
}

// SendMessage validates content before touching storage: a blank send
// costs nothing. The sender receives their own message over the push
// path like every other subscriber.
func (s *Service) SendMessage(
	ctx context.Context,
	userID, conversationID, content string,
) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if len(content) > s.cfg.MaxMessageBytes {
		return nil, ErrMessageTooLong
	}

	conv, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(userID) {
		return nil, fmt.Errorf("send message: %w", core.ErrForbidden)
	}

	msg := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        content,
	}

	if err := s.repo.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EventMessageCreated,
		realtime.ConversationTopic(conversationID), toMessageResponse(msg))
	s.publish(ctx, realtime.EventConversationUpdated,
		realtime.TopicConversations, map[string]string{
			"conversation_id": conversationID,
		})

	return msg, nil
}

func (s *Service) MarkRead(
	ctx context.Context,
	userID, conversationID string,
) (int64, error) {
	conv, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return 0, err
	}

	if !conv.HasParticipant(userID) {
		return 0, fmt.Errorf("mark read: %w", core.ErrForbidden)
	}

	updated, err := s.repo.MarkRead(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}

	if updated > 0 {
		s.publish(ctx, realtime.EventMessagesRead,
			realtime.ConversationTopic(conversationID), map[string]any{
				"conversation_id": conversationID,
				"reader_id":       userID,
			})
	}

	return updated, nil
}

// CanSubscribe answers the realtime gateway's participant check for
// conversation topics.
func (s *Service) CanSubscribe(
	ctx context.Context,
	userID, topic string,
) bool {
	conversationID, ok := strings.CutPrefix(topic, "conversation:")
	if !ok || conversationID == "" {
		return false
	}

	conv, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return false
	}

	return conv.HasParticipant(userID)
}

// publish is best-effort. The write already committed; a realtime miss
// costs subscribers a refetch, not data.
func (s *Service) publish(
	ctx context.Context,
	eventType, topic string,
	payload any,
) {
	event, err := realtime.NewEvent(eventType, topic, payload)
	if err != nil {
		s.logger.Warn("build realtime event", "type", eventType, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish realtime event",
			"type", eventType,
			"topic", topic,
			"error", err,
		)
	}
}

func toConversationResponse(row *ConversationListRow) ConversationResponse {
	resp := ConversationResponse{
		ID:            row.ID,
		CustomerID:    row.CustomerID,
		BusinessID:    row.BusinessID,
		CreatedAt:     row.CreatedAt,
		LastMessageAt: row.LastMessageAt,
		OtherUser: OtherUser{
			ID:        row.OtherUserID,
			FullName:  row.OtherFullName,
			AvatarURL: row.OtherAvatarURL,
		},
	}

	if row.LastMessageID != nil {
		resp.LastMessage = &MessageResponse{
			ID:             *row.LastMessageID,
			ConversationID: row.ID,
			SenderID:       *row.LastMessageSenderID,
			Content:        *row.LastMessageContent,
			CreatedAt:      *row.LastMessageCreatedAt,
			ReadAt:         row.LastMessageReadAt,
		}
	}

	return resp
}
