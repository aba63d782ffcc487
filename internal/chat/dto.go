// AngelaMos | 2026
// dto.go

package chat

import (
	"time"
)

type StartConversationRequest struct {
	OtherUserID string `json:"other_user_id" validate:"required,uuid"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type OtherUser struct {
	ID        string  `json:"id"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

type MessageResponse struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	ReadAt         *time.Time `json:"read_at"`
}

type ConversationResponse struct {
	ID            string           `json:"id"`
	CustomerID    string           `json:"customer_id"`
	BusinessID    string           `json:"business_id"`
	CreatedAt     time.Time        `json:"created_at"`
	LastMessageAt *time.Time       `json:"last_message_at"`
	OtherUser     OtherUser        `json:"other_user"`
	LastMessage   *MessageResponse `json:"last_message"`
}

type ConversationsResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
}

type MessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}

type ReadResponse struct {
	Updated int64 `json:"updated"`
}

func toMessageResponse(m *Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
		ReadAt:         m.ReadAt,
	}
}
