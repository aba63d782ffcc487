// AngelaMos | 2026
// entity.go

package chat

import (
	"time"
)

// Conversation is a customer/business pair. The unique constraint on
// (customer_id, business_id) makes first contact race-safe: concurrent
// starts collapse onto one row.
type Conversation struct {
	ID            string     `db:"id"`
	CustomerID    string     `db:"customer_id"`
	BusinessID    string     `db:"business_id"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	LastMessageAt *time.Time `db:"last_message_at"`
}

func (c *Conversation) HasParticipant(userID string) bool {
	return c.CustomerID == userID || c.BusinessID == userID
}

func (c *Conversation) OtherParticipant(userID string) string {
	if c.CustomerID == userID {
		return c.BusinessID
	}
	return c.CustomerID
}

type Message struct {
	ID             string     `db:"id"`
	ConversationID string     `db:"conversation_id"`
	SenderID       string     `db:"sender_id"`
	Content        string     `db:"content"`
	CreatedAt      time.Time  `db:"created_at"`
	ReadAt         *time.Time `db:"read_at"`
}
