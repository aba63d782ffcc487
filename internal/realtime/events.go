// AngelaMos | 2026
// events.go

package realtime

import (
	"context"
	"encoding/json"
)

const (
	EventMessageCreated      = "message.created"
	EventMessagesRead        = "messages.read"
	EventConversationUpdated = "conversation.updated"
	EventCommentCreated      = "comment.created"
	EventNotification        = "notification"
)

const (
	// TopicConversations is the coarse list topic: any conversation
	// change pings it and subscribed clients refetch their list.
	TopicConversations = "conversations"

	channelPrefix  = "rt:"
	channelPattern = "rt:*"
)

func ConversationTopic(conversationID string) string {
	return "conversation:" + conversationID
}

func PostTopic(postID string) string {
	return "post:" + postID
}

func UserTopic(userID string) string {
	return "user:" + userID
}

// Event is the envelope pushed to websocket subscribers and carried
// across instances over redis pub/sub.
type Event struct {
	Type    string          `json:"type"`
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewEvent(eventType, topic string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Topic: topic, Payload: raw}, nil
}

// Publisher is what domain services see: fire an event at a topic.
// Delivery is best-effort; publish failures must not fail the write
// that triggered them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
