// AngelaMos | 2026
// service_test.go

package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/localmart/internal/config"
	"github.com/angelamos/localmart/internal/core"
	"github.com/angelamos/localmart/internal/realtime"
	"github.com/angelamos/localmart/internal/testutil"
)

type fakeChatRepository struct {
	conversations map[string]*Conversation
	messages      []Message
	markReadCount int64

	findOrCreateCalls int
	getByIDCalls      int
	insertCalls       int
}

func newFakeChatRepository() *fakeChatRepository {
	return &fakeChatRepository{conversations: make(map[string]*Conversation)}
}

func (f *fakeChatRepository) ListForUser(_ context.Context, _ string) ([]ConversationListRow, error) {
	return nil, nil
}

func (f *fakeChatRepository) FindOrCreate(_ context.Context, customerID, businessID string) (*Conversation, error) {
	f.findOrCreateCalls++
	for _, conv := range f.conversations {
		if conv.CustomerID == customerID && conv.BusinessID == businessID {
			return conv, nil
		}
	}

	conv := &Conversation{
		ID:         "conv-" + customerID + "-" + businessID,
		CustomerID: customerID,
		BusinessID: businessID,
		CreatedAt:  time.Now(),
	}
	f.conversations[conv.ID] = conv
	return conv, nil
}

func (f *fakeChatRepository) GetByID(_ context.Context, id string) (*Conversation, error) {
	f.getByIDCalls++
	conv, ok := f.conversations[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return conv, nil
}

func (f *fakeChatRepository) ListMessages(_ context.Context, _ string, _ *time.Time, limit int) ([]Message, error) {
	if limit < len(f.messages) {
		return f.messages[:limit], nil
	}
	return f.messages, nil
}

func (f *fakeChatRepository) InsertMessage(_ context.Context, msg *Message) error {
	f.insertCalls++
	msg.CreatedAt = time.Now()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeChatRepository) MarkRead(_ context.Context, _, _ string) (int64, error) {
	return f.markReadCount, nil
}

type recordingPublisher struct {
	events []realtime.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, event realtime.Event) error {
	r.events = append(r.events, event)
	return r.err
}

func newChatService(repo Repository, publisher realtime.Publisher) *Service {
	cfg := config.ChatConfig{
		HistoryPageSize: 50,
		MaxMessageBytes: 2000,
	}
	return NewService(repo, publisher, cfg, testutil.Logger())
}

func seedConversation(repo *fakeChatRepository) *Conversation {
	conv := &Conversation{
		ID:         "conv-1",
		CustomerID: "customer-1",
		BusinessID: "business-1",
		CreatedAt:  time.Now(),
	}
	repo.conversations[conv.ID] = conv
	return conv
}

func TestService_StartConversation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		activeRole     string
		wantCustomerID string
		wantBusinessID string
	}{
		{
			name:           "customer starting",
			activeRole:     "customer",
			wantCustomerID: "caller",
			wantBusinessID: "other",
		},
		{
			name:           "business answering",
			activeRole:     "business",
			wantCustomerID: "other",
			wantBusinessID: "caller",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeChatRepository()
			svc := newChatService(repo, &recordingPublisher{})

			conv, err := svc.StartConversation(context.Background(), "caller", tt.activeRole, "other")
			require.NoError(t, err)

			assert.Equal(t, tt.wantCustomerID, conv.CustomerID)
			assert.Equal(t, tt.wantBusinessID, conv.BusinessID)
		})
	}
}

func TestService_StartConversation_Self(t *testing.T) {
	t.Parallel()

	repo := newFakeChatRepository()
	svc := newChatService(repo, &recordingPublisher{})

	_, err := svc.StartConversation(context.Background(), "caller", "customer", "caller")
	assert.ErrorIs(t, err, ErrSelfChat)
	assert.Zero(t, repo.findOrCreateCalls)
}

func TestService_SendMessage(t *testing.T) {
	t.Parallel()

	repo := newFakeChatRepository()
	conv := seedConversation(repo)
	publisher := &recordingPublisher{}
	svc := newChatService(repo, publisher)

	msg, err := svc.SendMessage(context.Background(), "customer-1", conv.ID, "  hello there  ")
	require.NoError(t, err)

	assert.Equal(t, "hello there", msg.Content)
	assert.Equal(t, "customer-1", msg.SenderID)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, realtime.EventMessageCreated, publisher.events[0].Type)
	assert.Equal(t, realtime.ConversationTopic(conv.ID), publisher.events[0].Topic)
	assert.Equal(t, realtime.EventConversationUpdated, publisher.events[1].Type)
	assert.Equal(t, realtime.TopicConversations, publisher.events[1].Topic)
}

func TestService_SendMessage_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "empty", content: "", wantErr: ErrEmptyMessage},
		{name: "whitespace only", content: "   \n\t ", wantErr: ErrEmptyMessage},
		{name: "too long", content: string(make([]byte, 2001)), wantErr: ErrMessageTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeChatRepository()
			conv := seedConversation(repo)
			svc := newChatService(repo, &recordingPublisher{})

			_, err := svc.SendMessage(context.Background(), "customer-1", conv.ID, tt.content)
			assert.ErrorIs(t, err, tt.wantErr)

			// Validation rejects before any storage access.
			assert.Zero(t, repo.getByIDCalls)
			assert.Zero(t, repo.insertCalls)
		})
	}
}

func TestService_SendMessage_NotParticipant(t *testing.T) {
	t.Parallel()

	repo := newFakeChatRepository()
	conv := seedConversation(repo)
	publisher := &recordingPublisher{}
	svc := newChatService(repo, publisher)

	_, err := svc.SendMessage(context.Background(), "stranger", conv.ID, "hi")
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Zero(t, repo.insertCalls)
	assert.Empty(t, publisher.events)
}

func TestService_SendMessage_PublishFailureTolerated(t *testing.T) {
	t.Parallel()

	repo := newFakeChatRepository()
	conv := seedConversation(repo)
	publisher := &recordingPublisher{err: assert.AnError}
	svc := newChatService(repo, publisher)

	msg, err := svc.SendMessage(context.Background(), "business-1", conv.ID, "written anyway")
	require.NoError(t, err)
	assert.Equal(t, "written anyway", msg.Content)
	assert.Equal(t, 1, repo.insertCalls)
}

func TestService_GetMessages(t *testing.T) {
	t.Parallel()

	repo := newFakeChatRepository()
	conv := seedConversation(repo)
	for i := 0; i < 60; i++ {
		repo.messages = append(repo.messages, Message{ID: "m", ConversationID: conv.ID})
	}
	svc := newChatService(repo, &recordingPublisher{})

	msgs, err := svc.GetMessages(context.Background(), "customer-1", conv.ID, nil, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 50, "zero limit falls back to the page size")

	msgs, err = svc.GetMessages(context.Background(), "customer-1", conv.ID, nil, 500)
	require.NoError(t, err)
	assert.Len(t, msgs, 50, "oversized limit is clamped")

	msgs, err = svc.GetMessages(context.Background(), "customer-1", conv.ID, nil, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 10)

	_, err = svc.GetMessages(context.Background(), "stranger", conv.ID, nil, 10)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestService_MarkRead(t *testing.T) {
	t.Parallel()

	t.Run("publishes when rows changed", func(t *testing.T) {
		t.Parallel()

		repo := newFakeChatRepository()
		conv := seedConversation(repo)
		repo.markReadCount = 3
		publisher := &recordingPublisher{}
		svc := newChatService(repo, publisher)

		updated, err := svc.MarkRead(context.Background(), "business-1", conv.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), updated)

		require.Len(t, publisher.events, 1)
		assert.Equal(t, realtime.EventMessagesRead, publisher.events[0].Type)
	})

	t.Run("silent when nothing changed", func(t *testing.T) {
		t.Parallel()

		repo := newFakeChatRepository()
		conv := seedConversation(repo)
		publisher := &recordingPublisher{}
		svc := newChatService(repo, publisher)

		updated, err := svc.MarkRead(context.Background(), "business-1", conv.ID)
		require.NoError(t, err)
		assert.Zero(t, updated)
		assert.Empty(t, publisher.events)
	})
}

func TestService_CanSubscribe(t *testing.T) {
	t.Parallel()

	repo := newFakeChatRepository()
	conv := seedConversation(repo)
	svc := newChatService(repo, &recordingPublisher{})

	tests := []struct {
		name   string
		userID string
		topic  string
		want   bool
	}{
		{name: "customer on own conversation", userID: "customer-1", topic: "conversation:" + conv.ID, want: true},
		{name: "business on own conversation", userID: "business-1", topic: "conversation:" + conv.ID, want: true},
		{name: "stranger", userID: "stranger", topic: "conversation:" + conv.ID, want: false},
		{name: "unknown conversation", userID: "customer-1", topic: "conversation:missing", want: false},
		{name: "bare prefix", userID: "customer-1", topic: "conversation:", want: false},
		{name: "not a conversation topic", userID: "customer-1", topic: "user:customer-1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, svc.CanSubscribe(context.Background(), tt.userID, tt.topic))
		})
	}
}
