// AngelaMos | 2026
// repository.go

package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/localmart/internal/core"
)

type Repository interface {
	ListForUser(ctx context.Context, userID string) ([]ConversationListRow, error)
	FindOrCreate(ctx context.Context, customerID, businessID string) (*Conversation, error)
	GetByID(ctx context.Context, id string) (*Conversation, error)
	ListMessages(ctx context.Context, conversationID string, before *time.Time, limit int) ([]Message, error)
	InsertMessage(ctx context.Context, msg *Message) error
	MarkRead(ctx context.Context, conversationID, readerID string) (int64, error)
}

// ConversationListRow is one list entry with the counterpart profile
// and the latest message flattened in, all resolved in a single query.
type ConversationListRow struct {
	Conversation
	OtherUserID          string     `db:"other_user_id"`
	OtherFullName        *string    `db:"other_full_name"`
	OtherAvatarURL       *string    `db:"other_avatar_url"`
	LastMessageID        *string    `db:"last_message_id"`
	LastMessageSenderID  *string    `db:"last_message_sender_id"`
	LastMessageContent   *string    `db:"last_message_content"`
	LastMessageCreatedAt *time.Time `db:"last_message_created_at"`
	LastMessageReadAt    *time.Time `db:"last_message_read_at"`
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
) ([]ConversationListRow, error) {
	query := `
		SELECT c.id, c.customer_id, c.business_id, c.created_at,
		       c.updated_at, c.last_message_at,
		       p.user_id AS other_user_id,
		       p.full_name AS other_full_name,
		       p.avatar_url AS other_avatar_url,
		       m.id AS last_message_id,
		       m.sender_id AS last_message_sender_id,
		       m.content AS last_message_content,
		       m.created_at AS last_message_created_at,
		       m.read_at AS last_message_read_at
		FROM conversations c
		JOIN profiles p ON p.user_id = CASE
			WHEN c.customer_id = $1 THEN c.business_id
			ELSE c.customer_id
		END
		LEFT JOIN LATERAL (
			SELECT id, sender_id, content, created_at, read_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC
			LIMIT 1
		) m ON TRUE
		WHERE c.customer_id = $1 OR c.business_id = $1
		ORDER BY c.last_message_at DESC NULLS LAST, c.created_at DESC`

	var rows []ConversationListRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	return rows, nil
}

// FindOrCreate relies on the pair constraint: the insert is a no-op
// when the row exists, and the follow-up select sees whichever row won.
func (r *repository) FindOrCreate(
	ctx context.Context,
	customerID, businessID string,
) (*Conversation, error) {
	insertQuery := `
		INSERT INTO conversations (customer_id, business_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT conversations_pair_unique DO NOTHING`

	if _, err := r.db.ExecContext(ctx, insertQuery, customerID, businessID); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	selectQuery := `
		SELECT id, customer_id, business_id, created_at, updated_at,
		       last_message_at
		FROM conversations
		WHERE customer_id = $1 AND business_id = $2`

	var conv Conversation
	if err := r.db.GetContext(ctx, &conv, selectQuery, customerID, businessID); err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	return &conv, nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Conversation, error) {
	query := `
		SELECT id, customer_id, business_id, created_at, updated_at,
		       last_message_at
		FROM conversations
		WHERE id = $1`

	var conv Conversation
	err := r.db.GetContext(ctx, &conv, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get conversation: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	return &conv, nil
}

// ListMessages returns the most recent page before the cursor, in
// ascending order so clients append without re-sorting.
func (r *repository) ListMessages(
	ctx context.Context,
	conversationID string,
	before *time.Time,
	limit int,
) ([]Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, content, created_at, read_at
		FROM (
			SELECT id, conversation_id, sender_id, content, created_at, read_at
			FROM messages
			WHERE conversation_id = $1
			  AND ($2::timestamptz IS NULL OR created_at < $2)
			ORDER BY created_at DESC
			LIMIT $3
		) page
		ORDER BY created_at ASC`

	var messages []Message
	if err := r.db.SelectContext(ctx, &messages, query, conversationID, before, limit); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return messages, nil
}

func (r *repository) InsertMessage(ctx context.Context, msg *Message) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		insertQuery := `
			INSERT INTO messages (id, conversation_id, sender_id, content)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at`

		row := tx.QueryRowxContext(ctx, insertQuery,
			msg.ID,
			msg.ConversationID,
			msg.SenderID,
			msg.Content,
		)
		if err := row.Scan(&msg.CreatedAt); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		bumpQuery := `
			UPDATE conversations
			SET last_message_at = $2, updated_at = NOW()
			WHERE id = $1`

		if _, err := tx.ExecContext(ctx, bumpQuery, msg.ConversationID, msg.CreatedAt); err != nil {
			return fmt.Errorf("bump conversation: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// MarkRead stamps the counterpart's unread messages. The IS NULL guard
// keeps read_at monotonic: a second call finds nothing to update.
func (r *repository) MarkRead(
	ctx context.Context,
	conversationID, readerID string,
) (int64, error) {
	query := `
		UPDATE messages
		SET read_at = NOW()
		WHERE conversation_id = $1
		  AND sender_id <> $2
		  AND read_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, conversationID, readerID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}

	return rows, nil
}
