// AngelaMos | 2026
// repository.go

package feed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/localmart/internal/core"
)

type Repository interface {
	ListPosts(ctx context.Context, kind string) ([]Post, error)
	GetPost(ctx context.Context, id string) (*Post, error)
	CreatePost(ctx context.Context, post *Post) error
	ListComments(ctx context.Context, postID string) ([]Comment, error)
	InsertComment(ctx context.Context, comment *Comment) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const postColumns = `
	p.id, p.business_id, p.author_id, p.kind, p.caption, p.media_url,
	p.created_at,
	b.name AS business_name, b.area AS business_area`

func (r *repository) ListPosts(
	ctx context.Context,
	kind string,
) ([]Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN businesses b ON b.id = p.business_id
		WHERE ($1 = '' OR p.kind = $1)
		ORDER BY p.created_at DESC`, postColumns)

	var posts []Post
	if err := r.db.SelectContext(ctx, &posts, query, kind); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return posts, nil
}

func (r *repository) GetPost(ctx context.Context, id string) (*Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN businesses b ON b.id = p.business_id
		WHERE p.id = $1`, postColumns)

	var post Post
	err := r.db.GetContext(ctx, &post, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get post: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &post, nil
}

func (r *repository) CreatePost(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (id, business_id, author_id, kind, caption, media_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	row := r.db.QueryRowxContext(ctx, query,
		post.ID,
		post.BusinessID,
		post.AuthorID,
		post.Kind,
		post.Caption,
		post.MediaURL,
	)
	if err := row.Scan(&post.CreatedAt); err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	return nil
}

func (r *repository) ListComments(
	ctx context.Context,
	postID string,
) ([]Comment, error) {
	query := `
		SELECT id, post_id, user_id, user_name, user_avatar, content,
		       created_at
		FROM post_comments
		WHERE post_id = $1
		ORDER BY created_at DESC`

	var comments []Comment
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return comments, nil
}

func (r *repository) InsertComment(
	ctx context.Context,
	comment *Comment,
) error {
	query := `
		INSERT INTO post_comments (id, post_id, user_id, user_name,
		                           user_avatar, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	row := r.db.QueryRowxContext(ctx, query,
		comment.ID,
		comment.PostID,
		comment.UserID,
		comment.UserName,
		comment.UserAvatar,
		comment.Content,
	)
	if err := row.Scan(&comment.CreatedAt); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}
