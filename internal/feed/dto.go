// AngelaMos | 2026
// dto.go

package feed

import (
	"time"
)

type CreatePostRequest struct {
	BusinessID string `json:"business_id" validate:"required,uuid"`
	Kind       string `json:"kind"        validate:"required,oneof=photo reel"`
	Caption    string `json:"caption"     validate:"max=2000"`
	MediaURL   string `json:"media_url"   validate:"required,url,max=500"`
}

type AddCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

type PostResponse struct {
	ID           string    `json:"id"`
	BusinessID   string    `json:"business_id"`
	BusinessName string    `json:"business_name"`
	BusinessArea string    `json:"business_area"`
	Kind         string    `json:"kind"`
	Caption      string    `json:"caption"`
	MediaURL     string    `json:"media_url"`
	CreatedAt    time.Time `json:"created_at"`
	LikeCount    int64     `json:"like_count"`
	Liked        bool      `json:"liked"`
	Saved        bool      `json:"saved"`
}

type PostsResponse struct {
	Posts []PostResponse `json:"posts"`
}

type CommentResponse struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	UserID     *string   `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserAvatar *string   `json:"user_avatar"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type CommentsResponse struct {
	Comments []CommentResponse `json:"comments"`
}

type LikeResponse struct {
	PostID    string `json:"post_id"`
	Liked     bool   `json:"liked"`
	LikeCount int64  `json:"like_count"`
}

type SaveResponse struct {
	PostID string `json:"post_id"`
	Saved  bool   `json:"saved"`
}

func toCommentResponse(c *Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		PostID:     c.PostID,
		UserID:     c.UserID,
		UserName:   c.UserName,
		UserAvatar: c.UserAvatar,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
	}
}
