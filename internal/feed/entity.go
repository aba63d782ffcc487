// AngelaMos | 2026
// entity.go

package feed

import (
	"time"
)

const (
	KindPhoto = "photo"
	KindReel  = "reel"
)

type Post struct {
	ID           string    `db:"id"`
	BusinessID   string    `db:"business_id"`
	AuthorID     *string   `db:"author_id"`
	Kind         string    `db:"kind"`
	Caption      string    `db:"caption"`
	MediaURL     string    `db:"media_url"`
	CreatedAt    time.Time `db:"created_at"`
	BusinessName string    `db:"business_name"`
	BusinessArea string    `db:"business_area"`
}

// Comment carries the author's display fields denormalized at write
// time; a later profile rename does not rewrite history.
type Comment struct {
	ID         string    `db:"id"`
	PostID     string    `db:"post_id"`
	UserID     *string   `db:"user_id"`
	UserName   string    `db:"user_name"`
	UserAvatar *string   `db:"user_avatar"`
	Content    string    `db:"content"`
	CreatedAt  time.Time `db:"created_at"`
}
