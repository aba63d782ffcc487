// AngelaMos | 2026
// entity.go

package directory

import (
	"time"
)

type Category struct {
	ID        string    `db:"id"`
	Slug      string    `db:"slug"`
	Name      string    `db:"name"`
	Emoji     string    `db:"emoji"`
	CreatedAt time.Time `db:"created_at"`
}

type Business struct {
	ID           string    `db:"id"`
	OwnerUserID  *string   `db:"owner_user_id"`
	CategoryID   string    `db:"category_id"`
	CategorySlug string    `db:"category_slug"`
	CategoryName string    `db:"category_name"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	Area         string    `db:"area"`
	ImageURL     string    `db:"image_url"`
	Rating       float64   `db:"rating"`
	OpensAt      int       `db:"opens_at"`
	ClosesAt     int       `db:"closes_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// OpenAt reports whether the business is open at the given local time.
// Hours that wrap midnight (opens 18, closes 2) are handled.
func (b *Business) OpenAt(t time.Time) bool {
	hour := t.Hour()
	if b.OpensAt == b.ClosesAt {
		return false
	}
	if b.OpensAt < b.ClosesAt {
		return hour >= b.OpensAt && hour < b.ClosesAt
	}
	return hour >= b.OpensAt || hour < b.ClosesAt
}
