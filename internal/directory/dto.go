// AngelaMos | 2026
// dto.go

package directory

import (
	"time"
)

type CategoryResponse struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

type BusinessResponse struct {
	ID           string    `json:"id"`
	OwnerUserID  *string   `json:"owner_user_id,omitempty"`
	CategoryID   string    `json:"category_id"`
	CategorySlug string    `json:"category_slug"`
	CategoryName string    `json:"category_name"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Area         string    `json:"area"`
	ImageURL     string    `json:"image_url"`
	Rating       float64   `json:"rating"`
	OpensAt      int       `json:"opens_at"`
	ClosesAt     int       `json:"closes_at"`
	OpenNow      bool      `json:"open_now"`
	CreatedAt    time.Time `json:"created_at"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

type BusinessesResponse struct {
	Businesses []BusinessResponse `json:"businesses"`
}

type EnquiryRequest struct {
	Kind string `json:"kind" validate:"required,oneof=price stock delivery delivery_time order"`
}

type EnquiryResponse struct {
	BusinessID     string  `json:"business_id"`
	ConversationID *string `json:"conversation_id,omitempty"`
	Message        string  `json:"message"`
}
