// AngelaMos | 2026
// dto.go

package profile

import (
	"time"
)

type ProfileResponse struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	FullName   *string   `json:"full_name"`
	AvatarURL  *string   `json:"avatar_url"`
	ActiveRole string    `json:"active_role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SessionResponse mirrors what a client needs to boot: the profile, the
// full grant set and the role the session is currently acting as.
type SessionResponse struct {
	Profile    ProfileResponse `json:"profile"`
	Roles      []string        `json:"roles"`
	ActiveRole string          `json:"active_role"`
}

type SwitchRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=customer business"`
}

type SwitchRoleResponse struct {
	Session     SessionResponse `json:"session"`
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

type UpdateProfileRequest struct {
	FullName  *string `json:"full_name"  validate:"omitempty,min=1,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}
