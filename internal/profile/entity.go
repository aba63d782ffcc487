// AngelaMos | 2026
// entity.go

package profile

import (
	"time"
)

const (
	RoleCustomer = "customer"
	RoleBusiness = "business"
)

func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleBusiness
}

// Account joins the users row with its profile row. Auth reads it
// through the IdentityProvider projection; everything else goes through
// Profile.
type Account struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	FullName     *string    `db:"full_name"`
	AvatarURL    *string    `db:"avatar_url"`
	ActiveRole   string     `db:"active_role"`
	TokenVersion int        `db:"token_version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

type Profile struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Email      string    `db:"email"`
	FullName   *string   `db:"full_name"`
	AvatarURL  *string   `db:"avatar_url"`
	ActiveRole string    `db:"active_role"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
