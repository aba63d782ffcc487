// AngelaMos | 2026
// repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/angelamos/localmart/internal/core"
)

type Repository interface {
	CreateAccount(ctx context.Context, account *Account, asBusiness bool) error
	GetAccountByID(ctx context.Context, id string) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, fullName, avatarURL *string) (*Profile, error)
	SetActiveRole(ctx context.Context, userID, role string) error
	GetRoles(ctx context.Context, userID string) ([]string, error)
	GrantRole(ctx context.Context, userID, role string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// accountQuery resolves missing profile rows to the customer default so
// callers never see an empty active role.
const accountQuery = `
	SELECT u.id, u.email, u.password_hash, u.token_version,
	       u.created_at, u.updated_at, u.deleted_at,
	       p.full_name, p.avatar_url,
	       COALESCE(p.active_role, 'customer') AS active_role
	FROM users u
	LEFT JOIN profiles p ON p.user_id = u.id`

func (r *repository) CreateAccount(
	ctx context.Context,
	account *Account,
	asBusiness bool,
) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		userQuery := `
			INSERT INTO users (id, email, password_hash)
			VALUES ($1, $2, $3)
			RETURNING created_at, updated_at, token_version`

		row := tx.QueryRowxContext(ctx, userQuery,
			account.ID,
			account.Email,
			account.PasswordHash,
		)
		if err := row.Scan(
			&account.CreatedAt,
			&account.UpdatedAt,
			&account.TokenVersion,
		); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		profileQuery := `
			INSERT INTO profiles (id, user_id, email, full_name)
			VALUES ($1, $2, $3, $4)`

		if _, err := tx.ExecContext(ctx, profileQuery,
			uuid.New().String(),
			account.ID,
			account.Email,
			account.FullName,
		); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}

		roles := []string{RoleCustomer}
		if asBusiness {
			roles = append(roles, RoleBusiness)
		}

		roleQuery := `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`
		for _, role := range roles {
			if _, err := tx.ExecContext(ctx, roleQuery, account.ID, role); err != nil {
				return fmt.Errorf("insert role grant: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create account: %w", err)
	}

	account.ActiveRole = RoleCustomer

	return nil
}

func (r *repository) GetAccountByID(
	ctx context.Context,
	id string,
) (*Account, error) {
	query := accountQuery + ` WHERE u.id = $1 AND u.deleted_at IS NULL`

	var account Account
	err := r.db.GetContext(ctx, &account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &account, nil
}

func (r *repository) GetAccountByEmail(
	ctx context.Context,
	email string,
) (*Account, error) {
	query := accountQuery + ` WHERE u.email = $1 AND u.deleted_at IS NULL`

	var account Account
	err := r.db.GetContext(ctx, &account, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}

	return &account, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) IncrementTokenVersion(
	ctx context.Context,
	id string,
) error {
	query := `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) GetProfile(
	ctx context.Context,
	userID string,
) (*Profile, error) {
	query := `
		SELECT id, user_id, email, full_name, avatar_url, active_role,
		       created_at, updated_at
		FROM profiles
		WHERE user_id = $1`

	var p Profile
	err := r.db.GetContext(ctx, &p, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &p, nil
}

func (r *repository) UpdateProfile(
	ctx context.Context,
	userID string,
	fullName, avatarURL *string,
) (*Profile, error) {
	query := `
		UPDATE profiles
		SET full_name = COALESCE($2, full_name),
		    avatar_url = COALESCE($3, avatar_url),
		    updated_at = NOW()
		WHERE user_id = $1
		RETURNING id, user_id, email, full_name, avatar_url, active_role,
		          created_at, updated_at`

	var p Profile
	err := r.db.GetContext(ctx, &p, query, userID, fullName, avatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return &p, nil
}

func (r *repository) SetActiveRole(
	ctx context.Context,
	userID, role string,
) error {
	query := `
		UPDATE profiles
		SET active_role = $2, updated_at = NOW()
		WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("set active role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set active role: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set active role: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) GetRoles(
	ctx context.Context,
	userID string,
) ([]string, error) {
	query := `
		SELECT role
		FROM user_roles
		WHERE user_id = $1
		ORDER BY role`

	var roles []string
	if err := r.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, fmt.Errorf("get roles: %w", err)
	}

	return roles, nil
}

func (r *repository) GrantRole(
	ctx context.Context,
	userID, role string,
) error {
	query := `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("grant role: %w", core.ErrDuplicateKey)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
