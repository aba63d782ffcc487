// AngelaMos | 2026
// repository.go

package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/localmart/internal/core"
)

type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListBusinesses(ctx context.Context, categorySlug, search string) ([]Business, error)
	GetBusiness(ctx context.Context, id string) (*Business, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const businessColumns = `
	b.id, b.owner_user_id, b.category_id, b.name, b.description, b.area,
	b.image_url, b.rating, b.opens_at, b.closes_at, b.created_at, b.updated_at,
	c.slug AS category_slug, c.name AS category_name`

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	query := `
		SELECT id, slug, name, emoji, created_at
		FROM categories
		ORDER BY name`

	var categories []Category
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (r *repository) ListBusinesses(
	ctx context.Context,
	categorySlug, search string,
) ([]Business, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if categorySlug != "" {
		conditions = append(conditions, fmt.Sprintf("c.slug = $%d", argIdx))
		args = append(args, categorySlug)
		argIdx++
	}

	if search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(b.name ILIKE $%d OR b.area ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(search)+"%")
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM businesses b
		JOIN categories c ON c.id = b.category_id`, businessColumns)

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY b.rating DESC, b.name"

	var businesses []Business
	if err := r.db.SelectContext(ctx, &businesses, query, args...); err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}

	return businesses, nil
}

func (r *repository) GetBusiness(
	ctx context.Context,
	id string,
) (*Business, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM businesses b
		JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1`, businessColumns)

	var business Business
	err := r.db.GetContext(ctx, &business, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get business: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}

	return &business, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
