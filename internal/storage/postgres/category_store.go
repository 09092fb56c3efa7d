package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/linkboard/linkboard/internal/directory"
)

// CategoryStore implements directory.CategoryStore on Postgres.
type CategoryStore struct {
	pool Pool
}

// NewCategoryStore constructs a CategoryStore over an existing pool.
func NewCategoryStore(pool Pool) *CategoryStore {
	return &CategoryStore{pool: pool}
}

// Insert stores a new category row.
func (s *CategoryStore) Insert(ctx context.Context, category directory.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, description, icon, color, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := s.pool.Exec(ctx, query,
		category.ID,
		category.Name,
		category.Slug,
		category.Description,
		category.Icon,
		category.Color,
		category.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// Get fetches a category by ID.
func (s *CategoryStore) Get(ctx context.Context, id string) (directory.Category, error) {
	query := `
		SELECT id, name, slug, description, icon, color, created_at
		FROM categories
		WHERE id = $1
	`
	var category directory.Category
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.Description,
		&category.Icon,
		&category.Color,
		&category.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.Category{}, directory.ErrNotFound
		}
		return directory.Category{}, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// Update replaces the non-empty display fields and returns the result.
func (s *CategoryStore) Update(ctx context.Context, category directory.Category) (directory.Category, error) {
	query := `
		UPDATE categories SET
			name = CASE WHEN $2 = '' THEN name ELSE $2 END,
			slug = CASE WHEN $3 = '' THEN slug ELSE $3 END,
			description = CASE WHEN $4 = '' THEN description ELSE $4 END,
			icon = CASE WHEN $5 = '' THEN icon ELSE $5 END,
			color = CASE WHEN $6 = '' THEN color ELSE $6 END
		WHERE id = $1
		RETURNING id, name, slug, description, icon, color, created_at
	`
	var updated directory.Category
	err := s.pool.QueryRow(ctx, query,
		category.ID,
		category.Name,
		category.Slug,
		category.Description,
		category.Icon,
		category.Color,
	).Scan(
		&updated.ID,
		&updated.Name,
		&updated.Slug,
		&updated.Description,
		&updated.Icon,
		&updated.Color,
		&updated.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.Category{}, directory.ErrNotFound
		}
		return directory.Category{}, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// Delete removes a category row.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	res, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.RowsAffected() == 0 {
		return directory.ErrNotFound
	}
	return nil
}

// List returns all categories sorted by name.
func (s *CategoryStore) List(ctx context.Context) ([]directory.Category, error) {
	query := `
		SELECT id, name, slug, description, icon, color, created_at
		FROM categories
		ORDER BY name ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []directory.Category
	for rows.Next() {
		var category directory.Category
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Slug,
			&category.Description,
			&category.Icon,
			&category.Color,
			&category.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}
