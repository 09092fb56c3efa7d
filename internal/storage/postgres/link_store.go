package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/linkboard/linkboard/internal/directory"
)

// linkColumns is the select list shared by the joined link queries.
const linkColumns = `l.id, l.url, l.title, l.description, l.image, l.favicon,
	l.category_id, l.submitted_by, l.status, l.views, l.clicks, l.tags,
	l.created_at, l.approved_at, COALESCE(l.approved_by, ''),
	c.name, c.icon, c.color, u.name`

// LinkStore implements directory.LinkStore on Postgres. Counter increments
// run as single UPDATE statements so concurrent callers never lose updates.
type LinkStore struct {
	pool Pool
}

// NewLinkStore constructs a LinkStore over an existing pool.
func NewLinkStore(pool Pool) *LinkStore {
	return &LinkStore{pool: pool}
}

// Insert stores a new link row.
func (s *LinkStore) Insert(ctx context.Context, link directory.Link) error {
	query := `
		INSERT INTO links (
			id, url, title, description, image, favicon,
			category_id, submitted_by, status, views, clicks, tags,
			created_at, approved_at, approved_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`
	var approvedBy *string
	if link.ApprovedBy != "" {
		approvedBy = &link.ApprovedBy
	}
	_, err := s.pool.Exec(ctx, query,
		link.ID,
		link.URL,
		link.Title,
		link.Description,
		link.Image,
		link.Favicon,
		link.CategoryID,
		link.SubmittedBy,
		link.Status,
		link.Views,
		link.Clicks,
		link.Tags,
		link.CreatedAt,
		link.ApprovedAt,
		approvedBy,
	)
	if err != nil {
		return fmt.Errorf("insert link: %w", err)
	}
	return nil
}

// Get fetches a single link by ID.
func (s *LinkStore) Get(ctx context.Context, id string) (directory.Link, error) {
	query := `
		SELECT id, url, title, description, image, favicon,
			category_id, submitted_by, status, views, clicks, tags,
			created_at, approved_at, COALESCE(approved_by, '')
		FROM links
		WHERE id = $1
	`
	var link directory.Link
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&link.ID,
		&link.URL,
		&link.Title,
		&link.Description,
		&link.Image,
		&link.Favicon,
		&link.CategoryID,
		&link.SubmittedBy,
		&link.Status,
		&link.Views,
		&link.Clicks,
		&link.Tags,
		&link.CreatedAt,
		&link.ApprovedAt,
		&link.ApprovedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.Link{}, directory.ErrNotFound
		}
		return directory.Link{}, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

// Update applies the non-nil fields of upd and returns the updated link.
// Approval fields are only ever written, never cleared, preserving the
// audit trail when a link leaves the approved state.
func (s *LinkStore) Update(ctx context.Context, id string, upd directory.LinkUpdate) (directory.Link, error) {
	query := `
		UPDATE links SET
			status = COALESCE($2::text, status),
			approved_at = COALESCE($3::timestamptz, approved_at),
			approved_by = COALESCE($4::text, approved_by)
		WHERE id = $1
		RETURNING id, url, title, description, image, favicon,
			category_id, submitted_by, status, views, clicks, tags,
			created_at, approved_at, COALESCE(approved_by, '')
	`
	var link directory.Link
	err := s.pool.QueryRow(ctx, query, id, (*string)(upd.Status), upd.ApprovedAt, upd.ApprovedBy).Scan(
		&link.ID,
		&link.URL,
		&link.Title,
		&link.Description,
		&link.Image,
		&link.Favicon,
		&link.CategoryID,
		&link.SubmittedBy,
		&link.Status,
		&link.Views,
		&link.Clicks,
		&link.Tags,
		&link.CreatedAt,
		&link.ApprovedAt,
		&link.ApprovedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.Link{}, directory.ErrNotFound
		}
		return directory.Link{}, fmt.Errorf("update link: %w", err)
	}
	return link, nil
}

// IncrementViews atomically adds one view and returns the new count.
func (s *LinkStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	return s.increment(ctx, id, `UPDATE links SET views = views + 1 WHERE id = $1 RETURNING views`)
}

// IncrementClicks atomically adds one click and returns the new count.
func (s *LinkStore) IncrementClicks(ctx context.Context, id string) (int64, error) {
	return s.increment(ctx, id, `UPDATE links SET clicks = clicks + 1 WHERE id = $1 RETURNING clicks`)
}

func (s *LinkStore) increment(ctx context.Context, id, query string) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, query, id).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, directory.ErrNotFound
		}
		return 0, fmt.Errorf("increment counter: %w", err)
	}
	return count, nil
}

// Delete removes a link row.
func (s *LinkStore) Delete(ctx context.Context, id string) error {
	res, err := s.pool.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	if res.RowsAffected() == 0 {
		return directory.ErrNotFound
	}
	return nil
}

// List returns links matching the filter, newest first, joined with category
// display fields and the submitter's name.
func (s *LinkStore) List(ctx context.Context, filter directory.ListFilter) ([]directory.LinkView, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM links l
		JOIN categories c ON c.id = l.category_id
		JOIN users u ON u.id = l.submitted_by
		WHERE ($1::text = '' OR l.status = $1)
			AND ($2::text = '' OR l.category_id = $2)
			AND ($3::text = '' OR l.title ILIKE '%%' || $3 || '%%' OR l.description ILIKE '%%' || $3 || '%%')
		ORDER BY l.created_at DESC
	`, linkColumns)

	rows, err := s.pool.Query(ctx, query, string(filter.Status), filter.CategoryID, escapeLike(filter.Search))
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var views []directory.LinkView
	for rows.Next() {
		var view directory.LinkView
		err := rows.Scan(
			&view.ID,
			&view.URL,
			&view.Title,
			&view.Description,
			&view.Image,
			&view.Favicon,
			&view.CategoryID,
			&view.SubmittedBy,
			&view.Status,
			&view.Views,
			&view.Clicks,
			&view.Tags,
			&view.CreatedAt,
			&view.ApprovedAt,
			&view.ApprovedBy,
			&view.CategoryName,
			&view.CategoryIcon,
			&view.CategoryColor,
			&view.SubmitterName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan link row: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate link rows: %w", err)
	}
	return views, nil
}

// likeEscaper neutralizes LIKE metacharacters so the search term matches as
// a literal substring.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// CountByCategory returns how many links reference the category.
func (s *LinkStore) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM links WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count links by category: %w", err)
	}
	return count, nil
}

// Stats aggregates directory-wide totals.
func (s *LinkStore) Stats(ctx context.Context) (directory.Stats, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COALESCE(SUM(views), 0),
			COALESCE(SUM(clicks), 0)
		FROM links
	`
	var stats directory.Stats
	err := s.pool.QueryRow(ctx, query).Scan(
		&stats.TotalLinks,
		&stats.ApprovedLinks,
		&stats.PendingLinks,
		&stats.TotalViews,
		&stats.TotalClicks,
	)
	if err != nil {
		return directory.Stats{}, fmt.Errorf("load stats: %w", err)
	}
	return stats, nil
}
