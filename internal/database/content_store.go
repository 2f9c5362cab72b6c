// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/metrics"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/models"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/recommend"
)

// ContentStore adapts the content tables to the recommendation engine's
// query interface and provides the catalog's write path.
type ContentStore struct {
	db *DB
}

var _ recommend.ContentStore = (*ContentStore)(nil)

// NewContentStore returns a ContentStore backed by db.
func NewContentStore(db *DB) *ContentStore {
	return &ContentStore{db: db}
}

// QueryPublishedContent returns published content matching filter. Connection
// loss is wrapped with recommend.ErrContentStoreUnavailable so callers can
// distinguish an unusable store from a failed query.
func (s *ContentStore) QueryPublishedContent(ctx context.Context, filter recommend.ContentFilter) ([]models.Content, error) {
	start := time.Now()

	var sb strings.Builder
	sb.WriteString(`SELECT id, title, genres, average_rating, view_count, created_at, status
		FROM content WHERE status = ?`)
	args := []any{string(models.StatusPublished)}

	if len(filter.IDs) > 0 {
		sb.WriteString(" AND id IN (" + placeholders(len(filter.IDs)) + ")")
		for _, id := range filter.IDs {
			args = append(args, id)
		}
	}
	if len(filter.Genres) > 0 {
		sb.WriteString(" AND id IN (SELECT content_id FROM content_genres WHERE genre IN (" +
			placeholders(len(filter.Genres)) + "))")
		for _, g := range filter.Genres {
			args = append(args, g)
		}
	}
	if len(filter.Exclude) > 0 {
		sb.WriteString(" AND id NOT IN (" + placeholders(len(filter.Exclude)) + ")")
		for id := range filter.Exclude {
			args = append(args, id)
		}
	}
	if !filter.CreatedAfter.IsZero() {
		sb.WriteString(" AND created_at >= ?")
		args = append(args, filter.CreatedAfter)
	}

	switch filter.OrderBy {
	case recommend.OrderByViews:
		sb.WriteString(" ORDER BY view_count DESC, id ASC")
	case recommend.OrderByRecency:
		sb.WriteString(" ORDER BY created_at DESC, id ASC")
	default:
		sb.WriteString(" ORDER BY average_rating DESC, id ASC")
	}

	if filter.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := s.db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("query", "content").Inc()
		return nil, s.wrapErr("query published content", err)
	}
	defer func() { _ = rows.Close() }()

	var items []models.Content
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapErr("iterate content rows", err)
	}

	metrics.RecordDBQuery("query", "content", time.Since(start), nil)
	return items, nil
}

// CreateContent inserts a catalog entry and its genre junction rows, and
// returns the assigned ID.
func (s *ContentStore) CreateContent(ctx context.Context, item *models.Content) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return s.wrapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	genres := normalizeGenres(item.Genres)
	status := item.Status
	if status == "" {
		status = models.StatusDraft
	}
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := tx.QueryRowContext(ctx,
		`INSERT INTO content (title, genres, average_rating, view_count, created_at, status)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		item.Title, strings.Join(genres, ","), item.AverageRating, item.ViewCount, createdAt, string(status))
	if err := row.Scan(&item.ID); err != nil {
		metrics.DBQueryErrors.WithLabelValues("insert", "content").Inc()
		return s.wrapErr("insert content", err)
	}

	for _, genre := range genres {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO content_genres (content_id, genre) VALUES (?, ?)`,
			item.ID, genre); err != nil {
			return s.wrapErr("insert content genre", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return s.wrapErr("commit content insert", err)
	}

	item.Genres = genres
	item.Status = status
	item.CreatedAt = createdAt
	return nil
}

// GetContent fetches a single catalog entry by ID regardless of status.
// Returns (nil, nil) when the ID does not exist.
func (s *ContentStore) GetContent(ctx context.Context, id int64) (*models.Content, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT id, title, genres, average_rating, view_count, created_at, status
		 FROM content WHERE id = ?`, id)

	item, err := scanContent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.wrapErr("get content", err)
	}
	return &item, nil
}

// ListContent returns catalog entries filtered by status (empty means all),
// newest first.
func (s *ContentStore) ListContent(ctx context.Context, status models.ContentStatus, limit, offset int) ([]models.Content, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, title, genres, average_rating, view_count, created_at, status FROM content`)
	var args []any
	if status != "" {
		sb.WriteString(" WHERE status = ?")
		args = append(args, string(status))
	}
	sb.WriteString(" ORDER BY created_at DESC, id ASC")
	if limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	if offset > 0 {
		sb.WriteString(" OFFSET ?")
		args = append(args, offset)
	}

	rows, err := s.db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, s.wrapErr("list content", err)
	}
	defer func() { _ = rows.Close() }()

	var items []models.Content
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapErr("iterate content rows", err)
	}
	return items, nil
}

// UpdateContentStatus moves a catalog entry between draft, published, and
// archived. Returns false when the ID does not exist.
func (s *ContentStore) UpdateContentStatus(ctx context.Context, id int64, status models.ContentStatus) (bool, error) {
	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE content SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return false, s.wrapErr("update content status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *ContentStore) wrapErr(op string, err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("%s: %v: %w", op, err, recommend.ErrContentStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (models.Content, error) {
	var (
		item      models.Content
		genresRaw string
		status    string
	)
	if err := row.Scan(&item.ID, &item.Title, &genresRaw, &item.AverageRating,
		&item.ViewCount, &item.CreatedAt, &status); err != nil {
		return models.Content{}, err
	}
	item.Genres = splitGenres(genresRaw)
	item.Status = models.ContentStatus(status)
	return item, nil
}

func splitGenres(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			genres = append(genres, trimmed)
		}
	}
	return genres
}

// normalizeGenres trims whitespace and drops empty and duplicate entries
// while preserving order.
func normalizeGenres(genres []string) []string {
	seen := make(map[string]struct{}, len(genres))
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		trimmed := strings.TrimSpace(g)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
