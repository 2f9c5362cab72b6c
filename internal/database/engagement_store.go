// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/logging"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/metrics"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/models"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/recommend"
)

const engagementBreakerName = "engagement-store"

// EngagementStore serves watch history, ratings, watchlist, and the derived
// similar-users relation. Reads run behind a circuit breaker: the
// recommendation engine degrades gracefully on engagement failures, so a
// struggling database is better served fast-failing than queueing queries.
type EngagementStore struct {
	db      *DB
	breaker *gobreaker.CircuitBreaker[any]
}

var _ recommend.EngagementStore = (*EngagementStore)(nil)

// NewEngagementStore returns an EngagementStore backed by db.
func NewEngagementStore(db *DB) *EngagementStore {
	metrics.CircuitBreakerState.WithLabelValues(engagementBreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        engagementBreakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", breakerStateString(from)).
				Str("to", breakerStateString(to)).
				Msg("Engagement store circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateFloat(to))
		},
	})

	return &EngagementStore{db: db, breaker: cb}
}

// execute runs fn through the circuit breaker and records the outcome.
func (s *EngagementStore) execute(fn func() (any, error)) (any, error) {
	result, err := s.breaker.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(engagementBreakerName, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(engagementBreakerName, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(engagementBreakerName, "failure").Inc()
	}
	return result, err
}

// FetchRecentWatchHistory returns the user's most recent watch events, newest
// first, capped at limit.
func (s *EngagementStore) FetchRecentWatchHistory(ctx context.Context, userID int64, limit int) ([]models.WatchEvent, error) {
	result, err := s.execute(func() (any, error) {
		start := time.Now()
		stmt, err := s.db.getStmt(ctx, `SELECT user_id, content_id, watched_at
			FROM watch_events WHERE user_id = ?
			ORDER BY watched_at DESC LIMIT ?`)
		if err != nil {
			return nil, err
		}
		rows, err := stmt.QueryContext(ctx, userID, limit)
		if err != nil {
			metrics.RecordDBQuery("query", "watch_events", time.Since(start), err)
			return nil, fmt.Errorf("query watch history: %w", err)
		}
		defer func() { _ = rows.Close() }()

		var events []models.WatchEvent
		for rows.Next() {
			var ev models.WatchEvent
			if err := rows.Scan(&ev.UserID, &ev.ContentID, &ev.WatchedAt); err != nil {
				return nil, fmt.Errorf("scan watch event: %w", err)
			}
			events = append(events, ev)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate watch events: %w", err)
		}
		metrics.RecordDBQuery("query", "watch_events", time.Since(start), nil)
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	events, _ := result.([]models.WatchEvent)
	return events, nil
}

// FetchWatchlist returns the user's watchlist entries, newest first.
func (s *EngagementStore) FetchWatchlist(ctx context.Context, userID int64) ([]models.WatchlistEntry, error) {
	result, err := s.execute(func() (any, error) {
		stmt, err := s.db.getStmt(ctx, `SELECT user_id, content_id, added_at
			FROM watchlist WHERE user_id = ? ORDER BY added_at DESC`)
		if err != nil {
			return nil, err
		}
		rows, err := stmt.QueryContext(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("query watchlist: %w", err)
		}
		defer func() { _ = rows.Close() }()

		var entries []models.WatchlistEntry
		for rows.Next() {
			var e models.WatchlistEntry
			if err := rows.Scan(&e.UserID, &e.ContentID, &e.AddedAt); err != nil {
				return nil, fmt.Errorf("scan watchlist entry: %w", err)
			}
			entries = append(entries, e)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate watchlist: %w", err)
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	entries, _ := result.([]models.WatchlistEntry)
	return entries, nil
}

// FetchRatings returns all of the user's ratings.
func (s *EngagementStore) FetchRatings(ctx context.Context, userID int64) ([]models.Rating, error) {
	result, err := s.execute(func() (any, error) {
		stmt, err := s.db.getStmt(ctx, `SELECT user_id, content_id, value, rated_at
			FROM ratings WHERE user_id = ? ORDER BY rated_at DESC`)
		if err != nil {
			return nil, err
		}
		rows, err := stmt.QueryContext(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("query ratings: %w", err)
		}
		defer func() { _ = rows.Close() }()

		var ratings []models.Rating
		for rows.Next() {
			var r models.Rating
			if err := rows.Scan(&r.UserID, &r.ContentID, &r.Value, &r.RatedAt); err != nil {
				return nil, fmt.Errorf("scan rating: %w", err)
			}
			ratings = append(ratings, r)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate ratings: %w", err)
		}
		return ratings, nil
	})
	if err != nil {
		return nil, err
	}
	ratings, _ := result.([]models.Rating)
	return ratings, nil
}

// FetchSimilarUsers returns users whose watch history overlaps the target
// user's by at least minCommon distinct content items, largest overlap first.
func (s *EngagementStore) FetchSimilarUsers(ctx context.Context, userID int64, minCommon int) ([]models.SimilarUser, error) {
	result, err := s.execute(func() (any, error) {
		start := time.Now()
		stmt, err := s.db.getStmt(ctx, `WITH target AS (
				SELECT DISTINCT content_id FROM watch_events WHERE user_id = ?
			)
			SELECT w.user_id, COUNT(DISTINCT w.content_id) AS common_items
			FROM watch_events w
			JOIN target t ON t.content_id = w.content_id
			WHERE w.user_id <> ?
			GROUP BY w.user_id
			HAVING COUNT(DISTINCT w.content_id) >= ?
			ORDER BY common_items DESC, w.user_id ASC`)
		if err != nil {
			return nil, err
		}
		rows, err := stmt.QueryContext(ctx, userID, userID, minCommon)
		if err != nil {
			metrics.RecordDBQuery("query", "watch_events", time.Since(start), err)
			return nil, fmt.Errorf("query similar users: %w", err)
		}
		defer func() { _ = rows.Close() }()

		var users []models.SimilarUser
		for rows.Next() {
			var u models.SimilarUser
			if err := rows.Scan(&u.OtherUserID, &u.CommonItems); err != nil {
				return nil, fmt.Errorf("scan similar user: %w", err)
			}
			users = append(users, u)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate similar users: %w", err)
		}
		metrics.RecordDBQuery("query", "watch_events", time.Since(start), nil)
		return users, nil
	})
	if err != nil {
		return nil, err
	}
	users, _ := result.([]models.SimilarUser)
	return users, nil
}

// RecordWatchEvent appends a watch event and increments the content's view
// counter in the same transaction.
func (s *EngagementStore) RecordWatchEvent(ctx context.Context, ev models.WatchEvent) error {
	watchedAt := ev.WatchedAt
	if watchedAt.IsZero() {
		watchedAt = time.Now().UTC()
	}

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO watch_events (user_id, content_id, watched_at) VALUES (?, ?, ?)`,
		ev.UserID, ev.ContentID, watchedAt); err != nil {
		return fmt.Errorf("insert watch event: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE content SET view_count = view_count + 1 WHERE id = ?`,
		ev.ContentID); err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit watch event: %w", err)
	}
	return nil
}

// UpsertRating writes a user's rating for a content item and recomputes the
// item's aggregate rating.
func (s *EngagementStore) UpsertRating(ctx context.Context, r models.Rating) error {
	ratedAt := r.RatedAt
	if ratedAt.IsZero() {
		ratedAt = time.Now().UTC()
	}

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ratings (user_id, content_id, value, rated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, content_id) DO UPDATE SET value = excluded.value, rated_at = excluded.rated_at`,
		r.UserID, r.ContentID, r.Value, ratedAt); err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE content SET
			average_rating = (SELECT AVG(value) FROM ratings WHERE content_id = ?),
			rating_count = (SELECT COUNT(*) FROM ratings WHERE content_id = ?)
		 WHERE id = ?`,
		r.ContentID, r.ContentID, r.ContentID); err != nil {
		return fmt.Errorf("recompute average rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rating: %w", err)
	}
	return nil
}

// AddWatchlistEntry adds a content item to the user's watchlist. Adding an
// item already on the list is a no-op.
func (s *EngagementStore) AddWatchlistEntry(ctx context.Context, e models.WatchlistEntry) error {
	addedAt := e.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}
	if _, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO watchlist (user_id, content_id, added_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, content_id) DO NOTHING`,
		e.UserID, e.ContentID, addedAt); err != nil {
		return fmt.Errorf("insert watchlist entry: %w", err)
	}
	return nil
}

// RemoveWatchlistEntry deletes a watchlist entry. Returns false when the
// entry did not exist.
func (s *EngagementStore) RemoveWatchlistEntry(ctx context.Context, userID, contentID int64) (bool, error) {
	res, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM watchlist WHERE user_id = ? AND content_id = ?`, userID, contentID)
	if err != nil {
		return false, fmt.Errorf("delete watchlist entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func breakerStateString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func breakerStateFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
