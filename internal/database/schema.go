// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package database

import "fmt"

// createTables creates the StreamHub schema.
//
// content_genres is a junction table kept in sync with content.genres so the
// genre-affinity query can match on an indexed equality instead of parsing
// the comma-joined column.
func (db *DB) createTables() error {
	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS content_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS content (
			id BIGINT PRIMARY KEY DEFAULT nextval('content_id_seq'),
			title VARCHAR NOT NULL,
			genres VARCHAR NOT NULL DEFAULT '',
			average_rating DOUBLE NOT NULL DEFAULT 0,
			rating_count BIGINT NOT NULL DEFAULT 0,
			view_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			status VARCHAR NOT NULL DEFAULT 'draft'
		)`,
		`CREATE TABLE IF NOT EXISTS content_genres (
			content_id BIGINT NOT NULL,
			genre VARCHAR NOT NULL,
			PRIMARY KEY (content_id, genre)
		)`,
		`CREATE TABLE IF NOT EXISTS watch_events (
			user_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			watched_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			user_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			value DOUBLE NOT NULL,
			rated_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (user_id, content_id)
		)`,
		`CREATE TABLE IF NOT EXISTS watchlist (
			user_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			added_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (user_id, content_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

func (db *DB) createIndexes() error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_content_status ON content(status)`,
		`CREATE INDEX IF NOT EXISTS idx_content_created_at ON content(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_content_genres_genre ON content_genres(genre)`,
		`CREATE INDEX IF NOT EXISTS idx_watch_events_user ON watch_events(user_id, watched_at)`,
		`CREATE INDEX IF NOT EXISTS idx_watch_events_content ON watch_events(content_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlist_user ON watchlist(user_id)`,
	}

	for _, stmt := range indexes {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
