// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/models"
)

// Sentinel errors returned by Engine.Recommend. Handlers translate these into
// HTTP status codes.
var (
	// ErrUnauthenticated is returned when the request carries no valid user id.
	ErrUnauthenticated = errors.New("recommend: unauthenticated request")

	// ErrInvalidLimit is returned when the requested limit is not positive.
	ErrInvalidLimit = errors.New("recommend: limit must be positive")

	// ErrContentStoreUnavailable is returned when the content catalog cannot
	// be reached. Unlike engagement-store failures this aborts the request.
	ErrContentStoreUnavailable = errors.New("recommend: content store unavailable")
)

// Request identifies one recommendation computation.
// UserID must be an already-authenticated principal; the HTTP layer resolves
// authentication before the engine sees the request.
type Request struct {
	UserID int64
	Limit  int
}

// OrderBy selects the ordering of a content query.
type OrderBy string

const (
	OrderByRating  OrderBy = "rating"
	OrderByViews   OrderBy = "views"
	OrderByRecency OrderBy = "recency"
)

// ContentFilter narrows a published-content query. Zero-value fields are
// ignored. These are the only query shapes the engine requires.
type ContentFilter struct {
	// IDs restricts the result to the given content ids.
	IDs []int64

	// Genres keeps content whose genre set intersects this list.
	Genres []string

	// Exclude drops content whose id is in this set.
	Exclude map[int64]struct{}

	// CreatedAfter keeps content created at or after this instant.
	CreatedAfter time.Time

	// OrderBy selects the result ordering; default is OrderByRating.
	OrderBy OrderBy

	// Limit caps the result size. Zero means no cap.
	Limit int
}

// ContentStore is the read-only query surface over the content catalog.
// Implementations must only ever return published content.
type ContentStore interface {
	QueryPublishedContent(ctx context.Context, filter ContentFilter) ([]models.Content, error)
}

// EngagementStore is the read-only query surface over a user's watch history,
// watchlist, ratings, and the derived similar-users relation.
type EngagementStore interface {
	// FetchRecentWatchHistory returns the user's most recent watch events,
	// newest first, capped at limit.
	FetchRecentWatchHistory(ctx context.Context, userID int64, limit int) ([]models.WatchEvent, error)

	// FetchWatchlist returns the user's watchlist entries.
	FetchWatchlist(ctx context.Context, userID int64) ([]models.WatchlistEntry, error)

	// FetchRatings returns all of the user's ratings.
	FetchRatings(ctx context.Context, userID int64) ([]models.Rating, error)

	// FetchSimilarUsers returns users sharing at least minCommon watched
	// content items with the target user, ordered by overlap descending.
	FetchSimilarUsers(ctx context.Context, userID int64, minCommon int) ([]models.SimilarUser, error)
}

// Source tags a candidate with the generator that produced it.
type Source string

const (
	SourceGenre         Source = "genre"
	SourceTrending      Source = "trending"
	SourceCollaborative Source = "collaborative"
)

// Candidate is the transient entity flowing from generation to scoring:
// resolved content plus provenance and the collaborative frequency signal.
type Candidate struct {
	Content models.Content
	Source  Source

	// Frequency is how many similar users watched this content.
	// Zero for non-collaborative candidates.
	Frequency int
}

// Profile is the preference model derived from one user's engagement data.
type Profile struct {
	// Seen holds content ids the user has watched or watchlisted.
	Seen map[int64]struct{}

	// GenreAverages maps genre name to the user's average rating over that
	// genre, for genres with enough ratings to be meaningful.
	GenreAverages map[string]float64

	// PreferredGenres are the genres whose average rating met the preference
	// threshold, sorted alphabetically for determinism.
	PreferredGenres []string

	// WatchedCount is the number of watch events in the inspected window.
	WatchedCount int
}

// HasPreferredGenre reports whether g is one of the profile's preferred
// genres.
func (p *Profile) HasPreferredGenre(g string) bool {
	for _, pg := range p.PreferredGenres {
		if pg == g {
			return true
		}
	}
	return false
}
