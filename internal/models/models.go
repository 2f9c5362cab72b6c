// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

// Package models defines the domain entities shared between the database
// adapters, the recommendation engine, and the HTTP layer.
package models

import (
	"time"
)

// ContentStatus is the publication state of a catalog entry. Only published
// content is eligible for recommendation.
type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusPublished ContentStatus = "published"
	StatusArchived  ContentStatus = "archived"
)

// Content represents one catalog entry (movie, episode, or clip).
//
// AverageRating is the continuous 0-5 aggregate over all user ratings.
// ViewCount is the lifetime popularity counter. Both are maintained by the
// write path; the recommendation engine treats them as immutable within a
// single request.
type Content struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Genres        []string      `json:"genres"`
	AverageRating float64       `json:"average_rating"`
	ViewCount     int64         `json:"view_count"`
	CreatedAt     time.Time     `json:"created_at"`
	Status        ContentStatus `json:"status"`
}

// IsPublished reports whether the content is visible to recommendation
// and browsing surfaces.
func (c *Content) IsPublished() bool {
	return c.Status == StatusPublished
}

// WatchEvent records that a user watched a piece of content.
// Many per user; the set of a user's watch events defines "already seen".
type WatchEvent struct {
	UserID    int64     `json:"user_id"`
	ContentID int64     `json:"content_id"`
	WatchedAt time.Time `json:"watched_at"`
}

// Rating is a user's 1-5 star rating of one content item.
// At most one per (user, content) pair; used to infer genre affinity.
type Rating struct {
	UserID    int64     `json:"user_id"`
	ContentID int64     `json:"content_id"`
	Value     float64   `json:"value"`
	RatedAt   time.Time `json:"rated_at"`
}

// WatchlistEntry marks content a user has queued for later.
// Watchlisted content is excluded from recommendations alongside watched
// content; the user already knows about it.
type WatchlistEntry struct {
	UserID    int64     `json:"user_id"`
	ContentID int64     `json:"content_id"`
	AddedAt   time.Time `json:"added_at"`
}

// SimilarUser is a derived relation: OtherUserID has watched at least a
// configured minimum number of content items in common with the target user.
// Produced by the engagement store, never persisted.
type SimilarUser struct {
	OtherUserID int64 `json:"other_user_id"`
	CommonItems int64 `json:"common_items"`
}

// Recommendation is the request-scoped output entity: content fields plus the
// computed score and its human-readable justifications. Created during
// scoring, discarded after the response is sent.
type Recommendation struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Genres        []string  `json:"genres"`
	AverageRating float64   `json:"average_rating"`
	ViewCount     int64     `json:"view_count"`
	CreatedAt     time.Time `json:"created_at"`
	Score         float64   `json:"recommendation_score"`
	Reasons       []string  `json:"recommendation_reasons"`
}

// UserPreferences summarizes the preference profile used for one
// recommendation request, echoed back in the response metadata.
type UserPreferences struct {
	PreferredGenres     []string `json:"preferred_genres"`
	WatchedContentCount int      `json:"watched_content_count"`
	SimilarUsersFound   int      `json:"similar_users_found"`
}

// RecommendationsMetadata accompanies every recommendation response.
type RecommendationsMetadata struct {
	Total           int             `json:"total"`
	UserPreferences UserPreferences `json:"user_preferences"`
}

// RecommendationsResponse is the wire shape of a recommendation request's
// result.
//
//	{
//	  "recommendations": [
//	    {"id": 7, "title": "...", "genres": ["Thriller"],
//	     "average_rating": 4.6, "view_count": 12034,
//	     "created_at": "2026-08-12T00:00:00Z",
//	     "recommendation_score": 24.5,
//	     "recommendation_reasons": ["Based on your favorite genres", "Highly rated"]}
//	  ],
//	  "metadata": {
//	    "total": 1,
//	    "user_preferences": {
//	      "preferred_genres": ["Thriller"],
//	      "watched_content_count": 12,
//	      "similar_users_found": 3
//	    }
//	  }
//	}
type RecommendationsResponse struct {
	Recommendations []Recommendation        `json:"recommendations"`
	Metadata        RecommendationsMetadata `json:"metadata"`

	// Cached is set when the response was answered from the engine's TTL
	// cache. It is surfaced in the HTTP envelope metadata, not in the body.
	Cached bool `json:"-"`
}
