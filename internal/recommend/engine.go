// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/metrics"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/models"
)

// Engine orchestrates the recommendation pipeline. It is safe for concurrent
// use; all per-request state lives on the stack of Recommend.
type Engine struct {
	cfg        *Config
	content    ContentStore
	engagement EngagementStore
	logger     zerolog.Logger

	cacheMu sync.RWMutex
	cache   map[string]cacheEntry

	// now is replaceable in tests for deterministic recency checks.
	now func() time.Time
}

type cacheEntry struct {
	response  *models.RecommendationsResponse
	expiresAt time.Time
}

// NewEngine creates an engine over the given stores. A nil cfg uses
// DefaultConfig. The content store is mandatory; without a catalog there is
// nothing to recommend.
func NewEngine(cfg *Config, content ContentStore, engagement EngagementStore, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate engine config: %w", err)
	}
	if content == nil {
		return nil, errors.New("content store is required")
	}
	if engagement == nil {
		return nil, errors.New("engagement store is required")
	}

	return &Engine{
		cfg:        cfg.Clone(),
		content:    content,
		engagement: engagement,
		logger:     logger,
		cache:      make(map[string]cacheEntry),
		now:        time.Now,
	}, nil
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() *Config {
	return e.cfg.Clone()
}

// Recommend computes the ranked recommendation list for one user.
//
// The request is rejected before any store query when the user id is missing
// (ErrUnauthenticated) or the limit is not positive (ErrInvalidLimit). An
// unreachable content store aborts with ErrContentStoreUnavailable; every
// other store failure shrinks the candidate pool instead of failing the
// request.
func (e *Engine) Recommend(ctx context.Context, req Request) (*models.RecommendationsResponse, error) {
	if req.UserID <= 0 {
		metrics.RecommendationRequestsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrUnauthenticated
	}
	if req.Limit <= 0 {
		metrics.RecommendationRequestsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidLimit
	}
	limit := req.Limit
	if limit > e.cfg.Limits.MaxLimit {
		limit = e.cfg.Limits.MaxLimit
	}

	cacheKey := fmt.Sprintf("%d:%d", req.UserID, limit)
	if cached := e.cachedResponse(cacheKey); cached != nil {
		metrics.RecommendationCacheHitsTotal.Inc()
		metrics.RecommendationRequestsTotal.WithLabelValues("cached").Inc()
		return cached, nil
	}

	start := e.now()
	now := start

	profile, err := e.buildProfile(ctx, req.UserID)
	if err != nil {
		metrics.RecommendationRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	var (
		wg           sync.WaitGroup
		genreList    []Candidate
		trendingList []Candidate
		collabList   []Candidate
		similarFound int
		genreErr     error
		trendingErr  error
		collabErr    error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		genreList, genreErr = e.genreCandidates(ctx, profile, limit)
	}()
	go func() {
		defer wg.Done()
		trendingList, trendingErr = e.trendingCandidates(ctx, profile, limit, now)
	}()
	go func() {
		defer wg.Done()
		collabList, similarFound, collabErr = e.collaborativeCandidates(ctx, req.UserID, profile, limit)
	}()
	wg.Wait()

	for _, gerr := range []error{genreErr, trendingErr, collabErr} {
		if gerr != nil {
			metrics.RecommendationRequestsTotal.WithLabelValues("error").Inc()
			return nil, gerr
		}
	}

	candidates := aggregate(genreList, trendingList, collabList, limit)
	ranked := e.scoreAndRank(candidates, profile, similarFound, now)

	preferred := profile.PreferredGenres
	if preferred == nil {
		preferred = []string{}
	}
	if ranked == nil {
		ranked = []models.Recommendation{}
	}

	response := &models.RecommendationsResponse{
		Recommendations: ranked,
		Metadata: models.RecommendationsMetadata{
			Total: len(ranked),
			UserPreferences: models.UserPreferences{
				PreferredGenres:     preferred,
				WatchedContentCount: profile.WatchedCount,
				SimilarUsersFound:   similarFound,
			},
		},
	}

	e.storeResponse(cacheKey, response)
	metrics.RecommendationRequestsTotal.WithLabelValues("success").Inc()
	metrics.RecommendationDuration.Observe(e.now().Sub(start).Seconds())

	e.logger.Debug().
		Int64("user_id", req.UserID).
		Int("limit", limit).
		Int("results", len(ranked)).
		Int("similar_users", similarFound).
		Strs("preferred_genres", preferred).
		Msg("Recommendations computed")

	return response, nil
}

// buildProfile assembles the preference model. Engagement store failures
// degrade to empty inputs; a content-store failure while resolving the genres
// of rated content is fatal only when the store itself is unreachable.
func (e *Engine) buildProfile(ctx context.Context, userID int64) (*Profile, error) {
	history := e.fetchHistory(ctx, userID)
	watchlist := e.fetchWatchlist(ctx, userID)
	ratings := e.fetchRatings(ctx, userID)

	genresByContent := make(map[int64][]string)
	if ids := ratedWatchedContentIDs(history, ratings); len(ids) > 0 {
		qctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.QueryTimeout)
		contents, err := e.content.QueryPublishedContent(qctx, ContentFilter{IDs: ids})
		cancel()
		switch {
		case errors.Is(err, ErrContentStoreUnavailable):
			return nil, err
		case err != nil:
			e.logger.Warn().Err(err).Int64("user_id", userID).
				Msg("Rated content lookup failed, inferring no genre preferences")
		default:
			for _, c := range contents {
				genresByContent[c.ID] = c.Genres
			}
		}
	}

	profile := BuildProfile(history, watchlist, ratings, genresByContent,
		e.cfg.Thresholds.MinGenreRatings, e.cfg.Thresholds.PreferredGenreRating)
	return &profile, nil
}

func (e *Engine) fetchHistory(ctx context.Context, userID int64) []models.WatchEvent {
	qctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.QueryTimeout)
	defer cancel()
	history, err := e.engagement.FetchRecentWatchHistory(qctx, userID, e.cfg.Limits.HistoryLimit)
	if err != nil {
		metrics.GeneratorDegradationsTotal.WithLabelValues("history").Inc()
		e.logger.Warn().Err(err).Int64("user_id", userID).Msg("Watch history query failed, treating as empty")
		return nil
	}
	return history
}

func (e *Engine) fetchWatchlist(ctx context.Context, userID int64) []models.WatchlistEntry {
	qctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.QueryTimeout)
	defer cancel()
	watchlist, err := e.engagement.FetchWatchlist(qctx, userID)
	if err != nil {
		metrics.GeneratorDegradationsTotal.WithLabelValues("watchlist").Inc()
		e.logger.Warn().Err(err).Int64("user_id", userID).Msg("Watchlist query failed, treating as empty")
		return nil
	}
	return watchlist
}

func (e *Engine) fetchRatings(ctx context.Context, userID int64) []models.Rating {
	qctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.QueryTimeout)
	defer cancel()
	ratings, err := e.engagement.FetchRatings(qctx, userID)
	if err != nil {
		metrics.GeneratorDegradationsTotal.WithLabelValues("ratings").Inc()
		e.logger.Warn().Err(err).Int64("user_id", userID).Msg("Ratings query failed, treating as empty")
		return nil
	}
	return ratings
}

// cachedResponse returns a live cached response or nil. Hits are returned as
// a shallow copy with Cached set, leaving the stored entry untouched.
func (e *Engine) cachedResponse(key string) *models.RecommendationsResponse {
	if !e.cfg.Cache.Enabled {
		return nil
	}
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()
	entry, ok := e.cache[key]
	if !ok || e.now().After(entry.expiresAt) {
		return nil
	}
	hit := *entry.response
	hit.Cached = true
	return &hit
}

// storeResponse caches a response under key, evicting expired entries when
// the cache is full.
func (e *Engine) storeResponse(key string, response *models.RecommendationsResponse) {
	if !e.cfg.Cache.Enabled {
		return
	}
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	if len(e.cache) >= e.cfg.Cache.MaxEntries {
		e.evictExpiredLocked()
		if len(e.cache) >= e.cfg.Cache.MaxEntries {
			return
		}
	}
	e.cache[key] = cacheEntry{
		response:  response,
		expiresAt: e.now().Add(e.cfg.Cache.TTL),
	}
}

// InvalidateUser drops all cached responses for the given user. The write
// path calls this after recording a watch event, rating, or watchlist change.
func (e *Engine) InvalidateUser(userID int64) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	prefix := fmt.Sprintf("%d:", userID)
	for key := range e.cache {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(e.cache, key)
		}
	}
}

// evictExpiredLocked removes expired cache entries. Caller holds cacheMu.
func (e *Engine) evictExpiredLocked() {
	now := e.now()
	for key, entry := range e.cache {
		if now.After(entry.expiresAt) {
			delete(e.cache, key)
		}
	}
}

// CacheLen reports the number of cached responses, expired or not.
func (e *Engine) CacheLen() int {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()
	return len(e.cache)
}

// Serve runs the cache janitor until ctx is canceled, evicting expired
// entries on a fixed cadence. Implements suture.Service so the supervisor
// restarts it if it ever panics.
func (e *Engine) Serve(ctx context.Context) error {
	interval := e.cfg.Cache.TTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.cacheMu.Lock()
			e.evictExpiredLocked()
			e.cacheMu.Unlock()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer for supervisor log output.
func (e *Engine) String() string {
	return "recommend-engine"
}
