// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package recommend

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/metrics"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/models"
)

// quotaCap converts a fractional quota into an absolute candidate cap.
func quotaCap(fraction float64, limit int) int {
	return int(math.Ceil(fraction * float64(limit)))
}

// genreCandidates queries published content intersecting the user's preferred
// genres, excluding already-seen ids, best rated first.
//
// An empty preferred-genre set yields no candidates; falling back to
// unfiltered content is the trending generator's job, not this one's. The
// returned error is non-nil only when the content store is unreachable.
func (e *Engine) genreCandidates(ctx context.Context, profile *Profile, limit int) ([]Candidate, error) {
	quota := quotaCap(e.cfg.Quotas.Genre, limit)
	if quota == 0 || len(profile.PreferredGenres) == 0 {
		return nil, nil
	}

	qctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.QueryTimeout)
	defer cancel()

	contents, err := e.content.QueryPublishedContent(qctx, ContentFilter{
		Genres:  profile.PreferredGenres,
		Exclude: profile.Seen,
		OrderBy: OrderByRating,
		Limit:   quota,
	})
	if err != nil {
		if errors.Is(err, ErrContentStoreUnavailable) {
			return nil, err
		}
		metrics.GeneratorDegradationsTotal.WithLabelValues("genre").Inc()
		e.logger.Warn().Err(err).Msg("Genre candidate query failed, degrading to empty")
		return nil, nil
	}

	return tagCandidates(contents, SourceGenre), nil
}

// trendingCandidates queries published content created within the recency
// window, excluding already-seen ids, most viewed first. The returned error
// is non-nil only when the content store is unreachable.
func (e *Engine) trendingCandidates(ctx context.Context, profile *Profile, limit int, now time.Time) ([]Candidate, error) {
	quota := quotaCap(e.cfg.Quotas.Trending, limit)
	if quota == 0 {
		return nil, nil
	}

	qctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.QueryTimeout)
	defer cancel()

	contents, err := e.content.QueryPublishedContent(qctx, ContentFilter{
		Exclude:      profile.Seen,
		CreatedAfter: now.Add(-e.cfg.Thresholds.RecencyWindow),
		OrderBy:      OrderByViews,
		Limit:        quota,
	})
	if err != nil {
		if errors.Is(err, ErrContentStoreUnavailable) {
			return nil, err
		}
		metrics.GeneratorDegradationsTotal.WithLabelValues("trending").Inc()
		e.logger.Warn().Err(err).Msg("Trending candidate query failed, degrading to empty")
		return nil, nil
	}

	return tagCandidates(contents, SourceTrending), nil
}

// collaborativeCandidates tallies what similar users watched and resolves the
// most frequent unseen items through the catalog. Returns the candidates and
// the number of similar users found (surfaced in response metadata and the
// "Popular among similar users" reason).
//
// Engagement and similarity store failures degrade to an empty list; the
// engine must shrink its candidate pool, never error. Only an unreachable
// content store during resolution produces a non-nil error.
func (e *Engine) collaborativeCandidates(ctx context.Context, userID int64, profile *Profile, limit int) ([]Candidate, int, error) {
	quota := quotaCap(e.cfg.Quotas.Collaborative, limit)
	if quota == 0 {
		return nil, 0, nil
	}

	qctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.QueryTimeout)
	similar, err := e.engagement.FetchSimilarUsers(qctx, userID, e.cfg.Thresholds.MinCommonItems)
	cancel()
	if err != nil {
		metrics.GeneratorDegradationsTotal.WithLabelValues("collaborative").Inc()
		e.logger.Warn().Err(err).Int64("user_id", userID).
			Msg("Similar user query failed, degrading to empty")
		return nil, 0, nil
	}
	if len(similar) == 0 {
		return nil, 0, nil
	}

	// Frequency tally across all similar users' histories. The order slice
	// preserves first appearance so equal frequencies rank deterministically.
	counts := make(map[int64]int)
	var order []int64
	for _, su := range similar {
		hctx, hcancel := context.WithTimeout(ctx, e.cfg.Limits.QueryTimeout)
		events, err := e.engagement.FetchRecentWatchHistory(hctx, su.OtherUserID, e.cfg.Limits.HistoryLimit)
		hcancel()
		if err != nil {
			e.logger.Warn().Err(err).Int64("similar_user_id", su.OtherUserID).
				Msg("Similar user history query failed, skipping user")
			continue
		}
		for _, ev := range events {
			if _, seen := profile.Seen[ev.ContentID]; seen {
				continue
			}
			if counts[ev.ContentID] == 0 {
				order = append(order, ev.ContentID)
			}
			counts[ev.ContentID]++
		}
	}

	topIDs := rankByFrequency(counts, order, quota)
	if len(topIDs) == 0 {
		return nil, len(similar), nil
	}

	cctx, ccancel := context.WithTimeout(ctx, e.cfg.Limits.QueryTimeout)
	defer ccancel()
	contents, err := e.content.QueryPublishedContent(cctx, ContentFilter{IDs: topIDs})
	if err != nil {
		if errors.Is(err, ErrContentStoreUnavailable) {
			return nil, len(similar), err
		}
		metrics.GeneratorDegradationsTotal.WithLabelValues("collaborative").Inc()
		e.logger.Warn().Err(err).Msg("Collaborative candidate resolution failed, degrading to empty")
		return nil, len(similar), nil
	}

	// Re-apply the frequency ranking; the catalog query does not preserve
	// input order.
	byID := make(map[int64]models.Content, len(contents))
	for _, c := range contents {
		byID[c.ID] = c
	}
	candidates := make([]Candidate, 0, len(topIDs))
	for _, id := range topIDs {
		content, ok := byID[id]
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			Content:   content,
			Source:    SourceCollaborative,
			Frequency: counts[id],
		})
	}
	return candidates, len(similar), nil
}

// rankByFrequency returns up to max content ids ordered by descending tally,
// with ties resolved by first appearance in order.
func rankByFrequency(counts map[int64]int, order []int64, max int) []int64 {
	ranked := make([]int64, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

// tagCandidates wraps catalog rows in candidates with the given provenance.
func tagCandidates(contents []models.Content, source Source) []Candidate {
	candidates := make([]Candidate, 0, len(contents))
	for _, c := range contents {
		candidates = append(candidates, Candidate{Content: c, Source: source})
	}
	return candidates
}
