// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package recommend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/models"
)

// Human-readable recommendation reasons. String constants rather than codes:
// they are shown to the user verbatim.
const (
	ReasonFavoriteGenres = "Based on your favorite genres"
	ReasonHighlyRated    = "Highly rated"
	ReasonSimilarUsers   = "Popular among similar users"
	ReasonNewRelease     = "New release"
	ReasonTrending       = "Trending"
)

// scoreCandidate computes the deterministic score and reason list for one
// candidate:
//
//	score = 10 * |genres ∩ preferred|
//	      + 2 * average_rating
//	      + ln(max(view_count, 1))
//	      + 5 if created within the recency window
//
// Reasons are built independently of the formula. A non-finite result is
// reported as an error so the caller can drop the candidate instead of
// failing the batch.
func scoreCandidate(
	content models.Content,
	profile *Profile,
	similarUsersFound int,
	now time.Time,
	th ThresholdConfig,
) (float64, []string, error) {
	overlap := 0
	for _, g := range content.Genres {
		if profile.HasPreferredGenre(g) {
			overlap++
		}
	}

	views := content.ViewCount
	if views < 1 {
		views = 1
	}
	recent := !content.CreatedAt.Before(now.Add(-th.RecencyWindow))

	score := 10*float64(overlap) + 2*content.AverageRating + math.Log(float64(views))
	if recent {
		score += 5
	}

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, nil, fmt.Errorf("score candidate %d: non-finite score", content.ID)
	}

	var reasons []string
	if overlap > 0 {
		reasons = append(reasons, ReasonFavoriteGenres)
	}
	if content.AverageRating >= th.HighlyRatedRating {
		reasons = append(reasons, ReasonHighlyRated)
	}
	if similarUsersFound > 0 {
		reasons = append(reasons, ReasonSimilarUsers)
	}
	if recent {
		reasons = append(reasons, ReasonNewRelease)
	}
	if content.ViewCount > th.TrendingViews {
		reasons = append(reasons, ReasonTrending)
	}

	return score, reasons, nil
}

// scoreAndRank scores every candidate, drops the ones that fail, and sorts by
// score descending. Ties keep the aggregator's original order; the sort is
// stable and nothing is re-queried.
func (e *Engine) scoreAndRank(
	candidates []Candidate,
	profile *Profile,
	similarUsersFound int,
	now time.Time,
) []models.Recommendation {
	ranked := make([]models.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		score, reasons, err := scoreCandidate(c.Content, profile, similarUsersFound, now, e.cfg.Thresholds)
		if err != nil {
			e.logger.Warn().Err(err).Int64("content_id", c.Content.ID).
				Msg("Dropping candidate that failed scoring")
			continue
		}
		ranked = append(ranked, models.Recommendation{
			ID:            c.Content.ID,
			Title:         c.Content.Title,
			Genres:        c.Content.Genres,
			AverageRating: c.Content.AverageRating,
			ViewCount:     c.Content.ViewCount,
			CreatedAt:     c.Content.CreatedAt,
			Score:         score,
			Reasons:       reasons,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
