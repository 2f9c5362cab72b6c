// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package recommend

import (
	"fmt"
	"time"
)

// Config holds all tunable parameters of the recommendation engine.
//
// The defaults reproduce the behavior users already know: a 60/30/10 split
// between genre, trending, and collaborative candidates, a two-rating minimum
// before a genre counts toward preferences, and a 4.0 average before it is
// preferred. They are deliberate product constants, kept configurable rather
// than hard-coded.
type Config struct {
	Quotas     QuotaConfig     `koanf:"quotas" json:"quotas"`
	Thresholds ThresholdConfig `koanf:"thresholds" json:"thresholds"`
	Limits     LimitsConfig    `koanf:"limits" json:"limits"`
	Cache      CacheConfig     `koanf:"cache" json:"cache"`
}

// QuotaConfig is the fractional split of the requested limit between the
// three candidate generators. Each generator caps its output at
// ceil(fraction * limit). Fractions may sum past 1.0; the aggregator
// truncates to the limit after deduplication.
type QuotaConfig struct {
	Genre         float64 `koanf:"genre" json:"genre"`
	Trending      float64 `koanf:"trending" json:"trending"`
	Collaborative float64 `koanf:"collaborative" json:"collaborative"`
}

// ThresholdConfig collects the scoring and preference-inference constants.
type ThresholdConfig struct {
	// MinGenreRatings is the minimum number of ratings a genre needs before
	// it participates in preference inference. Guards against
	// single-data-point bias.
	MinGenreRatings int `koanf:"min_genre_ratings" json:"min_genre_ratings"`

	// PreferredGenreRating is the average rating at which a genre becomes
	// preferred.
	PreferredGenreRating float64 `koanf:"preferred_genre_rating" json:"preferred_genre_rating"`

	// HighlyRatedRating is the average rating at which content earns the
	// "Highly rated" reason.
	HighlyRatedRating float64 `koanf:"highly_rated_rating" json:"highly_rated_rating"`

	// RecencyWindow bounds both the trending generator's catalog window and
	// the "New release" scoring bonus.
	RecencyWindow time.Duration `koanf:"recency_window" json:"recency_window"`

	// MinCommonItems is the minimum shared-watch overlap for a user to count
	// as similar.
	MinCommonItems int `koanf:"min_common_items" json:"min_common_items"`

	// TrendingViews is the view count above which content earns the
	// "Trending" reason.
	TrendingViews int64 `koanf:"trending_views" json:"trending_views"`
}

// LimitsConfig bounds per-request work.
type LimitsConfig struct {
	// HistoryLimit caps how many recent watch events feed the preference
	// profile.
	HistoryLimit int `koanf:"history_limit" json:"history_limit"`

	// DefaultLimit is used when a request does not specify a limit.
	DefaultLimit int `koanf:"default_limit" json:"default_limit"`

	// MaxLimit clamps the requested limit.
	MaxLimit int `koanf:"max_limit" json:"max_limit"`

	// QueryTimeout bounds every individual store query. A timed-out query is
	// treated as having returned no rows.
	QueryTimeout time.Duration `koanf:"query_timeout" json:"query_timeout"`
}

// CacheConfig controls the per-user response cache.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled" json:"enabled"`
	TTL        time.Duration `koanf:"ttl" json:"ttl"`
	MaxEntries int           `koanf:"max_entries" json:"max_entries"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Quotas: QuotaConfig{
			Genre:         0.6,
			Trending:      0.3,
			Collaborative: 0.1,
		},
		Thresholds: ThresholdConfig{
			MinGenreRatings:      2,
			PreferredGenreRating: 4.0,
			HighlyRatedRating:    4.5,
			RecencyWindow:        30 * 24 * time.Hour,
			MinCommonItems:       3,
			TrendingViews:        10000,
		},
		Limits: LimitsConfig{
			HistoryLimit: 50,
			DefaultLimit: 10,
			MaxLimit:     100,
			QueryTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
	}
}

// Validate checks the configuration for values that would produce a broken
// engine.
func (c *Config) Validate() error {
	if c.Quotas.Genre < 0 || c.Quotas.Genre > 1 {
		return fmt.Errorf("quotas.genre must be in [0,1], got %g", c.Quotas.Genre)
	}
	if c.Quotas.Trending < 0 || c.Quotas.Trending > 1 {
		return fmt.Errorf("quotas.trending must be in [0,1], got %g", c.Quotas.Trending)
	}
	if c.Quotas.Collaborative < 0 || c.Quotas.Collaborative > 1 {
		return fmt.Errorf("quotas.collaborative must be in [0,1], got %g", c.Quotas.Collaborative)
	}
	if c.Quotas.Genre+c.Quotas.Trending+c.Quotas.Collaborative <= 0 {
		return fmt.Errorf("quotas must not all be zero")
	}
	if c.Thresholds.MinGenreRatings < 1 {
		return fmt.Errorf("thresholds.min_genre_ratings must be positive, got %d", c.Thresholds.MinGenreRatings)
	}
	if c.Thresholds.PreferredGenreRating < 0 || c.Thresholds.PreferredGenreRating > 5 {
		return fmt.Errorf("thresholds.preferred_genre_rating must be in [0,5], got %g", c.Thresholds.PreferredGenreRating)
	}
	if c.Thresholds.HighlyRatedRating < 0 || c.Thresholds.HighlyRatedRating > 5 {
		return fmt.Errorf("thresholds.highly_rated_rating must be in [0,5], got %g", c.Thresholds.HighlyRatedRating)
	}
	if c.Thresholds.RecencyWindow <= 0 {
		return fmt.Errorf("thresholds.recency_window must be positive, got %s", c.Thresholds.RecencyWindow)
	}
	if c.Thresholds.MinCommonItems < 1 {
		return fmt.Errorf("thresholds.min_common_items must be positive, got %d", c.Thresholds.MinCommonItems)
	}
	if c.Thresholds.TrendingViews < 0 {
		return fmt.Errorf("thresholds.trending_views must not be negative, got %d", c.Thresholds.TrendingViews)
	}
	if c.Limits.HistoryLimit < 1 {
		return fmt.Errorf("limits.history_limit must be positive, got %d", c.Limits.HistoryLimit)
	}
	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= default_limit, got %d < %d", c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.QueryTimeout <= 0 {
		return fmt.Errorf("limits.query_timeout must be positive, got %s", c.Limits.QueryTimeout)
	}
	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
