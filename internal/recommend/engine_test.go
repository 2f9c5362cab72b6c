// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package recommend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/models"
)

// testNow is the fixed wall clock used by every engine test.
var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

// mockContentStore implements ContentStore over an in-memory catalog,
// honoring every ContentFilter field the engine uses.
type mockContentStore struct {
	mu      sync.Mutex
	catalog []models.Content
	err     error
	calls   int32
}

func (m *mockContentStore) QueryPublishedContent(ctx context.Context, filter ContentFilter) ([]models.Content, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idSet := make(map[int64]struct{}, len(filter.IDs))
	for _, id := range filter.IDs {
		idSet[id] = struct{}{}
	}

	var result []models.Content
	for _, c := range m.catalog {
		if !c.IsPublished() {
			continue
		}
		if len(idSet) > 0 {
			if _, ok := idSet[c.ID]; !ok {
				continue
			}
		}
		if _, excluded := filter.Exclude[c.ID]; excluded {
			continue
		}
		if len(filter.Genres) > 0 && !genresIntersect(c.Genres, filter.Genres) {
			continue
		}
		if !filter.CreatedAfter.IsZero() && c.CreatedAt.Before(filter.CreatedAfter) {
			continue
		}
		result = append(result, c)
	}

	switch filter.OrderBy {
	case OrderByViews:
		sort.SliceStable(result, func(i, j int) bool { return result[i].ViewCount > result[j].ViewCount })
	case OrderByRecency:
		sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	case OrderByRating, "":
		sort.SliceStable(result, func(i, j int) bool { return result[i].AverageRating > result[j].AverageRating })
	}

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func genresIntersect(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// mockEngagementStore implements EngagementStore with per-method data and
// error injection.
type mockEngagementStore struct {
	history   map[int64][]models.WatchEvent
	watchlist map[int64][]models.WatchlistEntry
	ratings   map[int64][]models.Rating
	similar   map[int64][]models.SimilarUser

	historyErr   error
	watchlistErr error
	ratingsErr   error
	similarErr   error
}

func (m *mockEngagementStore) FetchRecentWatchHistory(ctx context.Context, userID int64, limit int) ([]models.WatchEvent, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	events := m.history[userID]
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (m *mockEngagementStore) FetchWatchlist(ctx context.Context, userID int64) ([]models.WatchlistEntry, error) {
	if m.watchlistErr != nil {
		return nil, m.watchlistErr
	}
	return m.watchlist[userID], nil
}

func (m *mockEngagementStore) FetchRatings(ctx context.Context, userID int64) ([]models.Rating, error) {
	if m.ratingsErr != nil {
		return nil, m.ratingsErr
	}
	return m.ratings[userID], nil
}

func (m *mockEngagementStore) FetchSimilarUsers(ctx context.Context, userID int64, minCommon int) ([]models.SimilarUser, error) {
	if m.similarErr != nil {
		return nil, m.similarErr
	}
	return m.similar[userID], nil
}

func emptyEngagement() *mockEngagementStore {
	return &mockEngagementStore{
		history:   map[int64][]models.WatchEvent{},
		watchlist: map[int64][]models.WatchlistEntry{},
		ratings:   map[int64][]models.Rating{},
		similar:   map[int64][]models.SimilarUser{},
	}
}

// published builds a published catalog entry.
func published(id int64, title string, genres []string, rating float64, views int64, createdAt time.Time) models.Content {
	return models.Content{
		ID:            id,
		Title:         title,
		Genres:        genres,
		AverageRating: rating,
		ViewCount:     views,
		CreatedAt:     createdAt,
		Status:        models.StatusPublished,
	}
}

func newTestEngine(t *testing.T, content ContentStore, engagement EngagementStore, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}
	engine, err := NewEngine(cfg, content, engagement, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	engine.now = func() time.Time { return testNow }
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	content := &mockContentStore{}
	engagement := emptyEngagement()

	tests := []struct {
		name       string
		cfg        *Config
		content    ContentStore
		engagement EngagementStore
		wantErr    bool
	}{
		{"nil config uses defaults", nil, content, engagement, false},
		{"valid default config", DefaultConfig(), content, engagement, false},
		{
			"invalid config returns error",
			&Config{Quotas: QuotaConfig{Genre: 2}},
			content, engagement, true,
		},
		{"missing content store", DefaultConfig(), nil, engagement, true},
		{"missing engagement store", DefaultConfig(), content, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.cfg, tt.content, tt.engagement, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Errorf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecommendRejectsBadRequests(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, &mockContentStore{}, emptyEngagement(), nil)

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"zero user id", Request{UserID: 0, Limit: 10}, ErrUnauthenticated},
		{"negative user id", Request{UserID: -1, Limit: 10}, ErrUnauthenticated},
		{"zero limit", Request{UserID: 1, Limit: 0}, ErrInvalidLimit},
		{"negative limit", Request{UserID: 1, Limit: -5}, ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Recommend(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Recommend() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Scenario: a user with no watch history and no ratings gets only trending
// candidates and never a favorite-genres reason.
func TestRecommendColdStartUser(t *testing.T) {
	t.Parallel()

	recent := testNow.Add(-24 * time.Hour)
	old := testNow.Add(-90 * 24 * time.Hour)
	content := &mockContentStore{catalog: []models.Content{
		published(1, "Fresh Hit", []string{"Action"}, 4.0, 9000, recent),
		published(2, "Fresh Indie", []string{"Drama"}, 3.5, 4000, recent),
		published(3, "Fresh Doc", []string{"Documentary"}, 4.2, 2000, recent),
		published(4, "Back Catalog", []string{"Action"}, 4.9, 90000, old),
	}}

	engine := newTestEngine(t, content, emptyEngagement(), nil)
	resp, err := engine.Recommend(context.Background(), Request{UserID: 1, Limit: 10})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(resp.Metadata.UserPreferences.PreferredGenres) != 0 {
		t.Errorf("expected no preferred genres, got %v", resp.Metadata.UserPreferences.PreferredGenres)
	}

	// Trending quota = ceil(0.3 * 10) = 3, the three recent items.
	if len(resp.Recommendations) != 3 {
		t.Fatalf("expected 3 trending recommendations, got %d", len(resp.Recommendations))
	}
	for _, rec := range resp.Recommendations {
		if rec.ID == 4 {
			t.Error("content outside the recency window must not appear for a cold-start user")
		}
		for _, reason := range rec.Reasons {
			if reason == ReasonFavoriteGenres {
				t.Errorf("cold-start user got %q reason on content %d", reason, rec.ID)
			}
		}
	}
}

// Scenario: a user who watched and rated three thrillers [5,4,5] prefers
// Thriller, and the genre quota fills with unseen thriller content.
func TestRecommendGenreAffinity(t *testing.T) {
	t.Parallel()

	old := testNow.Add(-60 * 24 * time.Hour)
	catalog := []models.Content{
		published(1, "Seen Thriller A", []string{"Thriller"}, 4.8, 100, old),
		published(2, "Seen Thriller B", []string{"Thriller"}, 4.1, 150, old),
		published(3, "Seen Thriller C", []string{"Thriller"}, 4.6, 220, old),
	}
	// Six unseen thrillers, enough to fill ceil(0.6*10).
	for i := int64(0); i < 6; i++ {
		catalog = append(catalog, published(10+i, fmt.Sprintf("Thriller %d", i),
			[]string{"Thriller"}, 4.0+float64(i)*0.1, 500, old))
	}
	content := &mockContentStore{catalog: catalog}

	engagement := emptyEngagement()
	engagement.history[7] = []models.WatchEvent{
		{UserID: 7, ContentID: 1, WatchedAt: old},
		{UserID: 7, ContentID: 2, WatchedAt: old},
		{UserID: 7, ContentID: 3, WatchedAt: old},
	}
	engagement.ratings[7] = []models.Rating{
		{UserID: 7, ContentID: 1, Value: 5},
		{UserID: 7, ContentID: 2, Value: 4},
		{UserID: 7, ContentID: 3, Value: 5},
	}

	engine := newTestEngine(t, content, engagement, nil)
	resp, err := engine.Recommend(context.Background(), Request{UserID: 7, Limit: 10})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	wantGenres := []string{"Thriller"}
	if !reflect.DeepEqual(resp.Metadata.UserPreferences.PreferredGenres, wantGenres) {
		t.Errorf("preferred genres = %v, want %v", resp.Metadata.UserPreferences.PreferredGenres, wantGenres)
	}
	if resp.Metadata.UserPreferences.WatchedContentCount != 3 {
		t.Errorf("watched count = %d, want 3", resp.Metadata.UserPreferences.WatchedContentCount)
	}

	thrillers := 0
	for _, rec := range resp.Recommendations {
		if rec.ID <= 3 {
			t.Errorf("already watched content %d in output", rec.ID)
		}
		for _, g := range rec.Genres {
			if g == "Thriller" {
				thrillers++
				break
			}
		}
	}
	if thrillers < 6 {
		t.Errorf("expected at least 6 thriller slots (genre quota), got %d", thrillers)
	}
}

// Scenario: no similar users means zero collaborative candidates and a
// shorter list, never an error.
func TestRecommendNoSimilarUsers(t *testing.T) {
	t.Parallel()

	recent := testNow.Add(-2 * 24 * time.Hour)
	content := &mockContentStore{catalog: []models.Content{
		published(1, "Only Trend", []string{"Drama"}, 3.0, 500, recent),
	}}

	engine := newTestEngine(t, content, emptyEngagement(), nil)
	resp, err := engine.Recommend(context.Background(), Request{UserID: 9, Limit: 10})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if resp.Metadata.UserPreferences.SimilarUsersFound != 0 {
		t.Errorf("similar users = %d, want 0", resp.Metadata.UserPreferences.SimilarUsersFound)
	}
	if len(resp.Recommendations) != 1 {
		t.Errorf("expected a short list of 1, got %d", len(resp.Recommendations))
	}
	for _, rec := range resp.Recommendations {
		for _, reason := range rec.Reasons {
			if reason == ReasonSimilarUsers {
				t.Errorf("got %q reason with no similar users", reason)
			}
		}
	}
}

// Scenario: equal scores keep aggregation order, a genre candidate before a
// trending candidate.
func TestRecommendStableTieBreak(t *testing.T) {
	t.Parallel()

	recent := testNow.Add(-24 * time.Hour)
	old := testNow.Add(-60 * 24 * time.Hour)
	content := &mockContentStore{catalog: []models.Content{
		// Genre candidate: overlap 1, rating 0, recent.
		// score = 10 + 0 + ln(100) + 5
		published(20, "Genre Pick", []string{"Horror"}, 0, 100, recent),
		// Trending candidate: overlap 0, rating 5, recent, same views.
		// score = 0 + 10 + ln(100) + 5
		published(21, "Trend Pick", []string{"Comedy"}, 5, 100, recent),
		// Rated horror titles establishing the preference.
		published(30, "Seen Horror A", []string{"Horror"}, 4.5, 10, old),
		published(31, "Seen Horror B", []string{"Horror"}, 4.5, 10, old),
	}}

	engagement := emptyEngagement()
	engagement.history[5] = []models.WatchEvent{
		{UserID: 5, ContentID: 30, WatchedAt: old},
		{UserID: 5, ContentID: 31, WatchedAt: old},
	}
	engagement.ratings[5] = []models.Rating{
		{UserID: 5, ContentID: 30, Value: 5},
		{UserID: 5, ContentID: 31, Value: 4},
	}

	engine := newTestEngine(t, content, engagement, nil)
	resp, err := engine.Recommend(context.Background(), Request{UserID: 5, Limit: 10})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	genreIdx, trendIdx := -1, -1
	for i, rec := range resp.Recommendations {
		switch rec.ID {
		case 20:
			genreIdx = i
		case 21:
			trendIdx = i
		}
	}
	if genreIdx == -1 || trendIdx == -1 {
		t.Fatalf("expected both tie candidates in output, got %+v", resp.Recommendations)
	}
	if resp.Recommendations[genreIdx].Score != resp.Recommendations[trendIdx].Score {
		t.Fatalf("test setup broken: scores differ, %g vs %g",
			resp.Recommendations[genreIdx].Score, resp.Recommendations[trendIdx].Score)
	}
	if genreIdx > trendIdx {
		t.Errorf("genre candidate at %d must precede equal-score trending candidate at %d", genreIdx, trendIdx)
	}
}

func TestRecommendCollaborative(t *testing.T) {
	t.Parallel()

	old := testNow.Add(-90 * 24 * time.Hour)
	content := &mockContentStore{catalog: []models.Content{
		published(1, "Target Watched", []string{"Drama"}, 4.0, 50, old),
		published(40, "Crowd Favorite", []string{"Drama"}, 4.0, 800, old),
		published(41, "Niche Pick", []string{"Drama"}, 3.5, 300, old),
	}}

	engagement := emptyEngagement()
	engagement.history[1] = []models.WatchEvent{{UserID: 1, ContentID: 1, WatchedAt: old}}
	engagement.similar[1] = []models.SimilarUser{
		{OtherUserID: 2, CommonItems: 4},
		{OtherUserID: 3, CommonItems: 3},
	}
	// Both similar users watched 40; only one watched 41. 40 must win the
	// single collaborative slot (ceil(0.1*10) = 1).
	engagement.history[2] = []models.WatchEvent{
		{UserID: 2, ContentID: 40, WatchedAt: old},
		{UserID: 2, ContentID: 1, WatchedAt: old},
	}
	engagement.history[3] = []models.WatchEvent{
		{UserID: 3, ContentID: 41, WatchedAt: old},
		{UserID: 3, ContentID: 40, WatchedAt: old},
	}

	engine := newTestEngine(t, content, engagement, nil)
	resp, err := engine.Recommend(context.Background(), Request{UserID: 1, Limit: 10})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if resp.Metadata.UserPreferences.SimilarUsersFound != 2 {
		t.Errorf("similar users = %d, want 2", resp.Metadata.UserPreferences.SimilarUsersFound)
	}

	var found40, found41 bool
	for _, rec := range resp.Recommendations {
		if rec.ID == 40 {
			found40 = true
		}
		if rec.ID == 41 {
			found41 = true
		}
		if rec.ID == 1 {
			t.Error("target's watched content resurfaced through collaborative path")
		}
	}
	if !found40 {
		t.Error("top-frequency collaborative candidate missing from output")
	}
	if found41 {
		t.Error("collaborative quota exceeded: low-frequency candidate present")
	}

	for _, rec := range resp.Recommendations {
		if rec.ID == 40 {
			hasReason := false
			for _, reason := range rec.Reasons {
				if reason == ReasonSimilarUsers {
					hasReason = true
				}
			}
			if !hasReason {
				t.Errorf("expected %q reason on collaborative candidate, got %v", ReasonSimilarUsers, rec.Reasons)
			}
		}
	}
}

func TestRecommendInvariants(t *testing.T) {
	t.Parallel()

	recent := testNow.Add(-24 * time.Hour)
	old := testNow.Add(-60 * 24 * time.Hour)
	var catalog []models.Content
	for i := int64(1); i <= 30; i++ {
		createdAt := old
		if i%2 == 0 {
			createdAt = recent
		}
		genre := "Drama"
		if i%3 == 0 {
			genre = "Action"
		}
		catalog = append(catalog, published(i, fmt.Sprintf("Title %d", i),
			[]string{genre}, float64(i%5)+0.5, i*100, createdAt))
	}
	content := &mockContentStore{catalog: catalog}

	engagement := emptyEngagement()
	engagement.history[1] = []models.WatchEvent{
		{UserID: 1, ContentID: 3, WatchedAt: old},
		{UserID: 1, ContentID: 6, WatchedAt: old},
	}
	engagement.ratings[1] = []models.Rating{
		{UserID: 1, ContentID: 3, Value: 5},
		{UserID: 1, ContentID: 6, Value: 5},
	}
	engagement.watchlist[1] = []models.WatchlistEntry{{UserID: 1, ContentID: 9}}
	engagement.similar[1] = []models.SimilarUser{{OtherUserID: 2, CommonItems: 3}}
	engagement.history[2] = []models.WatchEvent{
		{UserID: 2, ContentID: 12, WatchedAt: old},
		{UserID: 2, ContentID: 3, WatchedAt: old},
	}

	engine := newTestEngine(t, content, engagement, nil)

	for _, limit := range []int{1, 5, 10} {
		resp, err := engine.Recommend(context.Background(), Request{UserID: 1, Limit: limit})
		if err != nil {
			t.Fatalf("Recommend(limit=%d): %v", limit, err)
		}

		if len(resp.Recommendations) > limit {
			t.Errorf("limit %d exceeded: %d results", limit, len(resp.Recommendations))
		}
		if resp.Metadata.Total != len(resp.Recommendations) {
			t.Errorf("metadata total %d != len %d", resp.Metadata.Total, len(resp.Recommendations))
		}

		seen := map[int64]bool{3: true, 6: true, 9: true}
		ids := make(map[int64]bool)
		for _, rec := range resp.Recommendations {
			if seen[rec.ID] {
				t.Errorf("already-seen content %d in output (limit %d)", rec.ID, limit)
			}
			if ids[rec.ID] {
				t.Errorf("duplicate content %d in output (limit %d)", rec.ID, limit)
			}
			ids[rec.ID] = true
		}

		for i := 1; i < len(resp.Recommendations); i++ {
			if resp.Recommendations[i].Score > resp.Recommendations[i-1].Score {
				t.Errorf("output not sorted by score: %g before %g",
					resp.Recommendations[i-1].Score, resp.Recommendations[i].Score)
			}
		}
	}
}

func TestRecommendIdempotent(t *testing.T) {
	t.Parallel()

	recent := testNow.Add(-24 * time.Hour)
	content := &mockContentStore{catalog: []models.Content{
		published(1, "A", []string{"Drama"}, 4.0, 1000, recent),
		published(2, "B", []string{"Action"}, 4.5, 2000, recent),
		published(3, "C", []string{"Drama"}, 3.0, 3000, recent),
	}}

	engine := newTestEngine(t, content, emptyEngagement(), nil)

	first, err := engine.Recommend(context.Background(), Request{UserID: 4, Limit: 10})
	if err != nil {
		t.Fatalf("first Recommend: %v", err)
	}
	second, err := engine.Recommend(context.Background(), Request{UserID: 4, Limit: 10})
	if err != nil {
		t.Fatalf("second Recommend: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different outputs:\n%+v\n%+v", first, second)
	}
}

func TestRecommendEngagementStoreDegradation(t *testing.T) {
	t.Parallel()

	recent := testNow.Add(-24 * time.Hour)
	catalog := []models.Content{
		published(1, "Still Here", []string{"Drama"}, 4.0, 1000, recent),
	}

	tests := []struct {
		name   string
		mutate func(*mockEngagementStore)
	}{
		{"history failure", func(m *mockEngagementStore) { m.historyErr = errors.New("db down") }},
		{"watchlist failure", func(m *mockEngagementStore) { m.watchlistErr = errors.New("db down") }},
		{"ratings failure", func(m *mockEngagementStore) { m.ratingsErr = errors.New("db down") }},
		{"similarity failure", func(m *mockEngagementStore) { m.similarErr = errors.New("db down") }},
		{"everything failing", func(m *mockEngagementStore) {
			m.historyErr = errors.New("db down")
			m.watchlistErr = errors.New("db down")
			m.ratingsErr = errors.New("db down")
			m.similarErr = errors.New("db down")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engagement := emptyEngagement()
			tt.mutate(engagement)
			engine := newTestEngine(t, &mockContentStore{catalog: catalog}, engagement, nil)

			resp, err := engine.Recommend(context.Background(), Request{UserID: 1, Limit: 10})
			if err != nil {
				t.Fatalf("engagement failure must degrade, not error: %v", err)
			}
			if len(resp.Recommendations) == 0 {
				t.Error("trending candidates should survive engagement-store failures")
			}
		})
	}
}

func TestRecommendContentStoreUnavailableIsFatal(t *testing.T) {
	t.Parallel()

	content := &mockContentStore{err: fmt.Errorf("open catalog: %w", ErrContentStoreUnavailable)}
	engine := newTestEngine(t, content, emptyEngagement(), nil)

	_, err := engine.Recommend(context.Background(), Request{UserID: 1, Limit: 10})
	if !errors.Is(err, ErrContentStoreUnavailable) {
		t.Errorf("Recommend() error = %v, want ErrContentStoreUnavailable", err)
	}
}

func TestRecommendContentQueryErrorDegrades(t *testing.T) {
	t.Parallel()

	// A non-availability content error shrinks the pool instead of failing.
	content := &mockContentStore{err: errors.New("syntax error")}
	engine := newTestEngine(t, content, emptyEngagement(), nil)

	resp, err := engine.Recommend(context.Background(), Request{UserID: 1, Limit: 10})
	if err != nil {
		t.Fatalf("transient content error must degrade, got %v", err)
	}
	if len(resp.Recommendations) != 0 {
		t.Errorf("expected empty result, got %d", len(resp.Recommendations))
	}
}

func TestRecommendLimitClamped(t *testing.T) {
	t.Parallel()

	recent := testNow.Add(-24 * time.Hour)
	var catalog []models.Content
	for i := int64(1); i <= 200; i++ {
		catalog = append(catalog, published(i, fmt.Sprintf("T%d", i), []string{"Drama"}, 3.0, i, recent))
	}
	engine := newTestEngine(t, &mockContentStore{catalog: catalog}, emptyEngagement(), nil)

	resp, err := engine.Recommend(context.Background(), Request{UserID: 1, Limit: 5000})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Recommendations) > DefaultConfig().Limits.MaxLimit {
		t.Errorf("limit clamp failed: %d results", len(resp.Recommendations))
	}
}

func TestRecommendCache(t *testing.T) {
	t.Parallel()

	recent := testNow.Add(-24 * time.Hour)
	content := &mockContentStore{catalog: []models.Content{
		published(1, "Cached", []string{"Drama"}, 4.0, 1000, recent),
	}}
	engine := newTestEngine(t, content, emptyEngagement(), func(cfg *Config) {
		cfg.Cache.Enabled = true
	})

	first, err := engine.Recommend(context.Background(), Request{UserID: 1, Limit: 10})
	if err != nil {
		t.Fatalf("first Recommend: %v", err)
	}
	if first.Cached {
		t.Error("first response reported Cached")
	}
	callsAfterFirst := atomic.LoadInt32(&content.calls)

	second, err := engine.Recommend(context.Background(), Request{UserID: 1, Limit: 10})
	if err != nil {
		t.Fatalf("second Recommend: %v", err)
	}
	if !second.Cached {
		t.Error("second response did not report Cached")
	}
	if calls := atomic.LoadInt32(&content.calls); calls != callsAfterFirst {
		t.Errorf("cached request hit the store: %d -> %d calls", callsAfterFirst, calls)
	}

	engine.InvalidateUser(1)
	fresh, err := engine.Recommend(context.Background(), Request{UserID: 1, Limit: 10})
	if err != nil {
		t.Fatalf("post-invalidation Recommend: %v", err)
	}
	if fresh.Cached {
		t.Error("post-invalidation response reported Cached")
	}
	if calls := atomic.LoadInt32(&content.calls); calls == callsAfterFirst {
		t.Error("invalidation did not force a recomputation")
	}
}

func TestRecommendConcurrentRequests(t *testing.T) {
	t.Parallel()

	recent := testNow.Add(-24 * time.Hour)
	content := &mockContentStore{catalog: []models.Content{
		published(1, "Shared", []string{"Drama"}, 4.0, 1000, recent),
	}}
	engine := newTestEngine(t, content, emptyEngagement(), func(cfg *Config) {
		cfg.Cache.Enabled = true
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			if _, err := engine.Recommend(context.Background(), Request{UserID: userID, Limit: 10}); err != nil {
				t.Errorf("concurrent Recommend(user=%d): %v", userID, err)
			}
		}(int64(i%5 + 1))
	}
	wg.Wait()
}
