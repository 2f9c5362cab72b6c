// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package recommend

import (
	"sort"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/models"
)

// BuildProfile derives the preference model from one user's engagement data.
//
// The already-seen set is the union of watched and watchlisted content ids.
// Genre affinity is inferred only from content the user both watched and
// rated: for every genre of such content the rating values are averaged, a
// genre needs at least minGenreRatings ratings to participate, and a genre
// whose average reaches preferredThreshold becomes preferred.
//
// genresByContent maps content id to its genre tags; callers resolve it from
// the catalog for the rated content ids. Rated content missing from the map
// simply contributes nothing.
//
// A user with no qualifying ratings gets an empty preferred-genre set, which
// downstream degrades the genre generator to an empty candidate list.
func BuildProfile(
	history []models.WatchEvent,
	watchlist []models.WatchlistEntry,
	ratings []models.Rating,
	genresByContent map[int64][]string,
	minGenreRatings int,
	preferredThreshold float64,
) Profile {
	profile := Profile{
		Seen:          make(map[int64]struct{}, len(history)+len(watchlist)),
		GenreAverages: make(map[string]float64),
		WatchedCount:  len(history),
	}

	watched := make(map[int64]struct{}, len(history))
	for _, ev := range history {
		watched[ev.ContentID] = struct{}{}
		profile.Seen[ev.ContentID] = struct{}{}
	}
	for _, entry := range watchlist {
		profile.Seen[entry.ContentID] = struct{}{}
	}

	type genreStats struct {
		sum   float64
		count int
	}
	stats := make(map[string]*genreStats)

	for _, r := range ratings {
		if _, ok := watched[r.ContentID]; !ok {
			continue
		}
		for _, genre := range genresByContent[r.ContentID] {
			s, ok := stats[genre]
			if !ok {
				s = &genreStats{}
				stats[genre] = s
			}
			s.sum += r.Value
			s.count++
		}
	}

	for genre, s := range stats {
		if s.count < minGenreRatings {
			continue
		}
		avg := s.sum / float64(s.count)
		profile.GenreAverages[genre] = avg
		if avg >= preferredThreshold {
			profile.PreferredGenres = append(profile.PreferredGenres, genre)
		}
	}
	sort.Strings(profile.PreferredGenres)

	return profile
}

// ratedWatchedContentIDs returns the distinct content ids the user both
// watched and rated, in rating order. These are the only ids whose genres the
// profile needs.
func ratedWatchedContentIDs(history []models.WatchEvent, ratings []models.Rating) []int64 {
	watched := make(map[int64]struct{}, len(history))
	for _, ev := range history {
		watched[ev.ContentID] = struct{}{}
	}

	ids := make([]int64, 0, len(ratings))
	seen := make(map[int64]struct{}, len(ratings))
	for _, r := range ratings {
		if _, ok := watched[r.ContentID]; !ok {
			continue
		}
		if _, dup := seen[r.ContentID]; dup {
			continue
		}
		seen[r.ContentID] = struct{}{}
		ids = append(ids, r.ContentID)
	}
	return ids
}
