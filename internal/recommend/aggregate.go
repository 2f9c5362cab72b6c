// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package recommend

// aggregate concatenates the candidate lists in the fixed order genre,
// trending, collaborative, deduplicates by content id keeping the first
// occurrence, and truncates to limit.
//
// First-occurrence dedup means a genre match is never downgraded to a
// collaborative provenance; scoring layers every applicable reason on
// afterwards regardless of provenance.
func aggregate(genre, trending, collaborative []Candidate, limit int) []Candidate {
	merged := make([]Candidate, 0, len(genre)+len(trending)+len(collaborative))
	seen := make(map[int64]struct{}, limit)

	for _, list := range [][]Candidate{genre, trending, collaborative} {
		for _, c := range list {
			if _, dup := seen[c.Content.ID]; dup {
				continue
			}
			seen[c.Content.ID] = struct{}{}
			merged = append(merged, c)
			if len(merged) == limit {
				return merged
			}
		}
	}
	return merged
}
