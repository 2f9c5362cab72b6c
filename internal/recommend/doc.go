// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

// Package recommend implements the per-request recommendation engine.
//
// # Pipeline
//
// Each request runs the same stateless pipeline:
//
//  1. Preference profile: the user's recent watch history, watchlist, and
//     ratings are folded into a set of already-seen content ids and a
//     per-genre average rating. Genres with at least Thresholds.MinGenreRatings
//     ratings and an average of Thresholds.PreferredGenreRating or better
//     become the user's preferred genres.
//  2. Candidate generation: three independent generators run concurrently.
//     The genre generator pulls published content overlapping the preferred
//     genres ordered by rating; the trending generator pulls recently created
//     content ordered by view count; the collaborative generator tallies what
//     similar users watched and keeps the most frequent items. Each generator
//     is bounded by a fractional quota of the requested limit.
//  3. Aggregation: candidate lists are concatenated genre, trending,
//     collaborative, deduplicated keeping the first occurrence, and truncated
//     to the requested limit.
//  4. Scoring: every surviving candidate receives a deterministic score and a
//     list of human-readable reasons, then the list is sorted by score with
//     ties resolved by aggregation order.
//
// # Degradation
//
// Engagement and similarity store failures (including query timeouts) reduce
// the affected generator to an empty candidate list; the request still
// succeeds with fewer results. Only an unavailable content store aborts a
// request, since without a catalog there is nothing to recommend.
//
// # Concurrency
//
// The engine holds no per-request mutable state, so any number of requests
// may run concurrently. Within one request the generators share nothing and
// join before aggregation. The only engine-owned state is the TTL response
// cache, guarded by its own mutex.
package recommend
