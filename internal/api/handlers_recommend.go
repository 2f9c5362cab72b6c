// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/auth"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/recommend"
)

// Recommendations computes personalized recommendations for the user in the
// path. Users may only read their own recommendations; the admin role may
// read anyone's.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Invalid user id", nil)
		return
	}

	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		if claims.Role != "admin" && claims.UserID != userID {
			respondError(w, http.StatusForbidden, "FORBIDDEN", "Cannot read another user's recommendations", nil)
			return
		}
	}

	limit := h.engine.Config().Limits.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be an integer", nil)
			return
		}
		limit = parsed
	}

	start := time.Now()
	result, err := h.engine.Recommend(r.Context(), recommend.Request{
		UserID: userID,
		Limit:  limit,
	})
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrUnauthenticated):
			respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Invalid user id", nil)
		case errors.Is(err, recommend.ErrInvalidLimit):
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be positive", nil)
		case errors.Is(err, recommend.ErrContentStoreUnavailable):
			respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Content catalog is unavailable", err)
		default:
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute recommendations", err)
		}
		return
	}

	elapsed := time.Since(start)
	if result.Cached {
		elapsed = 0
	}
	respondJSON(w, http.StatusOK, successResponse(result, elapsed, result.Cached))
}
