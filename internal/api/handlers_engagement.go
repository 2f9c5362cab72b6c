// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/auth"
	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/models"
)

// authorizeUserWrite rejects requests acting on behalf of a different user.
// The admin role may write for anyone. Returns false after responding.
func (h *Handler) authorizeUserWrite(w http.ResponseWriter, r *http.Request, userID int64) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		// Auth mode "none": no claims to check.
		return true
	}
	if claims.Role != "admin" && claims.UserID != userID {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "Cannot act on behalf of another user", nil)
		return false
	}
	return true
}

// WatchEventCreate records a watch event and bumps the content's view count.
// Fresh engagement invalidates the user's cached recommendations.
func (h *Handler) WatchEventCreate(w http.ResponseWriter, r *http.Request) {
	var req models.WatchEventRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if !h.authorizeUserWrite(w, r, req.UserID) {
		return
	}

	start := time.Now()
	err := h.engagement.RecordWatchEvent(r.Context(), models.WatchEvent{
		UserID:    req.UserID,
		ContentID: req.ContentID,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record watch event", err)
		return
	}

	h.engine.InvalidateUser(req.UserID)

	respondJSON(w, http.StatusCreated, successResponse(map[string]interface{}{
		"user_id":    req.UserID,
		"content_id": req.ContentID,
	}, time.Since(start), false))
}

// RatingCreate records or replaces a rating and recomputes the content's
// aggregate rating.
func (h *Handler) RatingCreate(w http.ResponseWriter, r *http.Request) {
	var req models.RatingRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if !h.authorizeUserWrite(w, r, req.UserID) {
		return
	}

	start := time.Now()
	err := h.engagement.UpsertRating(r.Context(), models.Rating{
		UserID:    req.UserID,
		ContentID: req.ContentID,
		Value:     req.Value,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record rating", err)
		return
	}

	h.engine.InvalidateUser(req.UserID)

	respondJSON(w, http.StatusCreated, successResponse(map[string]interface{}{
		"user_id":    req.UserID,
		"content_id": req.ContentID,
		"value":      req.Value,
	}, time.Since(start), false))
}

// WatchlistAdd puts a content item on the user's watchlist.
func (h *Handler) WatchlistAdd(w http.ResponseWriter, r *http.Request) {
	var req models.WatchlistRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if !h.authorizeUserWrite(w, r, req.UserID) {
		return
	}

	start := time.Now()
	err := h.engagement.AddWatchlistEntry(r.Context(), models.WatchlistEntry{
		UserID:    req.UserID,
		ContentID: req.ContentID,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to add watchlist entry", err)
		return
	}

	h.engine.InvalidateUser(req.UserID)

	respondJSON(w, http.StatusCreated, successResponse(map[string]interface{}{
		"user_id":    req.UserID,
		"content_id": req.ContentID,
	}, time.Since(start), false))
}

// WatchlistGet returns a user's watchlist.
func (h *Handler) WatchlistGet(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "userID must be a positive integer", nil)
		return
	}
	if !h.authorizeUserWrite(w, r, userID) {
		return
	}

	start := time.Now()
	entries, err := h.engagement.FetchWatchlist(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch watchlist", err)
		return
	}
	if entries == nil {
		entries = []models.WatchlistEntry{}
	}

	respondJSON(w, http.StatusOK, successResponse(map[string]interface{}{
		"watchlist": entries,
		"count":     len(entries),
	}, time.Since(start), false))
}

// WatchlistRemove deletes a watchlist entry.
func (h *Handler) WatchlistRemove(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "userID must be a positive integer", nil)
		return
	}
	contentID, err := strconv.ParseInt(chi.URLParam(r, "contentID"), 10, 64)
	if err != nil || contentID <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "contentID must be a positive integer", nil)
		return
	}
	if !h.authorizeUserWrite(w, r, userID) {
		return
	}

	start := time.Now()
	removed, err := h.engagement.RemoveWatchlistEntry(r.Context(), userID, contentID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to remove watchlist entry", err)
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Watchlist entry not found", nil)
		return
	}

	h.engine.InvalidateUser(userID)

	respondJSON(w, http.StatusOK, successResponse(map[string]interface{}{
		"user_id":    userID,
		"content_id": contentID,
	}, time.Since(start), false))
}
