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

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/models"
)

// ContentCreateRequest is the body for creating a catalog entry.
type ContentCreateRequest struct {
	Title  string   `json:"title" validate:"required,min=1,max=256"`
	Genres []string `json:"genres" validate:"max=16,dive,min=1,max=64"`
	Status string   `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// ContentStatusRequest is the body for moving an entry between statuses.
type ContentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft published archived"`
}

// ContentList returns catalog entries, optionally filtered by status.
func (h *Handler) ContentList(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", h.cfg.API.DefaultPageSize)
	if limit < 1 {
		limit = h.cfg.API.DefaultPageSize
	}
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}
	offset := getIntParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	status := models.ContentStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.StatusDraft, models.StatusPublished, models.StatusArchived:
	default:
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "status must be draft, published, or archived", nil)
		return
	}

	start := time.Now()
	items, err := h.content.ListContent(r.Context(), status, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list content", err)
		return
	}
	if items == nil {
		items = []models.Content{}
	}

	respondJSON(w, http.StatusOK, successResponse(map[string]interface{}{
		"content": items,
		"count":   len(items),
	}, time.Since(start), false))
}

// ContentGet returns a single catalog entry by id.
func (h *Handler) ContentGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a positive integer", nil)
		return
	}

	start := time.Now()
	item, err := h.content.GetContent(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch content", err)
		return
	}
	if item == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Content not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, successResponse(item, time.Since(start), false))
}

// ContentCreate adds a catalog entry. New entries default to draft status so
// they stay out of recommendations until published.
func (h *Handler) ContentCreate(w http.ResponseWriter, r *http.Request) {
	var req ContentCreateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	item := &models.Content{
		Title:  req.Title,
		Genres: req.Genres,
		Status: models.ContentStatus(req.Status),
	}

	start := time.Now()
	if err := h.content.CreateContent(r.Context(), item); err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create content", err)
		return
	}

	respondJSON(w, http.StatusCreated, successResponse(item, time.Since(start), false))
}

// ContentUpdateStatus moves an entry between draft, published, and archived.
func (h *Handler) ContentUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a positive integer", nil)
		return
	}

	var req ContentStatusRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	start := time.Now()
	ok, err := h.content.UpdateContentStatus(r.Context(), id, models.ContentStatus(req.Status))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update content status", err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Content not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, successResponse(map[string]interface{}{
		"id":     id,
		"status": req.Status,
	}, time.Since(start), false))
}
