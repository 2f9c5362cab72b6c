// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package api

import (
	"net/http"
	"time"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/models"
)

// Login authenticates with the configured credentials and returns a JWT,
// both in the response body and as an HTTP-only cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if h.cfg.Security.AuthMode != "jwt" {
		respondError(w, http.StatusForbidden, "AUTH_DISABLED", "Authentication is disabled", nil)
		return
	}
	if h.jwtManager == nil || h.credentials == nil || !h.credentials.Enabled() {
		respondError(w, http.StatusInternalServerError, "AUTH_NOT_CONFIGURED", "Login is not configured", nil)
		return
	}

	userID, role, err := h.credentials.Check(req.Username, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return
	}

	token, err := h.jwtManager.GenerateToken(userID, req.Username, role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Failed to generate authentication token", err)
		return
	}

	expiresAt := time.Now().Add(h.jwtManager.SessionTimeout())

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			Username:  req.Username,
			Role:      role,
			UserID:    userID,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
