// StreamHub - Streaming Media Recommendation Backend
// Copyright 2026 Carlos J. Chiles (CarlosJChileS)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CarlosJChileS/streamhub-unified-sub000

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/CarlosJChileS/streamhub-unified-sub000/internal/config"
)

// adminUserID is the principal id issued to the configured admin account.
const adminUserID int64 = 1

// CredentialChecker validates login credentials against the configured
// admin account.
type CredentialChecker struct {
	username []byte
	password []byte
	enabled  bool
}

// NewCredentialChecker builds a checker from the security configuration.
// When no credentials are configured the login endpoint is disabled.
func NewCredentialChecker(cfg *config.SecurityConfig) *CredentialChecker {
	enabled := cfg.AdminUsername != "" && cfg.AdminPassword != ""
	return &CredentialChecker{
		username: hashCredential(cfg.AdminUsername),
		password: hashCredential(cfg.AdminPassword),
		enabled:  enabled,
	}
}

// Enabled reports whether login is configured at all.
func (c *CredentialChecker) Enabled() bool {
	return c.enabled
}

// Check validates a username/password pair in constant time. Both fields are
// always compared so a mismatch on either takes the same time.
func (c *CredentialChecker) Check(username, password string) (int64, string, error) {
	if !c.enabled {
		return 0, "", fmt.Errorf("login is not configured")
	}

	userMatch := subtle.ConstantTimeCompare(c.username, hashCredential(username))
	passMatch := subtle.ConstantTimeCompare(c.password, hashCredential(password))
	if userMatch&passMatch != 1 {
		return 0, "", fmt.Errorf("invalid credentials")
	}
	return adminUserID, "admin", nil
}

// hashCredential fixes the compared length so ConstantTimeCompare does not
// leak credential length.
func hashCredential(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}
