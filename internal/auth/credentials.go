// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Role values carried in JWT claims.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// CredentialStore verifies the single admin credential pair. The
// password is bcrypt-hashed at initialization so no plaintext is held
// and no hashing cost is paid on the failure path.
type CredentialStore struct {
	username     string
	passwordHash []byte
}

// NewCredentialStore hashes the admin password and returns the store.
func NewCredentialStore(username, password string, bcryptCost int) (*CredentialStore, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters for security")
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &CredentialStore{
		username:     username,
		passwordHash: hash,
	}, nil
}

// Verify checks a credential pair and returns the role on success.
// Both comparisons always run so response timing does not reveal
// whether the username exists.
func (s *CredentialStore) Verify(username, password string) (string, bool) {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil

	if usernameMatch && passwordMatch {
		return RoleAdmin, true
	}
	return "", false
}
