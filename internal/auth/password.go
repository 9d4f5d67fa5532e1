// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor for password hashing. Cost 12 keeps a single
// hash around 250ms on current hardware, slow enough to blunt offline attacks
// without making login noticeably laggy.
const bcryptCost = 12

// ErrInvalidCredentials is returned when a password does not match its hash.
// Callers should surface it identically to an unknown user so login responses
// never reveal which half of the credential pair was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against a stored hash.
// bcrypt.CompareHashAndPassword is timing-safe by design.
func CheckPassword(hash, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}
