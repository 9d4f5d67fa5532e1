// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package models

import "time"

// User is an account record. PasswordHash is a bcrypt hash and is never
// serialized to JSON.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the account-creation payload.
//
// Passwords are transmitted in plaintext (HTTPS required) and hashed with
// bcrypt before storage; the minimum length matches the hasher's policy.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the credential payload for session or JWT login. Login
// accepts either a username or an email address.
type LoginRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginResponse is returned on successful login. Token carries the signed
// JWT in jwt mode and is empty in session mode, where the session ID is set
// as an HTTP-only cookie instead.
type LoginResponse struct {
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
}
