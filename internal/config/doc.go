// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

// Package config provides centralized configuration management using
// Koanf v2 with layered sources.
//
// # Loading Order
//
// Configuration is loaded in three layers, later layers overriding earlier
// ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML config file (CONFIG_PATH or well-known paths)
//  3. Environment variables (explicit name mapping, see envTransformFunc)
//
// A .env file in the working directory, when present, is loaded into the
// process environment before the layers are read.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(cfg.Database)
//
// # Validation
//
// Load validates the merged result and fails fast with the offending
// environment-variable name in the error, so a misconfigured deployment
// never reaches the serving loop. Mode-dependent requirements (JWT secret in
// jwt mode, model fields only when an API key is present) are enforced here
// rather than at use sites.
//
// # Thread Safety
//
// The returned Config is never mutated after Load and is safe for concurrent
// reads.
package config
