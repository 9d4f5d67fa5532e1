// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package cache

import (
	"crypto/sha256"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vidsift/vidsift/internal/metrics"
	"github.com/vidsift/vidsift/internal/models"
)

// verdictCacheType labels verdict cache traffic in metrics.
const verdictCacheType = "verdict"

// VerdictCache holds completed analysis results keyed by video reference,
// analysis mode, and the exact preference profile. Two users with identical
// preferences analyzing the same video within the TTL share one provider
// round trip; any preference difference produces a different key.
type VerdictCache struct {
	inner *TTLCache[*models.AnalysisResult]
}

// NewVerdictCache creates a verdict cache with the given TTL.
func NewVerdictCache(ttl time.Duration) *VerdictCache {
	inner := New[*models.AnalysisResult](ttl)
	inner.OnEvict(func(n int64) {
		metrics.RecordCacheEvictions(verdictCacheType, int(n))
	})
	return &VerdictCache{inner: inner}
}

// verdictKeyParts pins the field order of the hashed composite.
type verdictKeyParts struct {
	VideoURL    string                 `json:"video_url"`
	Mode        string                 `json:"mode"`
	Preferences models.UserPreferences `json:"preferences"`
}

// Key derives the cache key for one analysis request. Preferences are part
// of the hash because the same video can be suitable for one profile and
// unsuitable for another.
func (c *VerdictCache) Key(videoURL, mode string, prefs models.UserPreferences) string {
	data, err := json.Marshal(verdictKeyParts{
		VideoURL:    videoURL,
		Mode:        mode,
		Preferences: prefs,
	})
	if err != nil {
		// Marshal of plain structs cannot realistically fail; fall back to
		// an uncompacted key rather than dropping caching.
		return fmt.Sprintf("%s:%s:%+v", mode, videoURL, prefs)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", mode, hash[:16])
}

// Get returns a cached result, recording hit/miss metrics.
func (c *VerdictCache) Get(key string) (*models.AnalysisResult, bool) {
	result, ok := c.inner.Get(key)
	if ok {
		metrics.RecordCacheHit(verdictCacheType)
	} else {
		metrics.RecordCacheMiss(verdictCacheType)
	}
	return result, ok
}

// Put stores a completed analysis result.
func (c *VerdictCache) Put(key string, result *models.AnalysisResult) {
	c.inner.Set(key, result)
}

// Stats exposes the underlying cache counters.
func (c *VerdictCache) Stats() Stats {
	return c.inner.GetStats()
}

// Close stops the background cleanup goroutine.
func (c *VerdictCache) Close() {
	c.inner.Close()
}
