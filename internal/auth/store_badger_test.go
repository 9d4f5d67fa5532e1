// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package auth

import (
	"context"
	"testing"
	"time"
)

func newBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func TestBadgerStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return newBadgerStore(t)
	})
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}

	session := NewSession(testUser(), time.Hour)
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("OpenBadgerStore() on existing dir error = %v", err)
	}
	defer reopened.Close() //nolint:errcheck

	got, err := reopened.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got.UserID != session.UserID || got.Username != session.Username {
		t.Errorf("Session lost fields across reopen: %+v", got)
	}
}

func TestBadgerStoreRunGC(t *testing.T) {
	store := newBadgerStore(t)

	// A fresh store has nothing to reclaim; ErrNoRewrite must be swallowed.
	if err := store.RunGC(); err != nil {
		t.Errorf("RunGC() on fresh store error = %v", err)
	}
}
