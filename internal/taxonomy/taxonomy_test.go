// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package taxonomy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTables(t *testing.T) {
	t.Parallel()

	tax := Default()

	if len(tax.Categories) != 14 {
		t.Errorf("expected 14 default categories, got %d", len(tax.Categories))
	}

	keywords, ok := tax.CategoryKeywords("программирование")
	if !ok {
		t.Fatal("expected category 'программирование' in defaults")
	}
	found := false
	for _, kw := range keywords {
		if kw == "код" {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected keyword 'код' for 'программирование', got %v", keywords)
	}

	if _, ok := tax.LanguageKeywords("ru"); !ok {
		t.Error("expected 'ru' language keywords in defaults")
	}
	if _, ok := tax.LanguageKeywords("en"); !ok {
		t.Error("expected 'en' language keywords in defaults")
	}
	if len(tax.Explicit) == 0 {
		t.Error("expected non-empty explicit keyword set")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	t.Parallel()

	tax, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tax.Categories) != len(Default().Categories) {
		t.Errorf("expected default categories, got %d", len(tax.Categories))
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	content := `
categories:
  chess: [chess, шахматы, gambit]
explicit: [forbidden]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write taxonomy file: %v", err)
	}

	tax, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := tax.CategoryKeywords("chess"); !ok {
		t.Error("expected 'chess' category from override file")
	}
	// Untouched tables keep their defaults.
	if len(tax.Educational) == 0 {
		t.Error("expected default educational keywords to survive override")
	}
	if len(tax.Explicit) != 1 || tax.Explicit[0] != "forbidden" {
		t.Errorf("expected explicit table replaced, got %v", tax.Explicit)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load("/nonexistent/taxonomy.yaml"); err == nil {
		t.Error("expected error for missing taxonomy file")
	}
}

func TestLoadRejectsEmptyCategory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	content := `
categories:
  hollow: []
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write taxonomy file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for category with no keywords")
	}
}

func TestCategoryLabelsSorted(t *testing.T) {
	t.Parallel()

	labels := Default().CategoryLabels()
	if len(labels) != 14 {
		t.Fatalf("expected 14 labels, got %d", len(labels))
	}
	for i := 1; i < len(labels); i++ {
		if labels[i-1] > labels[i] {
			t.Errorf("labels not sorted: %q > %q", labels[i-1], labels[i])
		}
	}
}
