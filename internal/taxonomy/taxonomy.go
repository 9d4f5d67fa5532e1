// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

// Package taxonomy provides the static keyword tables driving heuristic
// content analysis: category labels mapped to matching keywords, plus
// educational, entertainment, explicit, and language-indicative keyword sets.
//
// A Taxonomy is pure data. It is loaded once at startup, optionally from a
// YAML file overriding the built-in defaults, and shared read-only across
// all concurrent analyses. Nothing in this package mutates a Taxonomy after
// construction.
package taxonomy

import (
	"fmt"
	"sort"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Taxonomy is the read-only keyword lookup table. All keywords are lowercase;
// matching is substring-based against a lowercased search text, so keyword
// casing matters.
type Taxonomy struct {
	// Categories maps a category label to the keywords whose presence in the
	// search text counts as a match for that category.
	Categories map[string][]string `koanf:"categories"`

	// Educational and Entertainment are the content-type keyword sets.
	Educational   []string `koanf:"educational"`
	Entertainment []string `koanf:"entertainment"`

	// Explicit keywords trigger the explicit-content override.
	Explicit []string `koanf:"explicit"`

	// Languages maps a language code to keywords indicating that language.
	Languages map[string][]string `koanf:"languages"`
}

// Default returns the built-in taxonomy. Category labels and keywords are
// bilingual (Russian and English) to match the primary user base.
func Default() *Taxonomy {
	return &Taxonomy{
		Categories: map[string][]string{
			"python":           {"python", "программирование", "код", "разработка", "programming", "алгоритм"},
			"javascript":       {"javascript", "js", "web", "frontend", "node", "react", "vue"},
			"программирование": {"программирование", "код", "разработка", "алгоритм", "программа", "coding", "software"},
			"образование":      {"урок", "курс", "обучение", "образование", "tutorial", "лекция", "учеба", "education"},
			"технологии":       {"технологии", "гаджеты", "it", "компьютер", "техника", "tech", "technology"},
			"развлечения":      {"развлечения", "юмор", "прикол", "funny", "comedy", "смех", "развлекательный", "entertainment"},
			"музыка":           {"музыка", "песня", "клип", "music", "музыкальный", "concert", "audio"},
			"игры":             {"игры", "гейминг", "game", "игровой", "gaming", "play", "video game"},
			"кулинария":        {"рецепт", "готовка", "кулинария", "еда", "cooking", "recipe", "food"},
			"путешествия":      {"путешествия", "туризм", "поездка", "travel", "trip", "tour"},
			"спорт":            {"спорт", "тренировка", "фитнес", "sport", "workout", "exercise"},
			"наука":            {"наука", "исследование", "scientific", "science", "research"},
			"бизнес":           {"бизнес", "предпринимательство", "business", "entrepreneur"},
			"новости":          {"новости", "news", "события", "политика"},
		},
		Educational: []string{
			"урок", "курс", "обучение", "образование", "tutorial", "лекция",
			"учеба", "объяснение", "how to", "study", "learn",
		},
		Entertainment: []string{
			"развлечения", "юмор", "прикол", "funny", "comedy", "смех",
			"шутка", "розыгрыш", "entertainment", "fun", "laugh",
		},
		Explicit: []string{
			"18+", "эротика", "секс", "porn", "xxx", "adult", "nsfw",
			"нагота", "интим", "explicit",
		},
		Languages: map[string][]string{
			"ru": {"в", "на", "с", "по", "что", "это", "как", "для", "или", "но", "если", "русск", "росси"},
			"en": {"the", "and", "for", "with", "this", "that", "what", "how", "why", "when", "english", "eng"},
		},
	}
}

// Load returns the taxonomy from the given YAML file layered over the
// built-in defaults. An empty path returns the defaults unchanged. File
// content merges over the defaults: map entries (categories, languages) are
// added or replaced per key, keyword lists are replaced wholesale.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default taxonomy: %w", err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load taxonomy file %s: %w", path, err)
	}

	var t Taxonomy
	if err := k.Unmarshal("", &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal taxonomy: %w", err)
	}

	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid taxonomy in %s: %w", path, err)
	}

	return &t, nil
}

// validate rejects tables that would silently disable whole checks.
func (t *Taxonomy) validate() error {
	if len(t.Categories) == 0 {
		return fmt.Errorf("categories table is empty")
	}
	for label, keywords := range t.Categories {
		if len(keywords) == 0 {
			return fmt.Errorf("category %q has no keywords", label)
		}
	}
	if len(t.Educational) == 0 {
		return fmt.Errorf("educational keyword set is empty")
	}
	if len(t.Entertainment) == 0 {
		return fmt.Errorf("entertainment keyword set is empty")
	}
	if len(t.Explicit) == 0 {
		return fmt.Errorf("explicit keyword set is empty")
	}
	return nil
}

// CategoryKeywords returns the keywords for a category label and whether the
// label exists in the table.
func (t *Taxonomy) CategoryKeywords(label string) ([]string, bool) {
	keywords, ok := t.Categories[label]
	return keywords, ok
}

// LanguageKeywords returns the keywords for a language code and whether the
// code exists in the table.
func (t *Taxonomy) LanguageKeywords(code string) ([]string, bool) {
	keywords, ok := t.Languages[code]
	return keywords, ok
}

// CategoryLabels returns all category labels in sorted order. Used for
// diagnostics and the config dump endpoint; the scorer iterates user
// preferences, not this list.
func (t *Taxonomy) CategoryLabels() []string {
	labels := make([]string, 0, len(t.Categories))
	for label := range t.Categories {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
