// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/vidsift/vidsift/internal/models"
	"github.com/vidsift/vidsift/internal/taxonomy"
)

// Penalty and bonus values for the heuristic score. The score starts at 100
// and each failed check subtracts its penalty; penalties are additive, so
// overlapping checks both fire. The explicit-content override ignores all of
// them.
const (
	durationPenalty      = 25 // metadata mode: duration outside the inclusive window
	categoryPenalty      = 30 // metadata mode: no preferred category matched
	topicPenalty         = 15 // transcript mode: no preferred category matched
	contentTypePenalty   = 20 // metadata mode: wanted educational/entertainment not found
	languagePenalty      = 15 // metadata mode: requested language not detected
	contentVolumePenalty = 30 // transcript mode: word count below the floor
	contentVolumeBonus   = 10 // transcript mode: word count at or above the floor

	// suitableThreshold is the minimum clamped score for a suitable verdict.
	suitableThreshold = 60
)

// defaultReason is the affirmative placeholder used when no issues were found.
const defaultReason = "Видео соответствует основным предпочтениям"

// HeuristicScorer is the deterministic fallback analyzer. It is a pure
// function over (content, preferences): no I/O, no mutable state, identical
// inputs produce identical verdicts. It never fails; missing or empty
// content degrades to low scores instead of raising.
type HeuristicScorer struct {
	taxonomy *taxonomy.Taxonomy
	mode     Mode
}

// NewHeuristicScorer creates a scorer for the given mode backed by the given
// taxonomy. A nil taxonomy falls back to the built-in defaults.
func NewHeuristicScorer(tax *taxonomy.Taxonomy, mode Mode) *HeuristicScorer {
	if tax == nil {
		tax = taxonomy.Default()
	}
	return &HeuristicScorer{taxonomy: tax, mode: mode}
}

// Name implements ContentAnalyzer.
func (s *HeuristicScorer) Name() string { return "heuristic" }

// Analyze implements ContentAnalyzer. The returned error is always nil.
func (s *HeuristicScorer) Analyze(_ context.Context, content models.VideoContent, prefs models.UserPreferences) (*models.AnalysisVerdict, error) {
	if s.mode == ModeTranscript {
		return s.scoreTranscript(content, prefs), nil
	}
	return s.scoreMetadata(content, prefs), nil
}

// scoreMetadata scores title/description text against the preference profile.
//
// Checks, in order: duration window, category match, educational and
// entertainment wishes, language, explicit-content filter. The explicit
// filter dominates: any hit forces the score to zero regardless of prior
// accumulation.
func (s *HeuristicScorer) scoreMetadata(content models.VideoContent, prefs models.UserPreferences) *models.AnalysisVerdict {
	meta := content.Metadata
	durationMinutes := float64(meta.DurationSeconds) / 60
	searchText := strings.ToLower(meta.Title + " " + meta.Description)

	score := 100
	var reasons, positives, trace []string

	// 1. Duration window (inclusive on both ends).
	switch {
	case durationMinutes < float64(prefs.MinDurationMinutes):
		reasons = append(reasons, fmt.Sprintf("Слишком короткое (%.1fмин < %dмин)", durationMinutes, prefs.MinDurationMinutes))
		score -= durationPenalty
		trace = append(trace, "❌ Длительность: видео слишком короткое")
	case durationMinutes > float64(prefs.MaxDurationMinutes):
		reasons = append(reasons, fmt.Sprintf("Слишком длинное (%.1fмин > %dмин)", durationMinutes, prefs.MaxDurationMinutes))
		score -= durationPenalty
		trace = append(trace, "❌ Длительность: видео слишком длинное")
	default:
		positives = append(positives, "Длительность подходит")
		trace = append(trace, fmt.Sprintf("✅ Длительность: подходит (%.1fмин)", durationMinutes))
	}

	// 2. Category match: first taxonomy keyword hit wins. Skipped entirely
	// when the user specified no categories.
	if cat, kw, ok := s.firstCategoryMatch(searchText, prefs.PreferredCategories); ok {
		trace = append(trace, fmt.Sprintf("✅ Категория: соответствует '%s' (найдено '%s')", cat, kw))
		positives = append(positives, "Соответствует категориям: "+cat)
	} else if len(prefs.PreferredCategories) > 0 {
		reasons = append(reasons, "Тематика не соответствует предпочтениям")
		score -= categoryPenalty
		trace = append(trace, fmt.Sprintf("❌ Категория: не соответствует предпочтениям [%s]", strings.Join(prefs.PreferredCategories, ", ")))
	}

	// 3. Educational / entertainment wishes, each checked independently.
	hasEducational := containsAny(searchText, s.taxonomy.Educational)
	hasEntertainment := containsAny(searchText, s.taxonomy.Entertainment)

	if prefs.EducationalPreference {
		if hasEducational {
			positives = append(positives, "Образовательный контент")
			trace = append(trace, "✅ Образовательный: да")
		} else {
			reasons = append(reasons, "Не образовательный контент")
			score -= contentTypePenalty
			trace = append(trace, "❌ Образовательный: нет")
		}
	}
	if prefs.EntertainmentPreference {
		if hasEntertainment {
			positives = append(positives, "Развлекательный контент")
			trace = append(trace, "✅ Развлекательный: да")
		} else {
			reasons = append(reasons, "Не развлекательный контент")
			score -= contentTypePenalty
			trace = append(trace, "❌ Развлекательный: нет")
		}
	}

	// 4. Language: at least one requested language must be detectable.
	if len(prefs.PreferredLanguages) > 0 {
		languageOK := false
		for _, lang := range prefs.PreferredLanguages {
			keywords, known := s.taxonomy.LanguageKeywords(lang)
			if known && containsAny(searchText, keywords) {
				languageOK = true
				positives = append(positives, languagePositive(lang))
				trace = append(trace, fmt.Sprintf("✅ Язык: %s", languageDisplay(lang)))
			} else {
				trace = append(trace, fmt.Sprintf("❌ Язык: %s не обнаружен", languageDisplay(lang)))
			}
		}
		if !languageOK {
			reasons = append(reasons, "Язык не соответствует")
			score -= languagePenalty
		}
	}

	// 5. Explicit-content filter: dominates all other checks.
	score = s.applyExplicitFilter(searchText, prefs, score, &reasons, &trace)

	return s.buildVerdict(meta.Title, score, reasons, positives, trace, nil)
}

// scoreTranscript scores transcript text against the preference profile.
//
// Checks, in order: content volume, topic match, content-type labeling,
// language detection, explicit-content filter. Unlike metadata mode there is
// no duration check, the content-type comparison assigns a label instead of
// deducting per preference, and language detection carries no penalty.
func (s *HeuristicScorer) scoreTranscript(content models.VideoContent, prefs models.UserPreferences) *models.AnalysisVerdict {
	searchText := strings.ToLower(content.Transcript)
	wordCount := len(strings.Fields(content.Transcript))

	score := 100
	var reasons, positives, trace []string

	// 1. Content volume. Sufficient transcripts earn the only numeric bonus
	// in the table.
	if wordCount < prefs.MinContentLength {
		reasons = append(reasons, fmt.Sprintf("Слишком мало контента (%d слов < %d)", wordCount, prefs.MinContentLength))
		score -= contentVolumePenalty
		trace = append(trace, fmt.Sprintf("❌ Объем контента: недостаточно слов (%d)", wordCount))
	} else {
		score += contentVolumeBonus
		positives = append(positives, "Достаточный объем контента")
		trace = append(trace, fmt.Sprintf("✅ Объем контента: достаточно (%d слов)", wordCount))
	}

	// 2. Topic match: every preferred category is tested (taxonomy keywords
	// plus the raw label); all hits become detected topics.
	topics := s.matchTopics(searchText, prefs.PreferredCategories)
	if len(topics) > 0 {
		for _, topic := range topics {
			trace = append(trace, fmt.Sprintf("✅ Тема: соответствует '%s'", topic))
		}
		positives = append(positives, "Соответствует темам: "+strings.Join(topics, ", "))
	} else if len(prefs.PreferredCategories) > 0 {
		reasons = append(reasons, "Тематика не соответствует предпочтениям")
		score -= topicPenalty
		trace = append(trace, fmt.Sprintf("❌ Тематика: не соответствует предпочтениям [%s]", strings.Join(prefs.PreferredCategories, ", ")))
	}

	// 3. Content-type label: keyword hit counts decide, higher count wins.
	eduHits := countHits(searchText, s.taxonomy.Educational)
	entHits := countHits(searchText, s.taxonomy.Entertainment)
	contentType := pickContentType(eduHits, entHits, prefs)
	trace = append(trace, fmt.Sprintf("📊 Тип контента: %s (образовательных совпадений: %d, развлекательных: %d)", contentType, eduHits, entHits))

	// 4. Language detection: label only, no penalty in transcript mode.
	languageDetected := s.detectLanguage(searchText)
	trace = append(trace, fmt.Sprintf("🌐 Язык: %s", languageDetected))

	// 5. Explicit-content filter: dominates all other checks.
	score = s.applyExplicitFilter(searchText, prefs, score, &reasons, &trace)

	extended := &extendedFields{
		topics:      topics,
		contentType: contentType,
		language:    languageDetected,
	}
	return s.buildVerdict(content.Metadata.Title, score, reasons, positives, trace, extended)
}

// applyExplicitFilter runs the explicit-content override when the user
// requested it. A hit forces the score to zero; penalties already applied do
// not matter and nothing later adds points back.
func (s *HeuristicScorer) applyExplicitFilter(searchText string, prefs models.UserPreferences, score int, reasons, trace *[]string) int {
	if !prefs.ExcludeExplicitContent {
		return score
	}
	if containsAny(searchText, s.taxonomy.Explicit) {
		*reasons = append(*reasons, "Обнаружен явный контент")
		*trace = append(*trace, "🚫 Содержание: обнаружен явный контент")
		return 0
	}
	*trace = append(*trace, "✅ Содержание: явный контент не обнаружен")
	return score
}

// extendedFields carries the transcript-mode verdict additions.
type extendedFields struct {
	topics      []string
	contentType string
	language    string
}

// buildVerdict clamps the score, derives suitability and confidence, and
// assembles the explanation text in fixed order: per-check trace, positive
// aspects, problem aspects, final verdict line.
func (s *HeuristicScorer) buildVerdict(title string, score int, reasons, positives, trace []string, extended *extendedFields) *models.AnalysisVerdict {
	score = clampScore(score)
	suitable := score >= suitableThreshold

	var b strings.Builder
	fmt.Fprintf(&b, "Анализ видео '%s':\n", title)
	b.WriteString(strings.Join(trace, "\n"))

	if len(positives) > 0 {
		b.WriteString("\n\n📈 Положительные аспекты:")
		for _, aspect := range positives {
			b.WriteString("\n• " + aspect)
		}
	}
	if len(reasons) > 0 {
		b.WriteString("\n\n📉 Проблемные аспекты:")
		for _, reason := range reasons {
			b.WriteString("\n• " + reason)
		}
	}

	verdictWord := "НЕ ПОДХОДИТ"
	if suitable {
		verdictWord = "ПОДХОДИТ"
	}
	fmt.Fprintf(&b, "\n\n🎯 Итоговый результат: %s (оценка: %d%%)", verdictWord, score)

	if len(reasons) == 0 {
		reasons = []string{defaultReason}
	}

	verdict := &models.AnalysisVerdict{
		IsSuitable: suitable,
		Analysis:   b.String(),
		Confidence: float64(score) / 100,
		Reasons:    reasons,
		MatchScore: score,
	}
	if extended != nil {
		verdict.DetectedTopics = extended.topics
		if verdict.DetectedTopics == nil {
			verdict.DetectedTopics = []string{}
		}
		verdict.ContentType = extended.contentType
		verdict.LanguageDetected = extended.language
	}
	return verdict
}

// firstCategoryMatch returns the first preferred category whose taxonomy
// keywords appear in the search text, together with the matching keyword.
// Categories missing from the taxonomy cannot match in metadata mode.
func (s *HeuristicScorer) firstCategoryMatch(searchText string, categories []string) (category, keyword string, ok bool) {
	for _, cat := range categories {
		keywords, known := s.taxonomy.CategoryKeywords(cat)
		if !known {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(searchText, kw) {
				return cat, kw, true
			}
		}
	}
	return "", "", false
}

// matchTopics returns every preferred category with a keyword hit in the
// search text, in preference order. The raw category label counts as a
// keyword, so categories unknown to the taxonomy can still match transcripts
// that mention them literally.
func (s *HeuristicScorer) matchTopics(searchText string, categories []string) []string {
	var topics []string
	for _, cat := range categories {
		keywords, _ := s.taxonomy.CategoryKeywords(cat)
		matched := strings.Contains(searchText, cat)
		if !matched {
			for _, kw := range keywords {
				if strings.Contains(searchText, kw) {
					matched = true
					break
				}
			}
		}
		if matched {
			topics = append(topics, cat)
		}
	}
	return topics
}

// pickContentType labels the content by comparing educational and
// entertainment keyword hit counts. Ties are "mixed"; zero hits on both
// sides are "mixed" when the user expressed either preference and "unknown"
// otherwise.
func pickContentType(eduHits, entHits int, prefs models.UserPreferences) string {
	switch {
	case eduHits > entHits:
		return models.ContentTypeEducational
	case entHits > eduHits:
		return models.ContentTypeEntertainment
	case eduHits > 0:
		return models.ContentTypeMixed
	case prefs.EducationalPreference || prefs.EntertainmentPreference:
		return models.ContentTypeMixed
	default:
		return models.ContentTypeUnknown
	}
}

// detectLanguage labels the dominant language of the search text using the
// taxonomy's language-indicative keyword sets.
func (s *HeuristicScorer) detectLanguage(searchText string) string {
	hasRussian := false
	hasEnglish := false
	if keywords, ok := s.taxonomy.LanguageKeywords("ru"); ok {
		hasRussian = containsAny(searchText, keywords)
	}
	if keywords, ok := s.taxonomy.LanguageKeywords("en"); ok {
		hasEnglish = containsAny(searchText, keywords)
	}
	switch {
	case hasRussian && hasEnglish:
		return "mixed"
	case hasRussian:
		return "ru"
	case hasEnglish:
		return "en"
	default:
		return "unknown"
	}
}

// languageDisplay renders a language code for the analysis trace.
func languageDisplay(code string) string {
	switch code {
	case "ru":
		return "русский"
	case "en":
		return "английский"
	default:
		return code
	}
}

// languagePositive renders the positive-aspect line for a detected language.
func languagePositive(code string) string {
	switch code {
	case "ru":
		return "Русский язык"
	case "en":
		return "Английский язык"
	default:
		return "Язык: " + code
	}
}

// containsAny reports whether any keyword appears in the search text.
func containsAny(searchText string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(searchText, kw) {
			return true
		}
	}
	return false
}

// countHits counts how many keywords appear in the search text. Each keyword
// counts at most once regardless of repetitions.
func countHits(searchText string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(searchText, kw) {
			hits++
		}
	}
	return hits
}

// clampScore bounds a score to [0, 100].
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
