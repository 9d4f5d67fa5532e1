// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package analysis

import (
	"fmt"
	"strings"

	"github.com/vidsift/vidsift/internal/models"
)

// Prompt building limits. Content is truncated by runes, not bytes, so
// multibyte text never splits mid-character.
const (
	maxDescriptionRunes = 800
	maxTranscriptRunes  = 4000
	maxPromptTags       = 20
	truncationMarker    = "..."
)

// systemPrompt instructs the model to reply with JSON only.
const systemPrompt = "Ты - AI помощник для анализа YouTube видео. Анализируй, насколько видео соответствует предпочтениям пользователя. Отвечай ТОЛЬКО в формате JSON."

// BuildPrompt renders the analysis prompt for the external model: the video
// information block, every preference field in human-readable form, the five
// analysis criteria, and the required JSON reply shape. Transcript mode adds
// the transcript excerpt and the extended reply fields.
func BuildPrompt(content models.VideoContent, prefs models.UserPreferences, mode Mode) string {
	meta := content.Metadata

	title := meta.Title
	if title == "" {
		title = "Неизвестно"
	}
	description := truncateRunes(meta.Description, maxDescriptionRunes)
	if description == "" {
		description = "Описание отсутствует"
	}
	uploader := meta.Uploader
	if uploader == "" {
		uploader = "Неизвестный автор"
	}
	tags := meta.Tags
	if len(tags) > maxPromptTags {
		tags = tags[:maxPromptTags]
	}

	var b strings.Builder

	b.WriteString("ПРОАНАЛИЗИРУЙ, насколько это YouTube видео соответствует предпочтениям пользователя.\n\n")

	b.WriteString("=== ИНФОРМАЦИЯ О ВИДЕО ===\n")
	fmt.Fprintf(&b, "НАЗВАНИЕ: %q\n", title)
	fmt.Fprintf(&b, "АВТОР: %s\n", uploader)
	fmt.Fprintf(&b, "ОПИСАНИЕ: %s\n", description)
	fmt.Fprintf(&b, "ДЛИТЕЛЬНОСТЬ: %d минут\n", meta.DurationMinutes())
	fmt.Fprintf(&b, "КАТЕГОРИИ: [%s]\n", strings.Join(meta.Categories, ", "))
	fmt.Fprintf(&b, "ТЕГИ: [%s]\n", strings.Join(tags, ", "))
	if mode == ModeTranscript {
		fmt.Fprintf(&b, "ТРАНСКРИПТ: %s\n", truncateRunes(content.Transcript, maxTranscriptRunes))
	}

	b.WriteString("\n=== ПРЕДПОЧТЕНИЯ ПОЛЬЗОВАТЕЛЯ ===\n")
	fmt.Fprintf(&b, "ЖЕЛАЕМЫЕ КАТЕГОРИИ: [%s]\n", strings.Join(prefs.PreferredCategories, ", "))
	fmt.Fprintf(&b, "ПРЕДПОЧТИТЕЛЬНЫЕ ЯЗЫКИ: [%s]\n", strings.Join(prefs.PreferredLanguages, ", "))
	fmt.Fprintf(&b, "ДИАПАЗОН ДЛИТЕЛЬНОСТИ: %d-%d минут\n", prefs.MinDurationMinutes, prefs.MaxDurationMinutes)
	fmt.Fprintf(&b, "ОБРАЗОВАТЕЛЬНЫЙ КОНТЕНТ: %s\n", yesNo(prefs.EducationalPreference))
	fmt.Fprintf(&b, "РАЗВЛЕКАТЕЛЬНЫЙ КОНТЕНТ: %s\n", yesNo(prefs.EntertainmentPreference))
	fmt.Fprintf(&b, "ИСКЛЮЧАТЬ ЯВНЫЙ КОНТЕНТ: %s\n", yesNo(prefs.ExcludeExplicitContent))
	if mode == ModeTranscript {
		fmt.Fprintf(&b, "МИНИМАЛЬНЫЙ ОБЪЕМ КОНТЕНТА: %d слов\n", prefs.MinContentLength)
	}

	b.WriteString("\n=== КРИТЕРИИ АНАЛИЗА ===\n")
	b.WriteString("1. Соответствие тематики видео желаемым категориям пользователя\n")
	b.WriteString("2. Соответствие длительности видео предпочтительному диапазону\n")
	b.WriteString("3. Соответствие типа контента (образовательный/развлекательный) предпочтениям\n")
	b.WriteString("4. Соответствие языка контента предпочтительным языкам\n")
	b.WriteString("5. Отсутствие явного контента (если пользователь этого хочет)\n")

	b.WriteString("\n=== ТРЕБУЕМЫЙ ФОРМАТ ОТВЕТА ===\n")
	b.WriteString("Ответь ТОЛЬКО в формате JSON со следующей структурой:\n\n")
	if mode == ModeTranscript {
		b.WriteString(transcriptReplyExample)
	} else {
		b.WriteString(metadataReplyExample)
	}
	b.WriteString("\n\nБудь честным и объективным. Если видео не соответствует предпочтениям - так и скажи.\n")
	b.WriteString("Учитывай контекст названия, описания, тегов и категорий.")

	return b.String()
}

const metadataReplyExample = `{
    "is_suitable": true/false,
    "analysis": "Детальный анализ на русском языке. Объясни конкретно почему видео подходит или не подходит. Укажи соответствие по каждому критерию.",
    "confidence": 0.85,
    "reasons": [
        "Конкретная причина 1",
        "Конкретная причина 2",
        "Конкретная причина 3"
    ],
    "match_score": 85
}`

const transcriptReplyExample = `{
    "is_suitable": true/false,
    "analysis": "Детальный анализ на русском языке. Объясни конкретно почему видео подходит или не подходит. Укажи соответствие по каждому критерию.",
    "confidence": 0.85,
    "reasons": [
        "Конкретная причина 1",
        "Конкретная причина 2",
        "Конкретная причина 3"
    ],
    "match_score": 85,
    "detected_topics": ["тема 1", "тема 2"],
    "content_type": "educational/entertainment/mixed/unknown",
    "language_detected": "ru/en/mixed/unknown"
}`

// yesNo renders a boolean preference for the prompt.
func yesNo(v bool) string {
	if v {
		return "ДА"
	}
	return "НЕТ"
}

// truncateRunes cuts s to at most max runes, appending the truncation marker
// when anything was cut.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + truncationMarker
}
