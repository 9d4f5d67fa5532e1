// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"

	"github.com/vidsift/vidsift/internal/logging"
)

// wmLogger bridges Watermill's logger interface onto the application logger
// so bus internals share the structured output of everything else. Watermill
// logs routine subscriber churn at info, so info maps down to debug and
// trace maps to nothing.
type wmLogger struct {
	fields watermill.LogFields
}

func newWatermillLogger() watermill.LoggerAdapter {
	return &wmLogger{}
}

func (l *wmLogger) apply(ev *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	if len(l.fields) > 0 {
		ev = ev.Fields(map[string]interface{}(l.fields))
	}
	if len(fields) > 0 {
		ev = ev.Fields(map[string]interface{}(fields))
	}
	return ev
}

func (l *wmLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.apply(logging.Error().Err(err), fields).Msg("[EVENTS] " + msg)
}

func (l *wmLogger) Info(msg string, fields watermill.LogFields) {
	l.apply(logging.Debug(), fields).Msg("[EVENTS] " + msg)
}

func (l *wmLogger) Debug(msg string, fields watermill.LogFields) {
	l.apply(logging.Debug(), fields).Msg("[EVENTS] " + msg)
}

func (l *wmLogger) Trace(string, watermill.LogFields) {}

func (l *wmLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	merged := make(watermill.LogFields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &wmLogger{fields: merged}
}
