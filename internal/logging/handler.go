// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

// Package logging provides a slog handler that forwards warnings and
// errors to the database-backed event log.
package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/store"
)

// EventLogHandler wraps another slog handler and additionally writes
// records at or above a threshold level to the event log.
type EventLogHandler struct {
	inner  slog.Handler
	events *store.EventStore
	level  slog.Level
}

// NewEventLogHandler creates an EventLogHandler forwarding WARN and
// above to the event log.
func NewEventLogHandler(inner slog.Handler, events *store.EventStore) *EventLogHandler {
	return &EventLogHandler{inner: inner, events: events, level: slog.LevelWarn}
}

// NewEventLogHandlerWithLevel creates an EventLogHandler with a custom
// threshold level.
func NewEventLogHandlerWithLevel(inner slog.Handler, events *store.EventStore, level slog.Level) *EventLogHandler {
	return &EventLogHandler{inner: inner, events: events, level: level}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.writeToEventLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{inner: h.inner.WithAttrs(attrs), events: h.events, level: h.level}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{inner: h.inner.WithGroup(name), events: h.events, level: h.level}
}

func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	// A background context keeps the entry even when the request
	// context is already cancelled.
	_ = h.events.CreateEvent(context.Background(), model.Event{
		Level:     eventLevel(r.Level),
		Category:  eventCategory(r),
		Message:   r.Message,
		Metadata:  metadataJSON(r),
		CreatedAt: r.Time,
	})
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// eventCategory takes an explicit "category" attribute when present
// and otherwise infers one from the message.
func eventCategory(r slog.Record) string {
	var category string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})
	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "snippet"):
		return model.EventCategorySnippet
	case strings.Contains(msg, "page"):
		return model.EventCategoryPage
	case strings.Contains(msg, "news"):
		return model.EventCategoryNews
	default:
		return model.EventCategorySystem
	}
}

func metadataJSON(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}

	var sb strings.Builder
	sb.WriteString("{")
	first := true
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			return true
		}
		if !first {
			sb.WriteString(",")
		}
		first = false
		sb.WriteString(`"`)
		sb.WriteString(escapeJSON(a.Key))
		sb.WriteString(`":"`)
		sb.WriteString(escapeJSON(a.Value.String()))
		sb.WriteString(`"`)
		return true
	})
	sb.WriteString("}")
	return sb.String()
}

func escapeJSON(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return s
}
