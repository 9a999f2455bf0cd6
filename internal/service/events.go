// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/store"
)

// EventService writes and reads the audit event log.
type EventService struct {
	events *store.EventStore
	clock  Clock
	log    *slog.Logger
}

// NewEventService creates a new EventService.
func NewEventService(events *store.EventStore, clock Clock, log *slog.Logger) *EventService {
	return &EventService{events: events, clock: clock, log: log}
}

// LogEvent creates a new event log entry. Metadata is stored as JSON.
func (s *EventService) LogEvent(
	ctx context.Context, level, category, message string,
	userID *model.UserID, metadata map[string]any,
) error {
	var nullUserID sql.NullString
	if userID != nil {
		nullUserID = sql.NullString{String: string(*userID), Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		jsonBytes, err := json.Marshal(metadata)
		if err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	err := s.events.CreateEvent(ctx, model.Event{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		Metadata:  metadataJSON,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		s.log.Error("failed to log event", "category", category, "error", err)
		return err
	}
	return nil
}

// LogInfo logs an info-level event.
func (s *EventService) LogInfo(
	ctx context.Context, category, message string,
	userID *model.UserID, metadata map[string]any,
) error {
	return s.LogEvent(ctx, model.EventLevelInfo, category, message, userID, metadata)
}

// LogWarning logs a warning-level event.
func (s *EventService) LogWarning(
	ctx context.Context, category, message string,
	userID *model.UserID, metadata map[string]any,
) error {
	return s.LogEvent(ctx, model.EventLevelWarning, category, message, userID, metadata)
}

// LogError logs an error-level event.
func (s *EventService) LogError(
	ctx context.Context, category, message string,
	userID *model.UserID, metadata map[string]any,
) error {
	return s.LogEvent(ctx, model.EventLevelError, category, message, userID, metadata)
}

// ListEvents returns event log entries, newest first.
func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]model.Event, error) {
	return s.events.ListEvents(ctx, limit, offset)
}

// CountEvents returns the number of event log entries.
func (s *EventService) CountEvents(ctx context.Context) (int, error) {
	return s.events.CountEvents(ctx)
}

// DeleteOldEvents removes entries older than the given retention and
// returns how many were removed.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.clock.Now().Add(-olderThan)
	return s.events.DeleteEventsBefore(ctx, cutoff)
}

// AuditEventSink records domain events in the audit event log.
type AuditEventSink struct {
	events *EventService
}

// NewAuditEventSink creates an EventSink writing to the audit log.
func NewAuditEventSink(events *EventService) *AuditEventSink {
	return &AuditEventSink{events: events}
}

// Emit implements EventSink.
func (s *AuditEventSink) Emit(ctx context.Context, event model.DomainEvent) {
	category := categoryForEvent(event)
	var userID *model.UserID
	if initiator := event.InitiatedBy(); initiator != nil {
		userID = &initiator.ID
	}
	metadata := map[string]any{"event": event}

	_ = s.events.LogInfo(ctx, category, event.Name(), userID, metadata)
}

func categoryForEvent(event model.DomainEvent) string {
	switch event.(type) {
	case model.SnippetCreatedEvent, model.SnippetUpdatedEvent, model.SnippetDeletedEvent:
		return model.EventCategorySnippet
	case model.PageCreatedEvent, model.PageUpdatedEvent, model.PageDeletedEvent:
		return model.EventCategoryPage
	case model.NewsItemPublishedEvent:
		return model.EventCategoryNews
	default:
		return model.EventCategorySystem
	}
}
