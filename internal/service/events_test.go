// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/store"
	"github.com/byceps/byceps-go/internal/testutil"
)

func newTestEventService(t *testing.T) (*EventService, *fakeClock) {
	t.Helper()
	db := testutil.TestDB(t)
	clock := newFakeClock()
	return NewEventService(store.NewEventStore(db), clock, testutil.TestLogger()), clock
}

func TestEventServiceLogAndList(t *testing.T) {
	events, clock := newTestEventService(t)
	ctx := context.Background()

	userID := model.UserID("user-1")
	require.NoError(t, events.LogInfo(ctx, model.EventCategorySnippet, "snippet-created",
		&userID, map[string]any{"snippet_id": "snippet-1"}))
	clock.advance(time.Minute)
	require.NoError(t, events.LogWarning(ctx, model.EventCategoryPage, "page render failed",
		nil, nil))

	entries, err := events.ListEvents(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "page render failed", entries[0].Message)
	assert.Equal(t, model.EventLevelWarning, entries[0].Level)
	assert.Equal(t, "{}", entries[0].Metadata)

	assert.Equal(t, "snippet-created", entries[1].Message)
	assert.Equal(t, "user-1", entries[1].UserID.String)
	assert.Contains(t, entries[1].Metadata, "snippet-1")

	count, err := events.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestEventServiceDeleteOldEvents(t *testing.T) {
	events, clock := newTestEventService(t)
	ctx := context.Background()

	require.NoError(t, events.LogInfo(ctx, model.EventCategorySystem, "old entry", nil, nil))
	clock.advance(48 * time.Hour)
	require.NoError(t, events.LogInfo(ctx, model.EventCategorySystem, "recent entry", nil, nil))

	deleted, err := events.DeleteOldEvents(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	entries, err := events.ListEvents(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "recent entry", entries[0].Message)
}

func TestAuditEventSinkCategorizesEvents(t *testing.T) {
	events, clock := newTestEventService(t)
	sink := NewAuditEventSink(events)
	ctx := context.Background()

	base := model.NewEventBase(clock.Now(), nil)
	sink.Emit(ctx, model.SnippetCreatedEvent{EventBase: base, SnippetID: "snippet-1"})
	sink.Emit(ctx, model.PageDeletedEvent{EventBase: base, PageID: "page-1"})
	sink.Emit(ctx, model.NewsItemPublishedEvent{EventBase: base, ItemID: "item-1"})

	entries, err := events.ListEvents(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	categories := make(map[string]string)
	for _, entry := range entries {
		categories[entry.Message] = entry.Category
	}
	assert.Equal(t, model.EventCategorySnippet, categories["snippet-created"])
	assert.Equal(t, model.EventCategoryPage, categories["page-deleted"])
	assert.Equal(t, model.EventCategoryNews, categories["news-item-published"])
}

func TestAuditEventSinkAttributesInitiator(t *testing.T) {
	events, clock := newTestEventService(t)
	sink := NewAuditEventSink(events)
	ctx := context.Background()

	initiator := &model.Initiator{ID: "user-1", ScreenName: "Admin"}
	sink.Emit(ctx, model.SnippetCreatedEvent{
		EventBase: model.NewEventBase(clock.Now(), initiator),
		SnippetID: "snippet-1",
	})
	sink.Emit(ctx, model.SnippetDeletedEvent{
		EventBase: model.NewEventBase(clock.Now(), nil),
		SnippetID: "snippet-1",
	})

	entries, err := events.ListEvents(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byMessage := make(map[string]model.Event)
	for _, entry := range entries {
		byMessage[entry.Message] = entry
	}
	created := byMessage["snippet-created"]
	require.True(t, created.UserID.Valid)
	assert.Equal(t, "user-1", created.UserID.String)
	assert.False(t, byMessage["snippet-deleted"].UserID.Valid)
}
