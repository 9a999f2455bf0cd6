// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package model

import (
	"database/sql"
	"time"
)

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategorySnippet = "snippet"
	EventCategoryPage    = "page"
	EventCategoryNews    = "news"
	EventCategorySystem  = "system"
)

// Event represents an event log entry for auditing.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullString
	Metadata  string // JSON string
	CreatedAt time.Time
}

// Initiator identifies the user that triggered a domain event, if any.
type Initiator struct {
	ID         UserID `json:"id"`
	ScreenName string `json:"screen_name"`
}

// DomainEvent is implemented by all events emitted by the content
// services.
type DomainEvent interface {
	// Name returns the stable event name used for dispatch.
	Name() string
	// OccurredAt returns when the event happened.
	OccurredAt() time.Time
	// InitiatedBy returns the user that triggered the event, or nil.
	InitiatedBy() *Initiator
}

// EventBase carries the fields shared by all domain events.
type EventBase struct {
	At        time.Time  `json:"occurred_at"`
	Initiator *Initiator `json:"initiator,omitempty"`
}

// OccurredAt implements DomainEvent.
func (e EventBase) OccurredAt() time.Time {
	return e.At
}

// InitiatedBy implements DomainEvent.
func (e EventBase) InitiatedBy() *Initiator {
	return e.Initiator
}

// NewEventBase assembles the shared part of a domain event.
func NewEventBase(occurredAt time.Time, initiator *Initiator) EventBase {
	return EventBase{At: occurredAt, Initiator: initiator}
}

// SnippetCreatedEvent signals that a snippet and its initial version
// were created.
type SnippetCreatedEvent struct {
	EventBase
	SnippetID        SnippetID        `json:"snippet_id"`
	Scope            Scope            `json:"scope"`
	SnippetName      string           `json:"snippet_name"`
	LanguageCode     string           `json:"language_code"`
	SnippetVersionID SnippetVersionID `json:"snippet_version_id"`
}

// Name implements DomainEvent.
func (SnippetCreatedEvent) Name() string { return "snippet-created" }

// SnippetUpdatedEvent signals that a new snippet version was appended
// and made current.
type SnippetUpdatedEvent struct {
	EventBase
	SnippetID        SnippetID        `json:"snippet_id"`
	Scope            Scope            `json:"scope"`
	SnippetName      string           `json:"snippet_name"`
	LanguageCode     string           `json:"language_code"`
	SnippetVersionID SnippetVersionID `json:"snippet_version_id"`
}

// Name implements DomainEvent.
func (SnippetUpdatedEvent) Name() string { return "snippet-updated" }

// SnippetDeletedEvent signals that a snippet and all of its versions
// were deleted.
type SnippetDeletedEvent struct {
	EventBase
	SnippetID    SnippetID `json:"snippet_id"`
	Scope        Scope     `json:"scope"`
	SnippetName  string    `json:"snippet_name"`
	LanguageCode string    `json:"language_code"`
}

// Name implements DomainEvent.
func (SnippetDeletedEvent) Name() string { return "snippet-deleted" }

// PageCreatedEvent signals that a page and its initial version were
// created.
type PageCreatedEvent struct {
	EventBase
	PageID        PageID        `json:"page_id"`
	SiteID        SiteID        `json:"site_id"`
	PageName      string        `json:"page_name"`
	LanguageCode  string        `json:"language_code"`
	PageVersionID PageVersionID `json:"page_version_id"`
}

// Name implements DomainEvent.
func (PageCreatedEvent) Name() string { return "page-created" }

// PageUpdatedEvent signals that a new page version was appended and
// made current.
type PageUpdatedEvent struct {
	EventBase
	PageID        PageID        `json:"page_id"`
	SiteID        SiteID        `json:"site_id"`
	PageName      string        `json:"page_name"`
	LanguageCode  string        `json:"language_code"`
	PageVersionID PageVersionID `json:"page_version_id"`
}

// Name implements DomainEvent.
func (PageUpdatedEvent) Name() string { return "page-updated" }

// PageDeletedEvent signals that a page and all of its versions were
// deleted.
type PageDeletedEvent struct {
	EventBase
	PageID       PageID `json:"page_id"`
	SiteID       SiteID `json:"site_id"`
	PageName     string `json:"page_name"`
	LanguageCode string `json:"language_code"`
}

// Name implements DomainEvent.
func (PageDeletedEvent) Name() string { return "page-deleted" }

// NewsItemPublishedEvent signals that a news item was published or
// scheduled for publication.
type NewsItemPublishedEvent struct {
	EventBase
	ItemID      NewsItemID `json:"item_id"`
	ChannelID   ChannelID  `json:"channel_id"`
	PublishedAt time.Time  `json:"published_at"`
	Title       string     `json:"title"`
	ExternalURL string     `json:"external_url,omitempty"`
}

// Name implements DomainEvent.
func (NewsItemPublishedEvent) Name() string { return "news-item-published" }
