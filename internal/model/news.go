// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package model

import (
	"database/sql"
	"time"
)

// BodyFormat is the markup format of a news item version's body.
type BodyFormat string

// Body formats
const (
	BodyFormatHTML     BodyFormat = "html"
	BodyFormatMarkdown BodyFormat = "markdown"
)

// PublicationState is the observable publication state of a news item,
// derived from its publication timestamp and the wall clock.
type PublicationState string

// Publication states
const (
	PublicationStateDraft     PublicationState = "draft"
	PublicationStateScheduled PublicationState = "scheduled"
	PublicationStatePublished PublicationState = "published"
)

// NewsChannel groups news items within a brand.
type NewsChannel struct {
	ID                 ChannelID
	BrandID            BrandID
	AnnouncementSiteID sql.NullString
	Archived           bool
}

// NewsItem is a brand-and-channel-scoped, slug-addressable content
// entity with a publication timestamp and optional featured image.
type NewsItem struct {
	ID              NewsItemID
	BrandID         BrandID
	ChannelID       ChannelID
	Slug            string
	CreatedAt       time.Time
	PublishedAt     sql.NullTime
	FeaturedImageID sql.NullString
}

// PublicationState derives the item's observable publication state at
// the given moment.
func (i NewsItem) PublicationState(now time.Time) PublicationState {
	switch {
	case !i.PublishedAt.Valid:
		return PublicationStateDraft
	case i.PublishedAt.Time.After(now):
		return PublicationStateScheduled
	default:
		return PublicationStatePublished
	}
}

// IsPublished reports whether the item is published at the given moment.
func (i NewsItem) IsPublished(now time.Time) bool {
	return i.PublicationState(now) == PublicationStatePublished
}

// NewsItemVersion is a snapshot of a news item at a certain time.
// Versions are immutable once written.
type NewsItemVersion struct {
	ID         NewsItemVersionID
	ItemID     NewsItemID
	CreatedAt  time.Time
	CreatorID  UserID
	Title      string
	Body       string
	BodyFormat BodyFormat
}

// NewsImage is an image attached to a news item, addressed from
// templates by its per-item number.
type NewsImage struct {
	ID          NewsImageID
	ItemID      NewsItemID
	Number      int
	URLPath     string
	AltText     sql.NullString
	Caption     sql.NullString
	Attribution sql.NullString
}

// Headline is the reduced view of a news item used in listings.
type Headline struct {
	ItemID      NewsItemID
	Slug        string
	Title       string
	PublishedAt sql.NullTime
}

// Published reports whether the headline's item carries a publication
// timestamp at all.
func (h Headline) Published() bool {
	return h.PublishedAt.Valid
}

// RenderResult carries rendered HTML or the message of a contained
// render failure, never both.
type RenderResult struct {
	HTML string
	Err  string
}

// OK reports whether rendering succeeded.
func (r RenderResult) OK() bool {
	return r.Err == ""
}

// RenderedNewsItem is the derived view of a news item carrying HTML
// results (or contained errors) for its body and featured image.
type RenderedNewsItem struct {
	Item              NewsItem
	Title             string
	BodyHTML          RenderResult
	FeaturedImageHTML *RenderResult
	Images            []NewsImage
}
