// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package model

// Entity and version identifiers are UUIDv7 strings; brand, site, and
// channel identifiers are meaningful strings chosen by operators.
type (
	BrandID   string
	SiteID    string
	UserID    string
	ChannelID string

	SnippetID        string
	SnippetVersionID string

	PageID        string
	PageVersionID string

	NewsItemID        string
	NewsItemVersionID string
	NewsImageID       string
)
