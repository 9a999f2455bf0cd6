// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package model

import (
	"database/sql"
	"time"
)

// Page is a site-scoped, URL-path-addressable content entity.
type Page struct {
	ID           PageID
	SiteID       SiteID
	Name         string
	LanguageCode string
	URLPath      string
	Published    bool
	NavMenuID    sql.NullString
}

// PageVersion is a snapshot of a page at a certain time. Versions are
// immutable once written.
type PageVersion struct {
	ID        PageVersionID
	PageID    PageID
	CreatedAt time.Time
	CreatorID UserID
	Title     string
	Head      sql.NullString
	Body      string
}

// PageAggregate combines a page with one of its versions, typically
// the current one.
type PageAggregate struct {
	Page    Page
	Version PageVersion
}
