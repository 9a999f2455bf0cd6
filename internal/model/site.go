// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package model

import "database/sql"

// Site is a public web presence of a brand. Pages belong to exactly
// one site; a site may additionally surface one news channel.
type Site struct {
	ID            SiteID
	BrandID       BrandID
	Title         string
	ServerName    string
	NewsChannelID sql.NullString
}
