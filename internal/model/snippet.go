// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package model

import "time"

// Snippet is a named piece of template source, scoped and localized.
// Each snippet is expected to have at least one version (the initial
// one).
type Snippet struct {
	ID           SnippetID
	Scope        Scope
	Name         string
	LanguageCode string
}

// SnippetVersion is a snapshot of a snippet at a certain time.
// Versions are immutable once written.
type SnippetVersion struct {
	ID        SnippetVersionID
	SnippetID SnippetID
	CreatedAt time.Time
	CreatorID UserID
	Body      string
}

// SnippetWithCurrentVersion pairs a snippet with its current version,
// as listed in the admin UI.
type SnippetWithCurrentVersion struct {
	Snippet        Snippet
	CurrentVersion SnippetVersion
}
