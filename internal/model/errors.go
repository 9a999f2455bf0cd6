// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package model

import (
	"errors"
	"fmt"
)

// State violations
var (
	ErrNewsItemAlreadyPublished = errors.New("news item has already been published")
	ErrNewsItemNotPublished     = errors.New("news item is not published")
)

// ErrSnippetDepthExceeded indicates that snippet embedding exceeded the
// maximum nesting depth.
var ErrSnippetDepthExceeded = errors.New("snippet nesting depth exceeded")

// InvalidScopeError indicates a scope string that could not be parsed.
type InvalidScopeError struct {
	Value string
}

func (e InvalidScopeError) Error() string {
	return fmt.Sprintf("invalid scope %q", e.Value)
}

// InvalidURLPathError indicates a URL path that does not start with a
// slash.
type InvalidURLPathError struct {
	Value string
}

func (e InvalidURLPathError) Error() string {
	return fmt.Sprintf("invalid URL path %q: must begin with '/'", e.Value)
}

// InvalidLanguageCodeError indicates an empty or malformed language code.
type InvalidLanguageCodeError struct {
	Value string
}

func (e InvalidLanguageCodeError) Error() string {
	return fmt.Sprintf("invalid language code %q", e.Value)
}

// SnippetNotFoundError carries the lookup key of a snippet that could
// not be found.
type SnippetNotFoundError struct {
	Scope        Scope
	Name         string
	LanguageCode string
}

func (e SnippetNotFoundError) Error() string {
	return fmt.Sprintf("snippet %q (language %q) not found in scope %q",
		e.Name, e.LanguageCode, e.Scope)
}

// PageNotFoundError carries the lookup key of a page that could not be
// found. Either Name or URLPath is set, depending on the lookup.
type PageNotFoundError struct {
	SiteID       SiteID
	Name         string
	URLPath      string
	LanguageCode string
}

func (e PageNotFoundError) Error() string {
	if e.URLPath != "" {
		return fmt.Sprintf("page with URL path %q (language %q) not found for site %q",
			e.URLPath, e.LanguageCode, e.SiteID)
	}
	return fmt.Sprintf("page %q (language %q) not found for site %q",
		e.Name, e.LanguageCode, e.SiteID)
}

// SiteNotFoundError indicates an unknown site id.
type SiteNotFoundError struct {
	ID SiteID
}

func (e SiteNotFoundError) Error() string {
	return fmt.Sprintf("site %q not found", e.ID)
}

// NewsItemNotFoundError carries the lookup key of a news item that
// could not be found.
type NewsItemNotFoundError struct {
	ID   NewsItemID
	Slug string
}

func (e NewsItemNotFoundError) Error() string {
	if e.Slug != "" {
		return fmt.Sprintf("news item with slug %q not found", e.Slug)
	}
	return fmt.Sprintf("news item %q not found", e.ID)
}

// SnippetAlreadyExistsError indicates a conflicting snippet identity.
type SnippetAlreadyExistsError struct {
	Scope        Scope
	Name         string
	LanguageCode string
}

func (e SnippetAlreadyExistsError) Error() string {
	return fmt.Sprintf("snippet %q (language %q) already exists in scope %q",
		e.Name, e.LanguageCode, e.Scope)
}

// PageAlreadyExistsError indicates a conflicting page identity, either
// by name or by URL path.
type PageAlreadyExistsError struct {
	SiteID       SiteID
	Name         string
	URLPath      string
	LanguageCode string
}

func (e PageAlreadyExistsError) Error() string {
	return fmt.Sprintf("page %q (language %q) already exists for site %q",
		e.Name, e.LanguageCode, e.SiteID)
}

// InvalidSlugError indicates a malformed news slug.
type InvalidSlugError struct {
	Slug string
}

func (e InvalidSlugError) Error() string {
	return fmt.Sprintf("invalid slug %q", e.Slug)
}

// SlugUnavailableError indicates a news slug that is already taken for
// the brand.
type SlugUnavailableError struct {
	BrandID BrandID
	Slug    string
}

func (e SlugUnavailableError) Error() string {
	return fmt.Sprintf("slug %q is not available for brand %q", e.Slug, e.BrandID)
}

// DeletionFailedError indicates that an entity could not be deleted,
// typically because foreign references to it still exist.
type DeletionFailedError struct {
	Reason string
	Err    error
}

func (e DeletionFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("deletion failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("deletion failed: %s", e.Reason)
}

func (e DeletionFailedError) Unwrap() error {
	return e.Err
}

// SnippetCycleError indicates that snippet embedding re-entered a
// snippet that is already being rendered.
type SnippetCycleError struct {
	Scope        Scope
	Name         string
	LanguageCode string
}

func (e SnippetCycleError) Error() string {
	return fmt.Sprintf("snippet embedding cycle at %q (language %q) in scope %q",
		e.Name, e.LanguageCode, e.Scope)
}

// UnknownImageNumberError indicates a render_image call referencing an
// image number the news item does not have.
type UnknownImageNumberError struct {
	Number int
}

func (e UnknownImageNumberError) Error() string {
	return fmt.Sprintf("unknown image number %d", e.Number)
}

// TemplateParseError indicates that template source could not be parsed.
type TemplateParseError struct {
	Err error
}

func (e TemplateParseError) Error() string {
	return fmt.Sprintf("parsing template: %v", e.Err)
}

func (e TemplateParseError) Unwrap() error {
	return e.Err
}

// TemplateRenderError indicates that an otherwise valid template failed
// during execution.
type TemplateRenderError struct {
	Err error
}

func (e TemplateRenderError) Error() string {
	return fmt.Sprintf("rendering template: %v", e.Err)
}

func (e TemplateRenderError) Unwrap() error {
	return e.Err
}
