// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/store"
)

// PageService manages pages and their versions.
type PageService struct {
	pages  *store.PageStore
	clock  Clock
	idGen  IDGenerator
	events EventSink
	log    *slog.Logger
}

// NewPageService creates a new PageService.
func NewPageService(
	pages *store.PageStore, clock Clock, idGen IDGenerator,
	events EventSink, log *slog.Logger,
) *PageService {
	return &PageService{
		pages:  pages,
		clock:  clock,
		idGen:  idGen,
		events: events,
		log:    log,
	}
}

// PagePayload is the version content of a page.
type PagePayload struct {
	Title string
	Head  sql.NullString
	Body  string
}

// CreatePage creates a page with an initial version and emits a
// creation event. Both identity keys must be available; the checks
// compare case-insensitively.
func (s *PageService) CreatePage(
	ctx context.Context, siteID model.SiteID, name, languageCode, urlPath string,
	creatorID model.UserID, payload PagePayload, initiator *model.Initiator,
) (model.Page, model.PageVersion, error) {
	if err := validateURLPath(urlPath); err != nil {
		return model.Page{}, model.PageVersion{}, err
	}
	if languageCode == "" {
		return model.Page{}, model.PageVersion{}, model.InvalidLanguageCodeError{Value: languageCode}
	}

	pageID, err := s.idGen.NewID()
	if err != nil {
		return model.Page{}, model.PageVersion{}, err
	}
	versionID, err := s.idGen.NewID()
	if err != nil {
		return model.Page{}, model.PageVersion{}, err
	}
	now := s.clock.Now()

	err = s.pages.CreatePage(ctx, store.CreatePageParams{
		PageID:       model.PageID(pageID),
		VersionID:    model.PageVersionID(versionID),
		SiteID:       siteID,
		Name:         name,
		LanguageCode: languageCode,
		URLPath:      urlPath,
		CreatorID:    creatorID,
		CreatedAt:    now,
		Title:        payload.Title,
		Head:         payload.Head,
		Body:         payload.Body,
	})
	if err != nil {
		return model.Page{}, model.PageVersion{}, err
	}

	page := model.Page{
		ID:           model.PageID(pageID),
		SiteID:       siteID,
		Name:         name,
		LanguageCode: languageCode,
		URLPath:      urlPath,
	}
	version := model.PageVersion{
		ID:        model.PageVersionID(versionID),
		PageID:    page.ID,
		CreatedAt: now,
		CreatorID: creatorID,
		Title:     payload.Title,
		Head:      payload.Head,
		Body:      payload.Body,
	}

	s.log.Info("page created",
		"page_id", page.ID, "site_id", siteID,
		"name", name, "language_code", languageCode, "url_path", urlPath)
	s.events.Emit(ctx, model.PageCreatedEvent{
		EventBase:     model.NewEventBase(now, initiator),
		PageID:        page.ID,
		SiteID:        siteID,
		PageName:      name,
		LanguageCode:  languageCode,
		PageVersionID: version.ID,
	})

	return page, version, nil
}

// UpdatePage appends a new version to the page and makes it current.
// A non-empty urlPath additionally moves the page to that path; the
// move and the version append commit together or not at all.
func (s *PageService) UpdatePage(
	ctx context.Context, pageID model.PageID, urlPath string,
	creatorID model.UserID, payload PagePayload, initiator *model.Initiator,
) (model.Page, model.PageVersion, error) {
	if urlPath != "" {
		if err := validateURLPath(urlPath); err != nil {
			return model.Page{}, model.PageVersion{}, err
		}
	}

	page, err := s.GetPage(ctx, pageID)
	if err != nil {
		return model.Page{}, model.PageVersion{}, err
	}

	versionID, err := s.idGen.NewID()
	if err != nil {
		return model.Page{}, model.PageVersion{}, err
	}
	now := s.clock.Now()

	err = s.pages.AppendVersion(ctx, store.AppendPageVersionParams{
		PageID:    pageID,
		VersionID: model.PageVersionID(versionID),
		URLPath:   urlPath,
		CreatorID: creatorID,
		CreatedAt: now,
		Title:     payload.Title,
		Head:      payload.Head,
		Body:      payload.Body,
	})
	if err != nil {
		return model.Page{}, model.PageVersion{}, err
	}

	if urlPath != "" {
		page.URLPath = urlPath
	}
	version := model.PageVersion{
		ID:        model.PageVersionID(versionID),
		PageID:    pageID,
		CreatedAt: now,
		CreatorID: creatorID,
		Title:     payload.Title,
		Head:      payload.Head,
		Body:      payload.Body,
	}

	s.log.Info("page updated",
		"page_id", pageID, "page_version_id", version.ID, "url_path", page.URLPath)
	s.events.Emit(ctx, model.PageUpdatedEvent{
		EventBase:     model.NewEventBase(now, initiator),
		PageID:        pageID,
		SiteID:        page.SiteID,
		PageName:      page.Name,
		LanguageCode:  page.LanguageCode,
		PageVersionID: version.ID,
	})

	return page, version, nil
}

// DeletePage removes the page and all of its versions. The removal is
// all-or-nothing; a failure leaves everything in place.
func (s *PageService) DeletePage(
	ctx context.Context, pageID model.PageID, initiator *model.Initiator,
) error {
	page, err := s.GetPage(ctx, pageID)
	if err != nil {
		return err
	}

	if err := s.pages.DeletePage(ctx, pageID); err != nil {
		return model.DeletionFailedError{
			Reason: fmt.Sprintf("page %s could not be deleted", pageID),
			Err:    err,
		}
	}

	s.log.Info("page deleted",
		"page_id", pageID, "site_id", page.SiteID, "name", page.Name)
	s.events.Emit(ctx, model.PageDeletedEvent{
		EventBase:    model.NewEventBase(s.clock.Now(), initiator),
		PageID:       pageID,
		SiteID:       page.SiteID,
		PageName:     page.Name,
		LanguageCode: page.LanguageCode,
	})

	return nil
}

// FindPage returns the page, or false when it does not exist.
func (s *PageService) FindPage(ctx context.Context, pageID model.PageID) (model.Page, bool, error) {
	page, err := s.pages.FindPage(ctx, pageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Page{}, false, nil
		}
		return model.Page{}, false, fmt.Errorf("finding page: %w", err)
	}
	return page, true, nil
}

// GetPage returns the page or a PageNotFoundError.
func (s *PageService) GetPage(ctx context.Context, pageID model.PageID) (model.Page, error) {
	page, found, err := s.FindPage(ctx, pageID)
	if err != nil {
		return model.Page{}, err
	}
	if !found {
		return model.Page{}, model.PageNotFoundError{Name: string(pageID)}
	}
	return page, nil
}

// FindCurrentVersionForName returns the page with that name for the
// site and language together with its current version, or false when
// there is none.
func (s *PageService) FindCurrentVersionForName(
	ctx context.Context, siteID model.SiteID, name, languageCode string,
) (model.PageAggregate, bool, error) {
	aggregate, err := s.pages.FindCurrentVersionForName(ctx, siteID, name, languageCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PageAggregate{}, false, nil
		}
		return model.PageAggregate{}, false, fmt.Errorf("finding current page version: %w", err)
	}
	return aggregate, true, nil
}

// FindCurrentVersionForURLPath returns the page at that URL path for
// the site and language together with its current version, or false
// when there is none. This is the authoritative lookup used when
// serving pages.
func (s *PageService) FindCurrentVersionForURLPath(
	ctx context.Context, siteID model.SiteID, urlPath, languageCode string,
) (model.PageAggregate, bool, error) {
	aggregate, err := s.pages.FindCurrentVersionForURLPath(ctx, siteID, urlPath, languageCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PageAggregate{}, false, nil
		}
		return model.PageAggregate{}, false, fmt.Errorf("finding current page version: %w", err)
	}
	return aggregate, true, nil
}

// GetVersion returns the version with that id, regardless of whether
// it is current.
func (s *PageService) GetVersion(ctx context.Context, versionID model.PageVersionID) (model.PageVersion, error) {
	version, err := s.pages.FindVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PageVersion{}, model.PageNotFoundError{Name: string(versionID)}
		}
		return model.PageVersion{}, fmt.Errorf("finding page version: %w", err)
	}
	return version, nil
}

// GetVersions returns all versions of the page, newest first.
func (s *PageService) GetVersions(ctx context.Context, pageID model.PageID) ([]model.PageVersion, error) {
	return s.pages.ListVersions(ctx, pageID)
}

// GetPagesForSite returns all pages of the site, for admin listings.
func (s *PageService) GetPagesForSite(ctx context.Context, siteID model.SiteID) ([]model.Page, error) {
	return s.pages.GetPagesForSite(ctx, siteID)
}

// GetURLPathsByPageName returns the name to URL path mapping for the
// site, used to resolve page links during rendering.
func (s *PageService) GetURLPathsByPageName(ctx context.Context, siteID model.SiteID) (map[string]string, error) {
	return s.pages.GetURLPathsByPageName(ctx, siteID)
}

// SetNavMenuID binds the page to a navigation menu, or unbinds it when
// navMenuID is invalid.
func (s *PageService) SetNavMenuID(ctx context.Context, pageID model.PageID, navMenuID sql.NullString) error {
	err := s.pages.SetNavMenuID(ctx, pageID, navMenuID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PageNotFoundError{Name: string(pageID)}
		}
		return err
	}
	return nil
}

// SetPublished flips the page's published flag.
func (s *PageService) SetPublished(ctx context.Context, pageID model.PageID, published bool) error {
	err := s.pages.SetPublished(ctx, pageID, published)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PageNotFoundError{Name: string(pageID)}
		}
		return err
	}
	return nil
}

// CopyPage copies the page identified by name and language from the
// source site to the target site. The new page starts with the
// source's current version payload, URL path, and original creator.
func (s *PageService) CopyPage(
	ctx context.Context, sourceSiteID, targetSiteID model.SiteID,
	name, languageCode string, initiator *model.Initiator,
) (model.Page, model.PageVersion, error) {
	source, found, err := s.FindCurrentVersionForName(ctx, sourceSiteID, name, languageCode)
	if err != nil {
		return model.Page{}, model.PageVersion{}, err
	}
	if !found {
		return model.Page{}, model.PageVersion{}, model.PageNotFoundError{
			SiteID:       sourceSiteID,
			Name:         name,
			LanguageCode: languageCode,
		}
	}

	return s.CreatePage(ctx, targetSiteID, name, languageCode, source.Page.URLPath,
		source.Version.CreatorID, PagePayload{
			Title: source.Version.Title,
			Head:  source.Version.Head,
			Body:  source.Version.Body,
		}, initiator)
}

func validateURLPath(urlPath string) error {
	if !strings.HasPrefix(urlPath, "/") {
		return model.InvalidURLPathError{Value: urlPath}
	}
	return nil
}
