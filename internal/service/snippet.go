// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/store"
)

// SnippetService manages snippets and their versions.
type SnippetService struct {
	snippets *store.SnippetStore
	clock    Clock
	idGen    IDGenerator
	events   EventSink
	log      *slog.Logger
}

// NewSnippetService creates a new SnippetService.
func NewSnippetService(
	snippets *store.SnippetStore, clock Clock, idGen IDGenerator,
	events EventSink, log *slog.Logger,
) *SnippetService {
	return &SnippetService{
		snippets: snippets,
		clock:    clock,
		idGen:    idGen,
		events:   events,
		log:      log,
	}
}

// CreateSnippet creates a snippet with an initial version and emits a
// creation event. Fails with SnippetAlreadyExistsError if the identity
// key is taken, compared case-insensitively.
func (s *SnippetService) CreateSnippet(
	ctx context.Context, scope model.Scope, name, languageCode string,
	creatorID model.UserID, body string, initiator *model.Initiator,
) (model.Snippet, model.SnippetVersion, error) {
	if languageCode == "" {
		return model.Snippet{}, model.SnippetVersion{},
			model.InvalidLanguageCodeError{Value: languageCode}
	}

	snippetID, err := s.idGen.NewID()
	if err != nil {
		return model.Snippet{}, model.SnippetVersion{}, err
	}
	versionID, err := s.idGen.NewID()
	if err != nil {
		return model.Snippet{}, model.SnippetVersion{}, err
	}
	now := s.clock.Now()

	err = s.snippets.CreateSnippet(ctx, store.CreateSnippetParams{
		SnippetID:    model.SnippetID(snippetID),
		VersionID:    model.SnippetVersionID(versionID),
		Scope:        scope,
		Name:         name,
		LanguageCode: languageCode,
		CreatorID:    creatorID,
		CreatedAt:    now,
		Body:         body,
	})
	if err != nil {
		return model.Snippet{}, model.SnippetVersion{}, err
	}

	snippet := model.Snippet{
		ID:           model.SnippetID(snippetID),
		Scope:        scope,
		Name:         name,
		LanguageCode: languageCode,
	}
	version := model.SnippetVersion{
		ID:        model.SnippetVersionID(versionID),
		SnippetID: snippet.ID,
		CreatedAt: now,
		CreatorID: creatorID,
		Body:      body,
	}

	s.log.Info("snippet created",
		"snippet_id", snippet.ID, "scope", scope.String(),
		"name", name, "language_code", languageCode)
	s.events.Emit(ctx, model.SnippetCreatedEvent{
		EventBase:        model.NewEventBase(now, initiator),
		SnippetID:        snippet.ID,
		Scope:            scope,
		SnippetName:      name,
		LanguageCode:     languageCode,
		SnippetVersionID: version.ID,
	})

	return snippet, version, nil
}

// UpdateSnippet appends a new version to the snippet and makes it
// current.
func (s *SnippetService) UpdateSnippet(
	ctx context.Context, snippetID model.SnippetID,
	creatorID model.UserID, body string, initiator *model.Initiator,
) (model.Snippet, model.SnippetVersion, error) {
	snippet, err := s.GetSnippet(ctx, snippetID)
	if err != nil {
		return model.Snippet{}, model.SnippetVersion{}, err
	}

	versionID, err := s.idGen.NewID()
	if err != nil {
		return model.Snippet{}, model.SnippetVersion{}, err
	}
	now := s.clock.Now()

	err = s.snippets.AppendVersion(ctx, store.AppendSnippetVersionParams{
		SnippetID: snippetID,
		VersionID: model.SnippetVersionID(versionID),
		CreatorID: creatorID,
		CreatedAt: now,
		Body:      body,
	})
	if err != nil {
		return model.Snippet{}, model.SnippetVersion{}, err
	}

	version := model.SnippetVersion{
		ID:        model.SnippetVersionID(versionID),
		SnippetID: snippetID,
		CreatedAt: now,
		CreatorID: creatorID,
		Body:      body,
	}

	s.log.Info("snippet updated",
		"snippet_id", snippetID, "snippet_version_id", version.ID)
	s.events.Emit(ctx, model.SnippetUpdatedEvent{
		EventBase:        model.NewEventBase(now, initiator),
		SnippetID:        snippetID,
		Scope:            snippet.Scope,
		SnippetName:      snippet.Name,
		LanguageCode:     snippet.LanguageCode,
		SnippetVersionID: version.ID,
	})

	return snippet, version, nil
}

// DeleteSnippet removes the snippet and all of its versions. The
// removal is all-or-nothing; a failure leaves everything in place.
func (s *SnippetService) DeleteSnippet(
	ctx context.Context, snippetID model.SnippetID, initiator *model.Initiator,
) error {
	snippet, err := s.GetSnippet(ctx, snippetID)
	if err != nil {
		return err
	}

	if err := s.snippets.DeleteSnippet(ctx, snippetID); err != nil {
		return model.DeletionFailedError{
			Reason: fmt.Sprintf("snippet %s could not be deleted", snippetID),
			Err:    err,
		}
	}

	s.log.Info("snippet deleted",
		"snippet_id", snippetID, "scope", snippet.Scope.String(), "name", snippet.Name)
	s.events.Emit(ctx, model.SnippetDeletedEvent{
		EventBase:    model.NewEventBase(s.clock.Now(), initiator),
		SnippetID:    snippetID,
		Scope:        snippet.Scope,
		SnippetName:  snippet.Name,
		LanguageCode: snippet.LanguageCode,
	})

	return nil
}

// FindSnippet returns the snippet, or false when it does not exist.
func (s *SnippetService) FindSnippet(ctx context.Context, snippetID model.SnippetID) (model.Snippet, bool, error) {
	snippet, err := s.snippets.FindSnippet(ctx, snippetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Snippet{}, false, nil
		}
		return model.Snippet{}, false, fmt.Errorf("finding snippet: %w", err)
	}
	return snippet, true, nil
}

// GetSnippet returns the snippet or a SnippetNotFoundError.
func (s *SnippetService) GetSnippet(ctx context.Context, snippetID model.SnippetID) (model.Snippet, error) {
	snippet, found, err := s.FindSnippet(ctx, snippetID)
	if err != nil {
		return model.Snippet{}, err
	}
	if !found {
		return model.Snippet{}, model.SnippetNotFoundError{Name: string(snippetID)}
	}
	return snippet, nil
}

// FindCurrentVersion returns the current version of the snippet with
// that name inside the scope, or false when there is none. The lookup
// compares byte-for-byte.
func (s *SnippetService) FindCurrentVersion(
	ctx context.Context, scope model.Scope, name, languageCode string,
) (model.SnippetVersion, bool, error) {
	version, err := s.snippets.FindCurrentVersion(ctx, scope, name, languageCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.SnippetVersion{}, false, nil
		}
		return model.SnippetVersion{}, false, fmt.Errorf("finding current snippet version: %w", err)
	}
	return version, true, nil
}

// GetCurrentVersion returns the current version of the snippet with
// that name inside the scope, or a SnippetNotFoundError.
func (s *SnippetService) GetCurrentVersion(
	ctx context.Context, scope model.Scope, name, languageCode string,
) (model.SnippetVersion, error) {
	version, found, err := s.FindCurrentVersion(ctx, scope, name, languageCode)
	if err != nil {
		return model.SnippetVersion{}, err
	}
	if !found {
		return model.SnippetVersion{}, model.SnippetNotFoundError{
			Scope:        scope,
			Name:         name,
			LanguageCode: languageCode,
		}
	}
	return version, nil
}

// GetVersion returns the version with that id, regardless of whether
// it is current.
func (s *SnippetService) GetVersion(ctx context.Context, versionID model.SnippetVersionID) (model.SnippetVersion, error) {
	version, err := s.snippets.FindVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.SnippetVersion{}, model.SnippetNotFoundError{Name: string(versionID)}
		}
		return model.SnippetVersion{}, fmt.Errorf("finding snippet version: %w", err)
	}
	return version, nil
}

// GetVersions returns all versions of the snippet, newest first.
func (s *SnippetService) GetVersions(ctx context.Context, snippetID model.SnippetID) ([]model.SnippetVersion, error) {
	return s.snippets.ListVersions(ctx, snippetID)
}

// GetSnippetsForScopeWithCurrentVersions returns all snippets of the
// scope with their current versions, for admin listings.
func (s *SnippetService) GetSnippetsForScopeWithCurrentVersions(
	ctx context.Context, scope model.Scope,
) ([]model.SnippetWithCurrentVersion, error) {
	return s.snippets.GetSnippetsForScopeWithCurrentVersions(ctx, scope)
}

// GetAllScopes returns the distinct scopes that contain at least one
// snippet.
func (s *SnippetService) GetAllScopes(ctx context.Context) ([]model.Scope, error) {
	return s.snippets.GetAllScopes(ctx)
}

// Search returns the snippets whose current version body contains the
// term, optionally restricted to a scope. The match is a plain
// case-sensitive substring scan.
func (s *SnippetService) Search(
	ctx context.Context, term string, scope *model.Scope,
) ([]model.SnippetWithCurrentVersion, error) {
	return s.snippets.Search(ctx, term, scope)
}

// CopySnippet copies the snippet identified by name and language from
// the source scope into the target scope. The new snippet starts with
// the source's current body and original creator. Fails with
// SnippetNotFoundError when the source is absent and with
// SnippetAlreadyExistsError when the target key is taken.
func (s *SnippetService) CopySnippet(
	ctx context.Context, sourceScope, targetScope model.Scope,
	name, languageCode string, initiator *model.Initiator,
) (model.Snippet, model.SnippetVersion, error) {
	sourceVersion, err := s.GetCurrentVersion(ctx, sourceScope, name, languageCode)
	if err != nil {
		return model.Snippet{}, model.SnippetVersion{}, err
	}

	return s.CreateSnippet(ctx, targetScope, name, languageCode,
		sourceVersion.CreatorID, sourceVersion.Body, initiator)
}
