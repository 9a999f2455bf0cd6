// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

// Package service provides the business logic for versioned content:
// snippets, pages, and news items.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/store"
)

// Clock supplies the current time. Services never call time.Now
// directly so tests can control publication timing.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// IDGenerator produces new entity and version ids.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator produces time-ordered UUIDv7 ids, so that version ids
// sort by creation time.
type UUIDGenerator struct{}

// NewID returns a new UUIDv7 string.
func (UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating uuid: %w", err)
	}
	return id.String(), nil
}

// EventSink receives domain events emitted by the content services.
// Implementations must not block the emitting operation.
type EventSink interface {
	Emit(ctx context.Context, event model.DomainEvent)
}

// NopEventSink discards all events.
type NopEventSink struct{}

// Emit implements EventSink.
func (NopEventSink) Emit(context.Context, model.DomainEvent) {}

// MultiEventSink fans an event out to several sinks in order.
type MultiEventSink []EventSink

// Emit implements EventSink.
func (m MultiEventSink) Emit(ctx context.Context, event model.DomainEvent) {
	for _, sink := range m {
		sink.Emit(ctx, event)
	}
}

// UserDirectory resolves user ids to directory entries.
type UserDirectory interface {
	GetUser(ctx context.Context, id model.UserID) (model.User, error)
	GetUsersIndexedByID(ctx context.Context, ids []model.UserID) (map[model.UserID]model.User, error)
}

// SiteDirectory resolves site ids, used among other things to derive
// external URLs for announcements.
type SiteDirectory interface {
	GetSite(ctx context.Context, id model.SiteID) (model.Site, error)
}

// StoreUserDirectory is the database-backed user directory.
type StoreUserDirectory struct {
	users *store.UserStore
}

// NewStoreUserDirectory creates a user directory backed by the store.
func NewStoreUserDirectory(users *store.UserStore) *StoreUserDirectory {
	return &StoreUserDirectory{users: users}
}

// GetUser implements UserDirectory.
func (d *StoreUserDirectory) GetUser(ctx context.Context, id model.UserID) (model.User, error) {
	user, err := d.users.FindUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("unknown user %q", id)
		}
		return model.User{}, fmt.Errorf("finding user: %w", err)
	}
	return user, nil
}

// GetUsersIndexedByID implements UserDirectory.
func (d *StoreUserDirectory) GetUsersIndexedByID(
	ctx context.Context, ids []model.UserID,
) (map[model.UserID]model.User, error) {
	return d.users.GetUsersByIDs(ctx, ids)
}

// StoreSiteDirectory is the database-backed site directory.
type StoreSiteDirectory struct {
	sites *store.SiteStore
}

// NewStoreSiteDirectory creates a site directory backed by the store.
func NewStoreSiteDirectory(sites *store.SiteStore) *StoreSiteDirectory {
	return &StoreSiteDirectory{sites: sites}
}

// GetSite implements SiteDirectory.
func (d *StoreSiteDirectory) GetSite(ctx context.Context, id model.SiteID) (model.Site, error) {
	site, err := d.sites.FindSite(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Site{}, model.SiteNotFoundError{ID: id}
		}
		return model.Site{}, fmt.Errorf("finding site: %w", err)
	}
	return site, nil
}
