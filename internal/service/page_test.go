// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byceps/byceps-go/internal/model"
)

func seedTestSite(t *testing.T, env *serviceTestEnv, siteID model.SiteID) {
	t.Helper()
	env.seedSite(t, model.Site{
		ID:         siteID,
		BrandID:    "acmecon",
		Title:      "ACMECon Website",
		ServerName: "www.acmecon.example",
	})
}

func TestPageServiceCreate(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	seedTestSite(t, env, "acmecon-website")

	page, version, err := env.pages.CreatePage(ctx, "acmecon-website", "imprint", "en", "/imprint",
		"user-1", PagePayload{Title: "Imprint", Body: "<p>Operated by ACME Inc.</p>"}, nil)
	require.NoError(t, err)

	assert.Equal(t, model.SiteID("acmecon-website"), page.SiteID)
	assert.Equal(t, "/imprint", page.URLPath)
	assert.Equal(t, "Imprint", version.Title)

	event, ok := env.sink.last(t).(model.PageCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, page.ID, event.PageID)
	assert.Equal(t, version.ID, event.PageVersionID)
}

func TestPageServiceCreateRejectsRelativeURLPath(t *testing.T) {
	env := newServiceTestEnv(t)
	seedTestSite(t, env, "acmecon-website")

	_, _, err := env.pages.CreatePage(context.Background(), "acmecon-website",
		"imprint", "en", "imprint", "user-1", PagePayload{Title: "Imprint"}, nil)

	var invalid model.InvalidURLPathError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "imprint", invalid.Value)
}

func TestPageServiceUpdateMovesURLPath(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	seedTestSite(t, env, "acmecon-website")

	page, _, err := env.pages.CreatePage(ctx, "acmecon-website", "imprint", "en", "/imprint",
		"user-1", PagePayload{Title: "Imprint", Body: "old"}, nil)
	require.NoError(t, err)

	env.clock.advance(time.Minute)
	_, version, err := env.pages.UpdatePage(ctx, page.ID, "/legal/imprint", "user-2",
		PagePayload{Title: "Imprint", Body: "new"}, nil)
	require.NoError(t, err)

	// The page is now served from the new path only.
	aggregate, found, err := env.pages.FindCurrentVersionForURLPath(ctx,
		"acmecon-website", "/legal/imprint", "en")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, version.ID, aggregate.Version.ID)
	assert.Equal(t, "new", aggregate.Version.Body)

	_, found, err = env.pages.FindCurrentVersionForURLPath(ctx, "acmecon-website", "/imprint", "en")
	require.NoError(t, err)
	assert.False(t, found)

	event, ok := env.sink.last(t).(model.PageUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, version.ID, event.PageVersionID)
}

func TestPageServiceSetPublishedUnknownPage(t *testing.T) {
	env := newServiceTestEnv(t)

	err := env.pages.SetPublished(context.Background(), "no-such-page", true)

	var notFound model.PageNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestPageServiceCopy(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	seedTestSite(t, env, "acmecon-website")
	seedTestSite(t, env, "acmecon-party")

	_, sourceVersion, err := env.pages.CreatePage(ctx, "acmecon-website", "imprint", "en", "/imprint",
		"user-1", PagePayload{
			Title: "Imprint",
			Head:  sql.NullString{String: "<style></style>", Valid: true},
			Body:  "<p>Operated by ACME Inc.</p>",
		}, nil)
	require.NoError(t, err)

	copied, copiedVersion, err := env.pages.CopyPage(ctx,
		"acmecon-website", "acmecon-party", "imprint", "en", nil)
	require.NoError(t, err)

	assert.Equal(t, model.SiteID("acmecon-party"), copied.SiteID)
	assert.Equal(t, "/imprint", copied.URLPath)
	assert.Equal(t, sourceVersion.Title, copiedVersion.Title)
	assert.Equal(t, sourceVersion.Head, copiedVersion.Head)
	assert.Equal(t, sourceVersion.Body, copiedVersion.Body)
	assert.Equal(t, sourceVersion.CreatorID, copiedVersion.CreatorID)
}

func TestPageServiceCopyMissingSource(t *testing.T) {
	env := newServiceTestEnv(t)
	seedTestSite(t, env, "acmecon-website")
	seedTestSite(t, env, "acmecon-party")

	_, _, err := env.pages.CopyPage(context.Background(),
		"acmecon-website", "acmecon-party", "imprint", "en", nil)

	var notFound model.PageNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, model.SiteID("acmecon-website"), notFound.SiteID)
}

func TestPageServiceCopyTargetTaken(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	seedTestSite(t, env, "acmecon-website")
	seedTestSite(t, env, "acmecon-party")

	_, _, err := env.pages.CreatePage(ctx, "acmecon-website", "imprint", "en", "/imprint",
		"user-1", PagePayload{Title: "Imprint"}, nil)
	require.NoError(t, err)
	_, _, err = env.pages.CreatePage(ctx, "acmecon-party", "imprint", "en", "/imprint",
		"user-1", PagePayload{Title: "Imprint"}, nil)
	require.NoError(t, err)

	_, _, err = env.pages.CopyPage(ctx, "acmecon-website", "acmecon-party", "imprint", "en", nil)

	var exists model.PageAlreadyExistsError
	assert.ErrorAs(t, err, &exists)
}

func TestPageServiceDelete(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	seedTestSite(t, env, "acmecon-website")

	page, _, err := env.pages.CreatePage(ctx, "acmecon-website", "imprint", "en", "/imprint",
		"user-1", PagePayload{Title: "Imprint"}, nil)
	require.NoError(t, err)

	require.NoError(t, env.pages.DeletePage(ctx, page.ID, nil))

	_, found, err := env.pages.FindPage(ctx, page.ID)
	require.NoError(t, err)
	assert.False(t, found)

	event, ok := env.sink.last(t).(model.PageDeletedEvent)
	require.True(t, ok)
	assert.Equal(t, page.ID, event.PageID)
}
