// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/store"
	"github.com/byceps/byceps-go/internal/testutil"
)

// fakeClock returns a fixed instant that tests can advance.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// seqIDGen issues deterministic ids.
type seqIDGen struct {
	n int
}

func (g *seqIDGen) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("00000000-0000-7000-8000-%012d", g.n), nil
}

// recordingSink captures emitted domain events.
type recordingSink struct {
	events []model.DomainEvent
}

func (s *recordingSink) Emit(_ context.Context, event model.DomainEvent) {
	s.events = append(s.events, event)
}

func (s *recordingSink) last(t *testing.T) model.DomainEvent {
	t.Helper()
	if len(s.events) == 0 {
		t.Fatal("no events emitted")
	}
	return s.events[len(s.events)-1]
}

// fakeSiteDirectory resolves sites from a map.
type fakeSiteDirectory struct {
	sites map[model.SiteID]model.Site
}

func (d *fakeSiteDirectory) GetSite(_ context.Context, id model.SiteID) (model.Site, error) {
	site, ok := d.sites[id]
	if !ok {
		return model.Site{}, model.SiteNotFoundError{ID: id}
	}
	return site, nil
}

// fakeUserDirectory resolves users from a map.
type fakeUserDirectory struct {
	users map[model.UserID]model.User
}

func (d *fakeUserDirectory) GetUser(_ context.Context, id model.UserID) (model.User, error) {
	user, ok := d.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("unknown user %q", id)
	}
	return user, nil
}

func (d *fakeUserDirectory) GetUsersIndexedByID(
	_ context.Context, ids []model.UserID,
) (map[model.UserID]model.User, error) {
	result := make(map[model.UserID]model.User, len(ids))
	for _, id := range ids {
		if user, ok := d.users[id]; ok {
			result[id] = user
		}
	}
	return result, nil
}

// passthroughRenderer renders item bodies verbatim.
type passthroughRenderer struct{}

func (passthroughRenderer) RenderItem(
	_ context.Context, item model.NewsItem, version model.NewsItemVersion, images []model.NewsImage,
) model.RenderedNewsItem {
	return model.RenderedNewsItem{
		Item:     item,
		Title:    version.Title,
		BodyHTML: model.RenderResult{HTML: version.Body},
		Images:   images,
	}
}

type serviceTestEnv struct {
	clock     *fakeClock
	sink      *recordingSink
	snippets  *SnippetService
	pages     *PageService
	news      *NewsService
	sites     *fakeSiteDirectory
	users     *fakeUserDirectory
	siteStore *store.SiteStore
}

// seedSite registers a site both in the database (page rows reference
// it) and in the site directory fake.
func (env *serviceTestEnv) seedSite(t *testing.T, site model.Site) {
	t.Helper()

	if err := env.siteStore.CreateSite(context.Background(), site); err != nil {
		t.Fatalf("CreateSite failed: %v", err)
	}
	env.sites.sites[site.ID] = site
}

func newServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db := testutil.TestDB(t)
	log := testutil.TestLogger()

	clock := newFakeClock()
	idGen := &seqIDGen{}
	sink := &recordingSink{}
	sites := &fakeSiteDirectory{sites: make(map[model.SiteID]model.Site)}
	users := &fakeUserDirectory{users: make(map[model.UserID]model.User)}

	news := NewNewsService(store.NewNewsStore(db), sites, users,
		passthroughRenderer{}, clock, idGen, sink, log)

	return &serviceTestEnv{
		clock:     clock,
		sink:      sink,
		snippets:  NewSnippetService(store.NewSnippetStore(db), clock, idGen, sink, log),
		pages:     NewPageService(store.NewPageStore(db), clock, idGen, sink, log),
		news:      news,
		sites:     sites,
		users:     users,
		siteStore: store.NewSiteStore(db),
	}
}
