// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/byceps/byceps-go/internal/cache"
	"github.com/byceps/byceps-go/internal/i18n"
	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/render"
	"github.com/byceps/byceps-go/internal/service"
	"github.com/byceps/byceps-go/internal/store"
	"github.com/byceps/byceps-go/internal/testutil"
)

type testEnv struct {
	handler *Handler
	router  chi.Router
	pages   *service.PageService
	news    *service.NewsService
	sites   *store.SiteStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.TestDB(t)
	log := testutil.TestLogger()

	siteStore := store.NewSiteStore(db)
	sites := service.NewStoreSiteDirectory(siteStore)
	users := service.NewStoreUserDirectory(store.NewUserStore(db))

	clock := service.SystemClock{}
	idGen := service.UUIDGenerator{}
	sink := service.NopEventSink{}

	snippets := service.NewSnippetService(store.NewSnippetStore(db), clock, idGen, sink, log)
	pages := service.NewPageService(store.NewPageStore(db), clock, idGen, sink, log)

	renderer := render.New(snippets, cache.NewResolver(pages), "en", log)
	news := service.NewNewsService(store.NewNewsStore(db), sites, users, renderer, clock, idGen, sink, log)

	negotiator, err := i18n.NewNegotiator([]string{"en", "de"}, "en")
	if err != nil {
		t.Fatalf("NewNegotiator failed: %v", err)
	}

	h := New(pages, news, sites, renderer, negotiator, log)

	r := chi.NewRouter()
	r.Route("/{site_id}", func(r chi.Router) {
		r.Get("/news", h.ServeNewsIndex)
		r.Get("/news/{slug}", h.ServeNewsItem)
		r.Get("/*", h.ServePage)
	})

	return &testEnv{
		handler: h,
		router:  r,
		pages:   pages,
		news:    news,
		sites:   siteStore,
	}
}

func (env *testEnv) createSite(t *testing.T, siteID model.SiteID, newsChannelID string) {
	t.Helper()

	site := model.Site{
		ID:         siteID,
		BrandID:    "acmecon",
		Title:      "ACMECon Website",
		ServerName: "www.acmecon.example",
	}
	if newsChannelID != "" {
		site.NewsChannelID = sql.NullString{String: newsChannelID, Valid: true}
	}
	if err := env.sites.CreateSite(context.Background(), site); err != nil {
		t.Fatalf("CreateSite failed: %v", err)
	}
}

func (env *testEnv) createPage(
	t *testing.T, siteID model.SiteID, name, languageCode, urlPath, body string,
) {
	t.Helper()

	_, _, err := env.pages.CreatePage(context.Background(), siteID, name, languageCode, urlPath,
		"user-1", service.PagePayload{Title: "Test Page", Body: body}, nil)
	if err != nil {
		t.Fatalf("CreatePage failed: %v", err)
	}
}

func (env *testEnv) createNewsItem(
	t *testing.T, channelID model.ChannelID, slug, title string, publish bool,
) model.NewsItem {
	t.Helper()
	ctx := context.Background()

	item, _, err := env.news.CreateItem(ctx, channelID, slug, "user-1", service.NewsItemPayload{
		Title:      title,
		Body:       "<p>Read all about it.</p>",
		BodyFormat: model.BodyFormatHTML,
	})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if publish {
		if _, err := env.news.Publish(ctx, item.ID, time.Time{}, nil); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}
	return item
}

func (env *testEnv) get(path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for key, values := range header {
		req.Header[key] = values
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

func TestServePage(t *testing.T) {
	env := newTestEnv(t)
	env.createSite(t, "acmecon-website", "")
	env.createPage(t, "acmecon-website", "imprint", "en", "/imprint", "<p>Operated by ACME Inc.</p>")

	w := env.get("/acmecon-website/imprint", nil)

	assertStatus(t, w.Code, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q; want text/html", ct)
	}
	if !strings.Contains(w.Body.String(), "Operated by ACME Inc.") {
		t.Errorf("body does not contain page content: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "<title>Test Page</title>") {
		t.Errorf("body does not contain page title: %s", w.Body.String())
	}
}

func TestServePageFallsBackToDefaultLanguage(t *testing.T) {
	env := newTestEnv(t)
	env.createSite(t, "acmecon-website", "")
	env.createPage(t, "acmecon-website", "imprint", "en", "/imprint", "<p>English only.</p>")

	header := http.Header{"Accept-Language": {"de-DE, de;q=0.9"}}
	w := env.get("/acmecon-website/imprint", header)

	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), "English only.") {
		t.Errorf("fallback page not served: %s", w.Body.String())
	}
}

func TestServePagePrefersNegotiatedLanguage(t *testing.T) {
	env := newTestEnv(t)
	env.createSite(t, "acmecon-website", "")
	env.createPage(t, "acmecon-website", "imprint", "en", "/imprint", "<p>English version.</p>")
	env.createPage(t, "acmecon-website", "impressum", "de", "/imprint", "<p>Deutsche Version.</p>")

	header := http.Header{"Accept-Language": {"de-DE, de;q=0.9"}}
	w := env.get("/acmecon-website/imprint", header)

	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), "Deutsche Version.") {
		t.Errorf("negotiated language page not served: %s", w.Body.String())
	}
}

func TestServePageNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.createSite(t, "acmecon-website", "")

	w := env.get("/acmecon-website/no-such-page", nil)

	assertStatus(t, w.Code, http.StatusNotFound)
}

func TestServePageRenderFailure(t *testing.T) {
	env := newTestEnv(t)
	env.createSite(t, "acmecon-website", "")
	env.createPage(t, "acmecon-website", "broken", "en", "/broken",
		`{{ render_snippet "missing" }}`)

	w := env.get("/acmecon-website/broken", nil)

	assertStatus(t, w.Code, http.StatusInternalServerError)
	if !strings.Contains(w.Body.String(), "could not be rendered") {
		t.Errorf("error page not served: %s", w.Body.String())
	}
}

func TestServeNewsItem(t *testing.T) {
	env := newTestEnv(t)
	env.createSite(t, "acmecon-website", "acmecon")
	mustCreateChannel(t, env, "acmecon")
	env.createNewsItem(t, "acmecon", "doors-open", "Doors Open", true)

	w := env.get("/acmecon-website/news/doors-open", nil)

	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), "<h1>Doors Open</h1>") {
		t.Errorf("item title missing: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Read all about it.") {
		t.Errorf("item body missing: %s", w.Body.String())
	}
}

func TestServeNewsItemHidesDrafts(t *testing.T) {
	env := newTestEnv(t)
	env.createSite(t, "acmecon-website", "acmecon")
	mustCreateChannel(t, env, "acmecon")
	env.createNewsItem(t, "acmecon", "surprise", "Surprise Act", false)

	w := env.get("/acmecon-website/news/surprise", nil)

	assertStatus(t, w.Code, http.StatusNotFound)
}

func TestServeNewsItemWithoutChannel(t *testing.T) {
	env := newTestEnv(t)
	env.createSite(t, "acmecon-website", "")

	w := env.get("/acmecon-website/news/anything", nil)

	assertStatus(t, w.Code, http.StatusNotFound)
}

func TestServeNewsItemUnknownSite(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/no-such-site/news/anything", nil)

	assertStatus(t, w.Code, http.StatusNotFound)
}

func TestServeNewsIndex(t *testing.T) {
	env := newTestEnv(t)
	env.createSite(t, "acmecon-website", "acmecon")
	mustCreateChannel(t, env, "acmecon")
	env.createNewsItem(t, "acmecon", "doors-open", "Doors Open", true)
	env.createNewsItem(t, "acmecon", "surprise", "Surprise Act", false)

	w := env.get("/acmecon-website/news", nil)

	assertStatus(t, w.Code, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, `<a href="/acmecon-website/news/doors-open">Doors Open</a>`) {
		t.Errorf("published headline missing: %s", body)
	}
	if !strings.Contains(body, "<p>Read all about it.</p>") {
		t.Errorf("teaser missing: %s", body)
	}
	if strings.Contains(body, "Surprise Act") {
		t.Errorf("draft headline visible: %s", body)
	}
}

func mustCreateChannel(t *testing.T, env *testEnv, channelID model.ChannelID) {
	t.Helper()

	err := env.news.CreateChannel(context.Background(), model.NewsChannel{
		ID:      channelID,
		BrandID: "acmecon",
	})
	if err != nil {
		t.Fatalf("CreateChannel failed: %v", err)
	}
}
