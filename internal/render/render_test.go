// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/testutil"
)

// fakeSnippets resolves snippet bodies from an in-memory map keyed by
// "<scope>/<name>/<language>".
type fakeSnippets struct {
	bodies map[string]string
}

func (f *fakeSnippets) FindCurrentVersion(
	_ context.Context, scope model.Scope, name, languageCode string,
) (model.SnippetVersion, bool, error) {
	body, ok := f.bodies[fmt.Sprintf("%s/%s/%s", scope, name, languageCode)]
	if !ok {
		return model.SnippetVersion{}, false, nil
	}
	return model.SnippetVersion{Body: body}, true, nil
}

type fakePages struct {
	paths map[string]string
}

func (f *fakePages) GetURLPathsByPageName(context.Context, model.SiteID) (map[string]string, error) {
	return f.paths, nil
}

func newTestRenderer(snippets *fakeSnippets, pages *fakePages) *Renderer {
	if snippets == nil {
		snippets = &fakeSnippets{bodies: map[string]string{}}
	}
	if pages == nil {
		pages = &fakePages{paths: map[string]string{}}
	}
	return New(snippets, pages, "en", testutil.TestLogger())
}

func TestRenderPlainText(t *testing.T) {
	r := newTestRenderer(nil, nil)

	out, err := r.Render(context.Background(), Context{}, "Hello, world!")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", out)
}

func TestRenderSnippetEmbedding(t *testing.T) {
	snippets := &fakeSnippets{bodies: map[string]string{
		"site/acmecon-2026/greeting/en": `{{ render_snippet "greeted" }}, world!`,
		"site/acmecon-2026/greeted/en":  "Hello",
	}}
	r := newTestRenderer(snippets, nil)
	rc := Context{SiteID: "acmecon-2026"}

	out, err := r.Render(context.Background(), rc, `{{ render_snippet "greeting" }}`)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", out)
}

func TestRenderSnippetExplicitScopeAndLanguage(t *testing.T) {
	snippets := &fakeSnippets{bodies: map[string]string{
		"brand/acmecon/footer/de": "Impressum",
	}}
	r := newTestRenderer(snippets, nil)

	// No site in context; scope and language are given explicitly.
	out, err := r.Render(context.Background(), Context{},
		`{{ render_snippet "footer" "brand/acmecon" "de" }}`)
	require.NoError(t, err)
	assert.Equal(t, "Impressum", out)

	// Without an explicit scope there is nothing to derive it from.
	_, err = r.Render(context.Background(), Context{}, `{{ render_snippet "footer" }}`)
	assert.Error(t, err)
}

func TestRenderSnippetLocaleFallback(t *testing.T) {
	snippets := &fakeSnippets{bodies: map[string]string{
		"site/acmecon-2026/greeting/de": "Hallo",
		"site/acmecon-2026/greeting/en": "Hello",
	}}
	r := newTestRenderer(snippets, nil)

	out, err := r.Render(context.Background(),
		Context{SiteID: "acmecon-2026", Locale: "de"}, `{{ render_snippet "greeting" }}`)
	require.NoError(t, err)
	assert.Equal(t, "Hallo", out)

	// Without a locale the platform default applies.
	out, err = r.Render(context.Background(),
		Context{SiteID: "acmecon-2026"}, `{{ render_snippet "greeting" }}`)
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)
}

func TestRenderSnippetMissing(t *testing.T) {
	r := newTestRenderer(nil, nil)
	rc := Context{SiteID: "acmecon-2026"}

	_, err := r.Render(context.Background(), rc, `{{ render_snippet "nope" }}`)
	var notFoundErr model.SnippetNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "nope", notFoundErr.Name)

	out, err := r.Render(context.Background(), rc,
		`before {{ render_snippet_if_exists "nope" }}after`)
	require.NoError(t, err)
	assert.Equal(t, "before after", out)
}

func TestRenderSnippetCycle(t *testing.T) {
	snippets := &fakeSnippets{bodies: map[string]string{
		"site/acmecon-2026/a/en": `{{ render_snippet "b" }}`,
		"site/acmecon-2026/b/en": `{{ render_snippet "a" }}`,
	}}
	r := newTestRenderer(snippets, nil)
	rc := Context{SiteID: "acmecon-2026"}

	_, err := r.Render(context.Background(), rc, `{{ render_snippet "a" }}`)
	var cycleErr model.SnippetCycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, "a", cycleErr.Name)
}

func TestRenderSnippetRepeatedSiblingEmbed(t *testing.T) {
	// The same snippet embedded twice as siblings is not a cycle.
	snippets := &fakeSnippets{bodies: map[string]string{
		"site/acmecon-2026/b/en": "x",
	}}
	r := newTestRenderer(snippets, nil)
	rc := Context{SiteID: "acmecon-2026"}

	out, err := r.Render(context.Background(), rc,
		`{{ render_snippet "b" }}{{ render_snippet "b" }}`)
	require.NoError(t, err)
	assert.Equal(t, "xx", out)
}

func TestRenderSnippetSelfCycle(t *testing.T) {
	snippets := &fakeSnippets{bodies: map[string]string{
		"site/acmecon-2026/a/en": `{{ render_snippet "a" }}`,
	}}
	r := newTestRenderer(snippets, nil)

	_, err := r.Render(context.Background(),
		Context{SiteID: "acmecon-2026"}, `{{ render_snippet "a" }}`)
	var cycleErr model.SnippetCycleError
	assert.ErrorAs(t, err, &cycleErr)
}

func TestRenderSnippetDepthCap(t *testing.T) {
	// A 20-deep chain with no cycle still exceeds the nesting cap.
	bodies := make(map[string]string)
	for i := 0; i < 20; i++ {
		bodies[fmt.Sprintf("site/acmecon-2026/s%d/en", i)] =
			fmt.Sprintf(`{{ render_snippet "s%d" }}`, i+1)
	}
	bodies["site/acmecon-2026/s20/en"] = "deep enough"
	r := newTestRenderer(&fakeSnippets{bodies: bodies}, nil)

	_, err := r.Render(context.Background(),
		Context{SiteID: "acmecon-2026"}, `{{ render_snippet "s0" }}`)
	assert.ErrorIs(t, err, model.ErrSnippetDepthExceeded)
}

func TestRenderURLForPage(t *testing.T) {
	pages := &fakePages{paths: map[string]string{"imprint": "/imprint"}}
	r := newTestRenderer(nil, pages)

	out, err := r.Render(context.Background(),
		Context{SiteID: "acmecon-2026"}, `{{ url_for_page "imprint" }}`)
	require.NoError(t, err)
	assert.Equal(t, "/imprint", out)

	// No site in context resolves to nothing, not an error.
	out, err = r.Render(context.Background(), Context{}, `{{ url_for_page "imprint" }}`)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestRenderImage(t *testing.T) {
	rc := Context{Images: []model.NewsImage{{
		ID:      "image-1",
		Number:  1,
		URLPath: "/media/venue.jpg",
		AltText: sql.NullString{String: "The venue", Valid: true},
	}}}
	r := newTestRenderer(nil, nil)

	out, err := r.Render(context.Background(), rc, `{{ render_image 1 800 600 }}`)
	require.NoError(t, err)
	assert.Equal(t, `<img src="/media/venue.jpg" alt="The venue" width="800" height="600">`, out)

	_, err = r.Render(context.Background(), rc, `{{ render_image 7 }}`)
	var unknownErr model.UnknownImageNumberError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, 7, unknownErr.Number)
}

func TestRenderParseError(t *testing.T) {
	r := newTestRenderer(nil, nil)

	_, err := r.Render(context.Background(), Context{}, `{{ render_snippet }`)
	var parseErr model.TemplateParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestRenderPage(t *testing.T) {
	r := newTestRenderer(nil, nil)

	aggregate := model.PageAggregate{
		Version: model.PageVersion{
			Title: "Imprint",
			Head:  sql.NullString{String: `<meta name="robots" content="noindex">`, Valid: true},
			Body:  "<p>Legal stuff.</p>",
		},
	}

	out, err := r.RenderPage(context.Background(), Context{SiteID: "acmecon-2026"}, aggregate)
	require.NoError(t, err)
	assert.Equal(t, "Imprint", out.Title)
	assert.Contains(t, out.Head, "noindex")
	assert.Equal(t, "<p>Legal stuff.</p>", out.Body)

	aggregate.Version.Body = `{{ bogus }}`
	_, err = r.RenderPage(context.Background(), Context{}, aggregate)
	assert.Error(t, err)
}

func TestRenderItemContainsFailures(t *testing.T) {
	r := newTestRenderer(nil, nil)
	item := model.NewsItem{ID: "item-1"}

	rendered := r.RenderItem(context.Background(), item, model.NewsItemVersion{
		Title:      "Broken",
		Body:       `{{ render_image 9 }}`,
		BodyFormat: model.BodyFormatHTML,
	}, nil)
	assert.False(t, rendered.BodyHTML.OK())
	assert.Contains(t, rendered.BodyHTML.Err, "unknown image number 9")
	// The item itself stays listable.
	assert.Equal(t, "Broken", rendered.Title)
}

func TestRenderItemMarkdown(t *testing.T) {
	r := newTestRenderer(nil, nil)

	rendered := r.RenderItem(context.Background(), model.NewsItem{ID: "item-1"},
		model.NewsItemVersion{
			Title:      "Launch",
			Body:       "We are **live**.",
			BodyFormat: model.BodyFormatMarkdown,
		}, nil)
	require.True(t, rendered.BodyHTML.OK())
	assert.Contains(t, rendered.BodyHTML.HTML, "<strong>live</strong>")
}

func TestRenderItemFeaturedImage(t *testing.T) {
	r := newTestRenderer(nil, nil)
	images := []model.NewsImage{{ID: "image-1", Number: 1, URLPath: "/media/venue.jpg"}}
	item := model.NewsItem{
		ID:              "item-1",
		FeaturedImageID: sql.NullString{String: "image-1", Valid: true},
	}

	rendered := r.RenderItem(context.Background(), item, model.NewsItemVersion{
		Title: "Launch", Body: "x", BodyFormat: model.BodyFormatHTML,
	}, images)
	require.NotNil(t, rendered.FeaturedImageHTML)
	require.True(t, rendered.FeaturedImageHTML.OK())
	assert.Contains(t, rendered.FeaturedImageHTML.HTML, "/media/venue.jpg")

	item.FeaturedImageID = sql.NullString{String: "image-9", Valid: true}
	rendered = r.RenderItem(context.Background(), item, model.NewsItemVersion{
		Title: "Launch", Body: "x", BodyFormat: model.BodyFormatHTML,
	}, images)
	require.NotNil(t, rendered.FeaturedImageHTML)
	assert.False(t, rendered.FeaturedImageHTML.OK())
}
