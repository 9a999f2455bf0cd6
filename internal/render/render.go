// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

// Package render evaluates content templates. Templates are plain
// text/template sources with a small, closed function set; there is no
// filesystem, network, or eval surface.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/byceps/byceps-go/internal/model"
)

// maxSnippetDepth caps snippet embedding nesting.
const maxSnippetDepth = 16

// SnippetLookup resolves the current version of a snippet by its
// identity key.
type SnippetLookup interface {
	FindCurrentVersion(
		ctx context.Context, scope model.Scope, name, languageCode string,
	) (model.SnippetVersion, bool, error)
}

// PageURLResolver maps page names to URL paths for a site.
type PageURLResolver interface {
	GetURLPathsByPageName(ctx context.Context, siteID model.SiteID) (map[string]string, error)
}

// Context carries the per-request values a template evaluation may
// draw on. The zero value renders without a site, user, or images.
type Context struct {
	SiteID model.SiteID
	UserID model.UserID
	Locale string
	Images []model.NewsImage
}

// Renderer evaluates content templates. It is safe for concurrent use;
// all per-render state lives on the call stack.
type Renderer struct {
	snippets        SnippetLookup
	pages           PageURLResolver
	defaultLanguage string
	markdown        goldmark.Markdown
	log             *slog.Logger
}

// New creates a Renderer.
func New(snippets SnippetLookup, pages PageURLResolver, defaultLanguage string, log *slog.Logger) *Renderer {
	return &Renderer{
		snippets:        snippets,
		pages:           pages,
		defaultLanguage: defaultLanguage,
		// Bodies are authored by trusted editors; raw HTML passes through.
		markdown: goldmark.New(goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe())),
		log:      log,
	}
}

// renderState is the per-render mutable state: the visitation set and
// depth counter for snippet embedding, and the first domain error
// raised by a template function. It is never shared across renders.
type renderState struct {
	ctx      context.Context
	rc       Context
	visited  map[visitKey]struct{}
	depth    int
	firstErr error
}

type visitKey struct {
	scope        model.Scope
	name         string
	languageCode string
}

// fail records the first domain error and returns it so template
// execution aborts. The recorded error survives the text/template
// wrapping and is what callers observe.
func (st *renderState) fail(err error) error {
	if st.firstErr == nil {
		st.firstErr = err
	}
	return err
}

// Render evaluates the template source with the given request context
// and returns the output. Parse failures yield TemplateParseError,
// execution failures TemplateRenderError, except that domain errors
// raised by template functions (missing snippet, cycle, unknown image)
// are returned as themselves.
func (r *Renderer) Render(ctx context.Context, rc Context, source string) (string, error) {
	st := &renderState{
		ctx:     ctx,
		rc:      rc,
		visited: make(map[visitKey]struct{}),
	}
	return r.render(st, source)
}

func (r *Renderer) render(st *renderState, source string) (string, error) {
	tmpl, err := template.New("content").Funcs(r.funcs(st)).Parse(source)
	if err != nil {
		return "", model.TemplateParseError{Err: err}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		if st.firstErr != nil {
			return "", st.firstErr
		}
		return "", model.TemplateRenderError{Err: err}
	}
	return buf.String(), nil
}

// funcs builds the closed function set for one render. Nothing outside
// this map is callable from template source.
func (r *Renderer) funcs(st *renderState) template.FuncMap {
	return template.FuncMap{
		"render_snippet": func(name string, args ...string) (string, error) {
			return r.renderSnippet(st, name, args, false)
		},
		"render_snippet_if_exists": func(name string, args ...string) (string, error) {
			return r.renderSnippet(st, name, args, true)
		},
		"url_for_page": func(name string) (string, error) {
			return r.urlForPage(st, name)
		},
		"render_image": func(number int, dimensions ...int) (string, error) {
			return r.renderImage(st, number, dimensions)
		},
	}
}

// renderSnippet resolves and recursively renders an embedded snippet.
// The optional args are scope and language code, in that order.
func (r *Renderer) renderSnippet(st *renderState, name string, args []string, ignoreIfUnknown bool) (string, error) {
	scope, languageCode, err := r.resolveSnippetKey(st, args)
	if err != nil {
		return "", st.fail(err)
	}

	key := visitKey{scope: scope, name: name, languageCode: languageCode}
	if _, seen := st.visited[key]; seen {
		return "", st.fail(model.SnippetCycleError{
			Scope:        scope,
			Name:         name,
			LanguageCode: languageCode,
		})
	}
	if st.depth >= maxSnippetDepth {
		return "", st.fail(model.ErrSnippetDepthExceeded)
	}

	version, found, err := r.snippets.FindCurrentVersion(st.ctx, scope, name, languageCode)
	if err != nil {
		return "", st.fail(err)
	}
	if !found {
		if ignoreIfUnknown {
			return "", nil
		}
		return "", st.fail(model.SnippetNotFoundError{
			Scope:        scope,
			Name:         name,
			LanguageCode: languageCode,
		})
	}

	// Track only the active embedding chain so sibling embeds of the
	// same snippet stay legal.
	st.visited[key] = struct{}{}
	st.depth++
	defer func() {
		delete(st.visited, key)
		st.depth--
	}()

	out, err := r.render(st, version.Body)
	if err != nil {
		return "", st.fail(err)
	}
	return out, nil
}

func (r *Renderer) resolveSnippetKey(st *renderState, args []string) (model.Scope, string, error) {
	var scope model.Scope
	if len(args) > 0 && args[0] != "" {
		parsed, err := model.ParseScope(args[0])
		if err != nil {
			return model.Scope{}, "", err
		}
		scope = parsed
	} else {
		if st.rc.SiteID == "" {
			return model.Scope{}, "", fmt.Errorf("no site in render context to derive snippet scope from")
		}
		scope = model.ScopeForSite(st.rc.SiteID)
	}

	languageCode := r.defaultLanguage
	if st.rc.Locale != "" {
		languageCode = st.rc.Locale
	}
	if len(args) > 1 && args[1] != "" {
		languageCode = args[1]
	}

	return scope, languageCode, nil
}

// urlForPage returns the URL path of the page with that name on the
// current site. Without a site in context, or for an unknown name, the
// result is empty rather than an error.
func (r *Renderer) urlForPage(st *renderState, name string) (string, error) {
	if st.rc.SiteID == "" {
		return "", nil
	}

	paths, err := r.pages.GetURLPathsByPageName(st.ctx, st.rc.SiteID)
	if err != nil {
		return "", st.fail(err)
	}
	return paths[name], nil
}

// renderImage produces an img tag for an attached news image,
// addressed by its per-item number. Optional dimensions are width and
// height, in that order.
func (r *Renderer) renderImage(st *renderState, number int, dimensions []int) (string, error) {
	var image *model.NewsImage
	for i := range st.rc.Images {
		if st.rc.Images[i].Number == number {
			image = &st.rc.Images[i]
			break
		}
	}
	if image == nil {
		return "", st.fail(model.UnknownImageNumberError{Number: number})
	}
	return imageHTML(*image, dimensions), nil
}

func imageHTML(image model.NewsImage, dimensions []int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<img src="%s"`, html.EscapeString(image.URLPath))
	if image.AltText.Valid {
		fmt.Fprintf(&b, ` alt="%s"`, html.EscapeString(image.AltText.String))
	}
	if len(dimensions) > 0 {
		fmt.Fprintf(&b, ` width="%d"`, dimensions[0])
	}
	if len(dimensions) > 1 {
		fmt.Fprintf(&b, ` height="%d"`, dimensions[1])
	}
	b.WriteString(">")

	if image.Caption.Valid || image.Attribution.Valid {
		caption := html.EscapeString(image.Caption.String)
		if image.Attribution.Valid {
			caption += fmt.Sprintf(` <small>(%s)</small>`, html.EscapeString(image.Attribution.String))
		}
		return fmt.Sprintf("<figure>%s<figcaption>%s</figcaption></figure>",
			b.String(), strings.TrimSpace(caption))
	}
	return b.String()
}
