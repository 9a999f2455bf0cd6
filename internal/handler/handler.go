// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

// Package handler provides the public HTTP handlers: site pages served
// by URL path and published news items served by slug.
package handler

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/byceps/byceps-go/internal/i18n"
	"github.com/byceps/byceps-go/internal/render"
	"github.com/byceps/byceps-go/internal/service"
)

// Handler holds shared dependencies for the public HTTP handlers.
type Handler struct {
	pages      *service.PageService
	news       *service.NewsService
	sites      service.SiteDirectory
	renderer   *render.Renderer
	negotiator *i18n.Negotiator
	log        *slog.Logger
}

// New creates the public handler.
func New(
	pages *service.PageService,
	news *service.NewsService,
	sites service.SiteDirectory,
	renderer *render.Renderer,
	negotiator *i18n.Negotiator,
	log *slog.Logger,
) *Handler {
	return &Handler{
		pages:      pages,
		news:       news,
		sites:      sites,
		renderer:   renderer,
		negotiator: negotiator,
		log:        log,
	}
}

// locale negotiates the request language from the Accept-Language header.
func (h *Handler) locale(r *http.Request) string {
	return h.negotiator.Negotiate(r.Header.Get("Accept-Language"))
}

func writeHTML(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

// htmlDocument wraps rendered content in a minimal document shell.
func htmlDocument(title, head, body string) string {
	return fmt.Sprintf(
		"<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n%s</head>\n<body>\n%s\n</body>\n</html>\n",
		html.EscapeString(title), head, body)
}

func notFoundPage(w http.ResponseWriter) {
	writeHTML(w, http.StatusNotFound,
		htmlDocument("Not Found", "", "<h1>Not Found</h1>\n<p>The requested content does not exist.</p>"))
}

// errorPage is substituted when rendering a page fails. The underlying
// error is logged but never exposed to the client.
func errorPage(w http.ResponseWriter) {
	writeHTML(w, http.StatusInternalServerError,
		htmlDocument("Error", "", "<h1>Error</h1>\n<p>The requested content could not be rendered.</p>"))
}
