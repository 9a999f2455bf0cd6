// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/render"
)

// SnippetContent is the rendered payload of a snippet version.
type SnippetContent struct {
	Body string `json:"body"`
}

// SnippetResponse identifies the current version of a snippet and
// carries its rendered content.
type SnippetResponse struct {
	Version string         `json:"version"`
	Content SnippetContent `json:"content"`
}

// GetSnippetByName returns the current version of the snippet
// addressed by scope, name, and language, with the body rendered to
// HTML. An unknown snippet or a malformed scope yields 404 with an
// empty object.
func (h *Handler) GetSnippetByName(w http.ResponseWriter, r *http.Request) {
	scopeType := chi.URLParam(r, "scope_type")
	scopeName := chi.URLParam(r, "scope_name")
	name := chi.URLParam(r, "name")
	languageCode := chi.URLParam(r, "language")

	scope, err := model.ParseScope(scopeType + "/" + scopeName)
	if err != nil {
		WriteEmpty(w, http.StatusNotFound)
		return
	}

	version, found, err := h.snippets.FindCurrentVersion(r.Context(), scope, name, languageCode)
	if err != nil {
		h.log.Error("snippet lookup failed",
			"scope", scope, "name", name, "language", languageCode, "error", err)
		WriteEmpty(w, http.StatusInternalServerError)
		return
	}
	if !found {
		WriteEmpty(w, http.StatusNotFound)
		return
	}

	rc := render.Context{Locale: languageCode}
	if scope.Type == model.ScopeTypeSite {
		rc.SiteID = model.SiteID(scope.Name)
	}
	body, err := h.renderer.Render(r.Context(), rc, version.Body)
	if err != nil {
		h.log.Warn("snippet render failed",
			"scope", scope, "name", name, "language", languageCode, "error", err)
		WriteEmpty(w, http.StatusInternalServerError)
		return
	}

	WriteJSON(w, http.StatusOK, SnippetResponse{
		Version: string(version.ID),
		Content: SnippetContent{Body: body},
	})
}
