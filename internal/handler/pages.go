// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/render"
)

// ServePage serves the page published at the request's URL path within
// a site. The language is negotiated from the Accept-Language header;
// if the page does not exist in the negotiated language, the default
// language is tried before giving up with a 404.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	siteID := model.SiteID(chi.URLParam(r, "site_id"))
	urlPath := "/" + chi.URLParam(r, "*")

	aggregate, found, err := h.findPageWithLanguageFallback(r, siteID, urlPath)
	if err != nil {
		h.log.Error("page lookup failed", "site_id", siteID, "url_path", urlPath, "error", err)
		errorPage(w)
		return
	}
	if !found {
		notFoundPage(w)
		return
	}

	rc := render.Context{SiteID: siteID, Locale: aggregate.Page.LanguageCode}
	output, err := h.renderer.RenderPage(r.Context(), rc, aggregate)
	if err != nil {
		h.log.Warn("page render failed",
			"site_id", siteID, "page_name", aggregate.Page.Name, "url_path", urlPath, "error", err)
		errorPage(w)
		return
	}

	writeHTML(w, http.StatusOK, htmlDocument(output.Title, output.Head, output.Body))
}

func (h *Handler) findPageWithLanguageFallback(
	r *http.Request, siteID model.SiteID, urlPath string,
) (model.PageAggregate, bool, error) {
	for _, languageCode := range h.negotiator.FallbackChain(h.locale(r)) {
		aggregate, found, err := h.pages.FindCurrentVersionForURLPath(
			r.Context(), siteID, urlPath, languageCode)
		if err != nil || found {
			return aggregate, found, err
		}
	}
	return model.PageAggregate{}, false, nil
}
