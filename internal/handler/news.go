// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package handler

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/service"
)

const newsIndexPageSize = 10

// ServeNewsIndex lists the published headlines of the site's news
// channel, newest first.
func (h *Handler) ServeNewsIndex(w http.ResponseWriter, r *http.Request) {
	siteID := model.SiteID(chi.URLParam(r, "site_id"))

	channelIDs, ok, err := h.newsChannelsForSite(r, siteID)
	if err != nil {
		h.log.Error("news channel lookup failed", "site_id", siteID, "error", err)
		errorPage(w)
		return
	}
	if !ok {
		notFoundPage(w)
		return
	}

	headlines, err := h.news.GetHeadlinesPaginated(r.Context(), channelIDs, 1, newsIndexPageSize, true)
	if err != nil {
		h.log.Error("news headline listing failed", "site_id", siteID, "error", err)
		errorPage(w)
		return
	}

	var b strings.Builder
	b.WriteString("<h1>News</h1>\n<ul>\n")
	for _, headline := range headlines {
		fmt.Fprintf(&b, "<li><a href=\"/%s/news/%s\">%s</a>",
			html.EscapeString(string(siteID)),
			html.EscapeString(headline.Slug),
			html.EscapeString(headline.Title))
		if teaser := h.itemTeaser(r, headline.ItemID); teaser != "" {
			fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(teaser))
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>")

	writeHTML(w, http.StatusOK, htmlDocument("News", "", b.String()))
}

// ServeNewsItem serves a single published news item by slug. Drafts and
// items scheduled for the future are not visible here.
func (h *Handler) ServeNewsItem(w http.ResponseWriter, r *http.Request) {
	siteID := model.SiteID(chi.URLParam(r, "site_id"))
	slug := chi.URLParam(r, "slug")

	channelIDs, ok, err := h.newsChannelsForSite(r, siteID)
	if err != nil {
		h.log.Error("news channel lookup failed", "site_id", siteID, "error", err)
		errorPage(w)
		return
	}
	if !ok {
		notFoundPage(w)
		return
	}

	item, err := h.news.GetItemBySlug(r.Context(), channelIDs, slug, true)
	if err != nil {
		var notFound model.NewsItemNotFoundError
		if errors.As(err, &notFound) {
			notFoundPage(w)
			return
		}
		h.log.Error("news item lookup failed", "site_id", siteID, "slug", slug, "error", err)
		errorPage(w)
		return
	}

	rendered, err := h.news.GetRenderedItem(r.Context(), item.ID)
	if err != nil {
		h.log.Error("news item rendering failed", "item_id", item.ID, "error", err)
		errorPage(w)
		return
	}
	if !rendered.BodyHTML.OK() {
		h.log.Warn("news item body failed to render",
			"item_id", item.ID, "slug", slug, "error", rendered.BodyHTML.Err)
		errorPage(w)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(rendered.Title))
	if rendered.FeaturedImageHTML != nil {
		if rendered.FeaturedImageHTML.OK() {
			b.WriteString(rendered.FeaturedImageHTML.HTML)
			b.WriteString("\n")
		} else {
			h.log.Warn("news item featured image failed to render",
				"item_id", item.ID, "error", rendered.FeaturedImageHTML.Err)
		}
	}
	b.WriteString(rendered.BodyHTML.HTML)

	writeHTML(w, http.StatusOK, htmlDocument(rendered.Title, "", b.String()))
}

const newsTeaserLength = 200

// itemTeaser returns a plain-text preview of the item's body, or the
// empty string when the body cannot be rendered.
func (h *Handler) itemTeaser(r *http.Request, itemID model.NewsItemID) string {
	rendered, err := h.news.GetRenderedItem(r.Context(), itemID)
	if err != nil || !rendered.BodyHTML.OK() {
		return ""
	}
	return service.Teaser(rendered.BodyHTML.HTML, newsTeaserLength)
}

// newsChannelsForSite returns the channel ids whose items the site
// serves. A site without a news channel reports false.
func (h *Handler) newsChannelsForSite(
	r *http.Request, siteID model.SiteID,
) ([]model.ChannelID, bool, error) {
	site, err := h.sites.GetSite(r.Context(), siteID)
	if err != nil {
		var notFound model.SiteNotFoundError
		if errors.As(err, &notFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !site.NewsChannelID.Valid {
		return nil, false, nil
	}
	return []model.ChannelID{model.ChannelID(site.NewsChannelID.String)}, true, nil
}
