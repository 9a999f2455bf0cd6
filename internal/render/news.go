// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/byceps/byceps-go/internal/model"
)

// RenderItem evaluates a news item version to HTML. Render failures
// are contained per field: a failing body or featured image yields an
// error result while the item itself stays usable in listings.
func (r *Renderer) RenderItem(
	ctx context.Context, item model.NewsItem,
	version model.NewsItemVersion, images []model.NewsImage,
) model.RenderedNewsItem {
	rendered := model.RenderedNewsItem{
		Item:   item,
		Title:  version.Title,
		Images: images,
	}

	rc := Context{Images: images}
	body, err := r.Render(ctx, rc, version.Body)
	if err != nil {
		r.log.Warn("news item body render failed", "item_id", item.ID, "error", err)
		rendered.BodyHTML = model.RenderResult{Err: err.Error()}
	} else if version.BodyFormat == model.BodyFormatMarkdown {
		var buf bytes.Buffer
		if err := r.markdown.Convert([]byte(body), &buf); err != nil {
			r.log.Warn("news item markdown conversion failed", "item_id", item.ID, "error", err)
			rendered.BodyHTML = model.RenderResult{Err: err.Error()}
		} else {
			rendered.BodyHTML = model.RenderResult{HTML: buf.String()}
		}
	} else {
		rendered.BodyHTML = model.RenderResult{HTML: body}
	}

	if item.FeaturedImageID.Valid {
		rendered.FeaturedImageHTML = featuredImageHTML(item, images)
	}

	return rendered
}

func featuredImageHTML(item model.NewsItem, images []model.NewsImage) *model.RenderResult {
	for _, image := range images {
		if string(image.ID) == item.FeaturedImageID.String {
			return &model.RenderResult{HTML: imageHTML(image, nil)}
		}
	}
	return &model.RenderResult{
		Err: fmt.Sprintf("featured image %s is not attached to item %s",
			item.FeaturedImageID.String, item.ID),
	}
}
