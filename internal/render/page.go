// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"

	"github.com/byceps/byceps-go/internal/model"
)

// PageOutput is a fully rendered page.
type PageOutput struct {
	Title string
	Head  string
	Body  string
}

// RenderPage evaluates the page's current version. Head and body are
// both templates; a failure in either aborts the page render and the
// error propagates so the caller can substitute an error page.
func (r *Renderer) RenderPage(ctx context.Context, rc Context, aggregate model.PageAggregate) (PageOutput, error) {
	out := PageOutput{Title: aggregate.Version.Title}

	if aggregate.Version.Head.Valid {
		head, err := r.Render(ctx, rc, aggregate.Version.Head.String)
		if err != nil {
			return PageOutput{}, err
		}
		out.Head = head
	}

	body, err := r.Render(ctx, rc, aggregate.Version.Body)
	if err != nil {
		return PageOutput{}, err
	}
	out.Body = body

	return out, nil
}
