// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides a request-scoped cache for page URL-path
// lookups. Nothing in here outlives a single request; caches are
// created per request and discarded with it.
package cache

import (
	"context"
	"net/http"
	"sync"

	"github.com/byceps/byceps-go/internal/model"
)

// PageURLLoader loads the page name to URL path mapping for a site.
type PageURLLoader interface {
	GetURLPathsByPageName(ctx context.Context, siteID model.SiteID) (map[string]string, error)
}

// RequestCache memoizes per-site URL-path maps for the duration of one
// request. The first access per site loads from the store; later
// accesses within the same request reuse the result.
type RequestCache struct {
	loader PageURLLoader

	mu             sync.Mutex
	urlPathsBySite map[model.SiteID]map[string]string
}

// NewRequestCache creates an empty cache backed by the loader.
func NewRequestCache(loader PageURLLoader) *RequestCache {
	return &RequestCache{
		loader:         loader,
		urlPathsBySite: make(map[model.SiteID]map[string]string),
	}
}

// GetURLPathsByPageName returns the site's name to URL path mapping,
// loading it at most once per request.
func (c *RequestCache) GetURLPathsByPageName(
	ctx context.Context, siteID model.SiteID,
) (map[string]string, error) {
	c.mu.Lock()
	paths, ok := c.urlPathsBySite[siteID]
	c.mu.Unlock()
	if ok {
		return paths, nil
	}

	paths, err := c.loader.GetURLPathsByPageName(ctx, siteID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.urlPathsBySite[siteID] = paths
	c.mu.Unlock()
	return paths, nil
}

type contextKey struct{}

// FromContext returns the request's cache, or false when the request
// did not pass through Middleware.
func FromContext(ctx context.Context) (*RequestCache, bool) {
	c, ok := ctx.Value(contextKey{}).(*RequestCache)
	return c, ok
}

// Middleware attaches a fresh RequestCache to every request.
func Middleware(loader PageURLLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), contextKey{}, NewRequestCache(loader))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Resolver resolves URL paths through the request's cache when one is
// present, and straight through the loader otherwise.
type Resolver struct {
	loader PageURLLoader
}

// NewResolver creates a Resolver.
func NewResolver(loader PageURLLoader) *Resolver {
	return &Resolver{loader: loader}
}

// GetURLPathsByPageName implements PageURLLoader.
func (r *Resolver) GetURLPathsByPageName(
	ctx context.Context, siteID model.SiteID,
) (map[string]string, error) {
	if c, ok := FromContext(ctx); ok {
		return c.GetURLPathsByPageName(ctx, siteID)
	}
	return r.loader.GetURLPathsByPageName(ctx, siteID)
}
