// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/byceps/byceps-go/internal/model"
)

// SiteStore provides access to the site directory.
type SiteStore struct {
	db *sql.DB
}

// NewSiteStore creates a new SiteStore.
func NewSiteStore(db *sql.DB) *SiteStore {
	return &SiteStore{db: db}
}

// CreateSite inserts a site.
func (s *SiteStore) CreateSite(ctx context.Context, site model.Site) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sites (id, brand_id, title, server_name, news_channel_id)
		VALUES (?, ?, ?, ?, ?)`,
		site.ID, site.BrandID, site.Title, site.ServerName, site.NewsChannelID)
	if err != nil {
		return fmt.Errorf("inserting site: %w", err)
	}
	return nil
}

// FindSite returns the site with that id. Returns sql.ErrNoRows if
// not found.
func (s *SiteStore) FindSite(ctx context.Context, id model.SiteID) (model.Site, error) {
	var site model.Site
	err := s.db.QueryRowContext(ctx, `
		SELECT id, brand_id, title, server_name, news_channel_id
		FROM sites WHERE id = ?`, id,
	).Scan(&site.ID, &site.BrandID, &site.Title, &site.ServerName, &site.NewsChannelID)
	if err != nil {
		return model.Site{}, err
	}
	return site, nil
}

// GetAllSites returns every site, ordered by id.
func (s *SiteStore) GetAllSites(ctx context.Context) ([]model.Site, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, brand_id, title, server_name, news_channel_id
		FROM sites ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var sites []model.Site
	for rows.Next() {
		var site model.Site
		err := rows.Scan(&site.ID, &site.BrandID, &site.Title,
			&site.ServerName, &site.NewsChannelID)
		if err != nil {
			return nil, fmt.Errorf("scanning site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}
