// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/byceps/byceps-go/internal/model"
)

// PageStore provides access to pages, their versions, and their
// current-version pointers.
type PageStore struct {
	db *sql.DB
}

// NewPageStore creates a new PageStore.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

// CreatePageParams holds the values for creating a page together with
// its initial version.
type CreatePageParams struct {
	PageID       model.PageID
	VersionID    model.PageVersionID
	SiteID       model.SiteID
	Name         string
	LanguageCode string
	URLPath      string
	CreatorID    model.UserID
	CreatedAt    time.Time
	Title        string
	Head         sql.NullString
	Body         string
}

// CreatePage inserts a page, its initial version, and the
// current-version pointer in a single transaction. Both identity keys,
// (site, name, language) and (site, language, url_path), are checked
// case-insensitively.
func (s *PageStore) CreatePage(ctx context.Context, p CreatePageParams) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM pages
			WHERE site_id = ? AND language_code = ?
			  AND (name = ? COLLATE NOCASE OR url_path = ? COLLATE NOCASE)`,
			p.SiteID, p.LanguageCode, p.Name, p.URLPath,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("checking page availability: %w", err)
		}
		if count > 0 {
			return model.PageAlreadyExistsError{
				SiteID:       p.SiteID,
				Name:         p.Name,
				URLPath:      p.URLPath,
				LanguageCode: p.LanguageCode,
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO pages (id, site_id, name, language_code, url_path, published)
			VALUES (?, ?, ?, ?, ?, 0)`,
			p.PageID, p.SiteID, p.Name, p.LanguageCode, p.URLPath)
		if err != nil {
			return fmt.Errorf("inserting page: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO page_versions (id, page_id, created_at, creator_id, title, head, body)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.VersionID, p.PageID, p.CreatedAt, p.CreatorID, p.Title, p.Head, p.Body)
		if err != nil {
			return fmt.Errorf("inserting page version: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO page_current_versions (page_id, version_id)
			VALUES (?, ?)`,
			p.PageID, p.VersionID)
		if err != nil {
			return fmt.Errorf("inserting current version pointer: %w", err)
		}

		return nil
	})
}

// AppendPageVersionParams holds the values for appending a version to
// an existing page. A non-empty URLPath additionally moves the page to
// that path within the same transaction.
type AppendPageVersionParams struct {
	PageID    model.PageID
	VersionID model.PageVersionID
	URLPath   string
	CreatorID model.UserID
	CreatedAt time.Time
	Title     string
	Head      sql.NullString
	Body      string
}

// AppendVersion inserts a new version and repoints the head in a
// single transaction. The head update is an idempotent upsert.
func (s *PageStore) AppendVersion(ctx context.Context, p AppendPageVersionParams) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if p.URLPath != "" {
			var page model.Page
			err := tx.QueryRowContext(ctx, `
				SELECT site_id, language_code, url_path FROM pages WHERE id = ?`,
				p.PageID,
			).Scan(&page.SiteID, &page.LanguageCode, &page.URLPath)
			if err != nil {
				return fmt.Errorf("loading page: %w", err)
			}

			if p.URLPath != page.URLPath {
				var count int
				err = tx.QueryRowContext(ctx, `
					SELECT COUNT(*) FROM pages
					WHERE site_id = ? AND language_code = ?
					  AND url_path = ? COLLATE NOCASE AND id <> ?`,
					page.SiteID, page.LanguageCode, p.URLPath, p.PageID,
				).Scan(&count)
				if err != nil {
					return fmt.Errorf("checking URL path availability: %w", err)
				}
				if count > 0 {
					return model.PageAlreadyExistsError{
						SiteID:       page.SiteID,
						URLPath:      p.URLPath,
						LanguageCode: page.LanguageCode,
					}
				}

				_, err = tx.ExecContext(ctx,
					`UPDATE pages SET url_path = ? WHERE id = ?`, p.URLPath, p.PageID)
				if err != nil {
					return fmt.Errorf("updating URL path: %w", err)
				}
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO page_versions (id, page_id, created_at, creator_id, title, head, body)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.VersionID, p.PageID, p.CreatedAt, p.CreatorID, p.Title, p.Head, p.Body)
		if err != nil {
			return fmt.Errorf("inserting page version: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO page_current_versions (page_id, version_id)
			VALUES (?, ?)
			ON CONFLICT (page_id) DO UPDATE SET version_id = excluded.version_id`,
			p.PageID, p.VersionID)
		if err != nil {
			return fmt.Errorf("updating current version pointer: %w", err)
		}

		return nil
	})
}

// FindPage returns the page with that id. Returns sql.ErrNoRows if not
// found.
func (s *PageStore) FindPage(ctx context.Context, id model.PageID) (model.Page, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, site_id, name, language_code, url_path, published, nav_menu_id
		FROM pages WHERE id = ?`, id)
	return scanPage(row)
}

// FindCurrentVersionForName returns the page with that name for the
// site and language together with its current version. Returns
// sql.ErrNoRows if not found.
func (s *PageStore) FindCurrentVersionForName(
	ctx context.Context, siteID model.SiteID, name, languageCode string,
) (model.PageAggregate, error) {
	row := s.db.QueryRowContext(ctx, pageAggregateQuery+`
		WHERE p.site_id = ? AND p.name = ? AND p.language_code = ?`,
		siteID, name, languageCode)
	return scanPageAggregate(row)
}

// FindCurrentVersionForURLPath returns the page at that URL path for
// the site and language together with its current version. Returns
// sql.ErrNoRows if not found.
func (s *PageStore) FindCurrentVersionForURLPath(
	ctx context.Context, siteID model.SiteID, urlPath, languageCode string,
) (model.PageAggregate, error) {
	row := s.db.QueryRowContext(ctx, pageAggregateQuery+`
		WHERE p.site_id = ? AND p.url_path = ? AND p.language_code = ?`,
		siteID, urlPath, languageCode)
	return scanPageAggregate(row)
}

const pageAggregateQuery = `
	SELECT p.id, p.site_id, p.name, p.language_code, p.url_path, p.published, p.nav_menu_id,
	       v.id, v.page_id, v.created_at, v.creator_id, v.title, v.head, v.body
	FROM pages p
	INNER JOIN page_current_versions cv ON cv.page_id = p.id
	INNER JOIN page_versions v ON v.id = cv.version_id`

// GetHeadVersion returns the version the page's current-version
// pointer names. Returns sql.ErrNoRows if the pointer is absent.
func (s *PageStore) GetHeadVersion(ctx context.Context, id model.PageID) (model.PageVersion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT v.id, v.page_id, v.created_at, v.creator_id, v.title, v.head, v.body
		FROM page_versions v
		INNER JOIN page_current_versions cv ON cv.version_id = v.id
		WHERE cv.page_id = ?`, id)
	return scanPageVersion(row)
}

// FindVersion returns the version with that id. Returns sql.ErrNoRows
// if not found.
func (s *PageStore) FindVersion(ctx context.Context, id model.PageVersionID) (model.PageVersion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, page_id, created_at, creator_id, title, head, body
		FROM page_versions WHERE id = ?`, id)
	return scanPageVersion(row)
}

// ListVersions returns all versions of the page, newest first.
func (s *PageStore) ListVersions(ctx context.Context, id model.PageID) ([]model.PageVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page_id, created_at, creator_id, title, head, body
		FROM page_versions
		WHERE page_id = ?
		ORDER BY created_at DESC, id DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("listing page versions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var versions []model.PageVersion
	for rows.Next() {
		version, err := scanPageVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

// GetPagesForSite returns all pages for the site, ordered by name,
// then language.
func (s *PageStore) GetPagesForSite(ctx context.Context, siteID model.SiteID) ([]model.Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site_id, name, language_code, url_path, published, nav_menu_id
		FROM pages
		WHERE site_id = ?
		ORDER BY name ASC, language_code ASC`, siteID)
	if err != nil {
		return nil, fmt.Errorf("listing pages for site: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var pages []model.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// GetURLPathsByPageName returns a mapping from page names to URL paths
// for the site.
func (s *PageStore) GetURLPathsByPageName(ctx context.Context, siteID model.SiteID) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, url_path FROM pages WHERE site_id = ?`, siteID)
	if err != nil {
		return nil, fmt.Errorf("listing page URL paths: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	urlPaths := make(map[string]string)
	for rows.Next() {
		var name, urlPath string
		if err := rows.Scan(&name, &urlPath); err != nil {
			return nil, fmt.Errorf("scanning page URL path: %w", err)
		}
		urlPaths[name] = urlPath
	}
	return urlPaths, rows.Err()
}

// SetNavMenuID sets or clears the page's navigation menu binding.
func (s *PageStore) SetNavMenuID(ctx context.Context, id model.PageID, navMenuID sql.NullString) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE pages SET nav_menu_id = ? WHERE id = ?`, navMenuID, id)
	if err != nil {
		return fmt.Errorf("setting nav menu: %w", err)
	}
	return requireRowAffected(result)
}

// SetPublished sets the page's published flag.
func (s *PageStore) SetPublished(ctx context.Context, id model.PageID, published bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE pages SET published = ? WHERE id = ?`, published, id)
	if err != nil {
		return fmt.Errorf("setting published flag: %w", err)
	}
	return requireRowAffected(result)
}

// DeletePage removes the current-version pointer, every version, and
// the page itself in a single transaction.
func (s *PageStore) DeletePage(ctx context.Context, id model.PageID) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM page_current_versions WHERE page_id = ?`, id); err != nil {
			return fmt.Errorf("deleting current version pointer: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM page_versions WHERE page_id = ?`, id); err != nil {
			return fmt.Errorf("deleting page versions: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting page: %w", err)
		}
		return requireRowAffected(result)
	})
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanPage(row rowScanner) (model.Page, error) {
	var page model.Page
	err := row.Scan(&page.ID, &page.SiteID, &page.Name, &page.LanguageCode,
		&page.URLPath, &page.Published, &page.NavMenuID)
	if err != nil {
		return model.Page{}, err
	}
	return page, nil
}

func scanPageVersion(row rowScanner) (model.PageVersion, error) {
	var version model.PageVersion
	err := row.Scan(&version.ID, &version.PageID, &version.CreatedAt,
		&version.CreatorID, &version.Title, &version.Head, &version.Body)
	if err != nil {
		return model.PageVersion{}, err
	}
	return version, nil
}

func scanPageAggregate(row rowScanner) (model.PageAggregate, error) {
	var agg model.PageAggregate
	err := row.Scan(
		&agg.Page.ID, &agg.Page.SiteID, &agg.Page.Name, &agg.Page.LanguageCode,
		&agg.Page.URLPath, &agg.Page.Published, &agg.Page.NavMenuID,
		&agg.Version.ID, &agg.Version.PageID, &agg.Version.CreatedAt,
		&agg.Version.CreatorID, &agg.Version.Title, &agg.Version.Head, &agg.Version.Body,
	)
	if err != nil {
		return model.PageAggregate{}, err
	}
	return agg, nil
}
