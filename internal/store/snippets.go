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

// SnippetStore provides access to snippets, their versions, and their
// current-version pointers.
type SnippetStore struct {
	db *sql.DB
}

// NewSnippetStore creates a new SnippetStore.
func NewSnippetStore(db *sql.DB) *SnippetStore {
	return &SnippetStore{db: db}
}

// CreateSnippetParams holds the values for creating a snippet together
// with its initial version.
type CreateSnippetParams struct {
	SnippetID    model.SnippetID
	VersionID    model.SnippetVersionID
	Scope        model.Scope
	Name         string
	LanguageCode string
	CreatorID    model.UserID
	CreatedAt    time.Time
	Body         string
}

// CreateSnippet inserts a snippet, its initial version, and the
// current-version pointer in a single transaction. The availability
// check on the identity key is case-insensitive.
func (s *SnippetStore) CreateSnippet(ctx context.Context, p CreateSnippetParams) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM snippets
			WHERE scope_type = ? AND scope_name = ?
			  AND name = ? COLLATE NOCASE
			  AND language_code = ?`,
			p.Scope.Type, p.Scope.Name, p.Name, p.LanguageCode,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("checking snippet availability: %w", err)
		}
		if count > 0 {
			return model.SnippetAlreadyExistsError{
				Scope:        p.Scope,
				Name:         p.Name,
				LanguageCode: p.LanguageCode,
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO snippets (id, scope_type, scope_name, name, language_code)
			VALUES (?, ?, ?, ?, ?)`,
			p.SnippetID, p.Scope.Type, p.Scope.Name, p.Name, p.LanguageCode)
		if err != nil {
			return fmt.Errorf("inserting snippet: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO snippet_versions (id, snippet_id, created_at, creator_id, body)
			VALUES (?, ?, ?, ?, ?)`,
			p.VersionID, p.SnippetID, p.CreatedAt, p.CreatorID, p.Body)
		if err != nil {
			return fmt.Errorf("inserting snippet version: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO snippet_current_versions (snippet_id, version_id)
			VALUES (?, ?)`,
			p.SnippetID, p.VersionID)
		if err != nil {
			return fmt.Errorf("inserting current version pointer: %w", err)
		}

		return nil
	})
}

// AppendSnippetVersionParams holds the values for appending a version
// to an existing snippet.
type AppendSnippetVersionParams struct {
	SnippetID model.SnippetID
	VersionID model.SnippetVersionID
	CreatorID model.UserID
	CreatedAt time.Time
	Body      string
}

// AppendVersion inserts a new version and repoints the head in a
// single transaction. The head update is an idempotent upsert.
func (s *SnippetStore) AppendVersion(ctx context.Context, p AppendSnippetVersionParams) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO snippet_versions (id, snippet_id, created_at, creator_id, body)
			VALUES (?, ?, ?, ?, ?)`,
			p.VersionID, p.SnippetID, p.CreatedAt, p.CreatorID, p.Body)
		if err != nil {
			return fmt.Errorf("inserting snippet version: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO snippet_current_versions (snippet_id, version_id)
			VALUES (?, ?)
			ON CONFLICT (snippet_id) DO UPDATE SET version_id = excluded.version_id`,
			p.SnippetID, p.VersionID)
		if err != nil {
			return fmt.Errorf("updating current version pointer: %w", err)
		}

		return nil
	})
}

// FindSnippet returns the snippet with that id. Returns sql.ErrNoRows
// if not found.
func (s *SnippetStore) FindSnippet(ctx context.Context, id model.SnippetID) (model.Snippet, error) {
	var snippet model.Snippet
	err := s.db.QueryRowContext(ctx, `
		SELECT id, scope_type, scope_name, name, language_code
		FROM snippets WHERE id = ?`, id,
	).Scan(&snippet.ID, &snippet.Scope.Type, &snippet.Scope.Name,
		&snippet.Name, &snippet.LanguageCode)
	if err != nil {
		return model.Snippet{}, err
	}
	return snippet, nil
}

// FindCurrentVersion returns the current version of the snippet with
// that name in that scope and language. The lookup is case-sensitive.
// Returns sql.ErrNoRows if not found.
func (s *SnippetStore) FindCurrentVersion(
	ctx context.Context, scope model.Scope, name, languageCode string,
) (model.SnippetVersion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT v.id, v.snippet_id, v.created_at, v.creator_id, v.body
		FROM snippet_versions v
		INNER JOIN snippet_current_versions cv ON cv.version_id = v.id
		INNER JOIN snippets s ON s.id = cv.snippet_id
		WHERE s.scope_type = ? AND s.scope_name = ?
		  AND s.name = ? AND s.language_code = ?`,
		scope.Type, scope.Name, name, languageCode)
	return scanSnippetVersion(row)
}

// GetHeadVersion returns the version the snippet's current-version
// pointer names. Returns sql.ErrNoRows if the pointer is absent.
func (s *SnippetStore) GetHeadVersion(ctx context.Context, id model.SnippetID) (model.SnippetVersion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT v.id, v.snippet_id, v.created_at, v.creator_id, v.body
		FROM snippet_versions v
		INNER JOIN snippet_current_versions cv ON cv.version_id = v.id
		WHERE cv.snippet_id = ?`, id)
	return scanSnippetVersion(row)
}

// FindVersion returns the version with that id. Returns sql.ErrNoRows
// if not found.
func (s *SnippetStore) FindVersion(ctx context.Context, id model.SnippetVersionID) (model.SnippetVersion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, snippet_id, created_at, creator_id, body
		FROM snippet_versions WHERE id = ?`, id)
	return scanSnippetVersion(row)
}

// ListVersions returns all versions of the snippet, newest first.
func (s *SnippetStore) ListVersions(ctx context.Context, id model.SnippetID) ([]model.SnippetVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, snippet_id, created_at, creator_id, body
		FROM snippet_versions
		WHERE snippet_id = ?
		ORDER BY created_at DESC, id DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("listing snippet versions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var versions []model.SnippetVersion
	for rows.Next() {
		version, err := scanSnippetVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

// GetSnippetsForScopeWithCurrentVersions returns all snippets in that
// scope together with their current versions, ordered by name, then
// language.
func (s *SnippetStore) GetSnippetsForScopeWithCurrentVersions(
	ctx context.Context, scope model.Scope,
) ([]model.SnippetWithCurrentVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.scope_type, s.scope_name, s.name, s.language_code,
		       v.id, v.snippet_id, v.created_at, v.creator_id, v.body
		FROM snippets s
		INNER JOIN snippet_current_versions cv ON cv.snippet_id = s.id
		INNER JOIN snippet_versions v ON v.id = cv.version_id
		WHERE s.scope_type = ? AND s.scope_name = ?
		ORDER BY s.name ASC, s.language_code ASC`,
		scope.Type, scope.Name)
	if err != nil {
		return nil, fmt.Errorf("listing snippets for scope: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectSnippetsWithVersions(rows)
}

// GetAllScopes returns the distinct scopes that contain at least one
// snippet.
func (s *SnippetStore) GetAllScopes(ctx context.Context) ([]model.Scope, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT scope_type, scope_name
		FROM snippets
		ORDER BY scope_type ASC, scope_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing snippet scopes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var scopes []model.Scope
	for rows.Next() {
		var scope model.Scope
		if err := rows.Scan(&scope.Type, &scope.Name); err != nil {
			return nil, fmt.Errorf("scanning scope: %w", err)
		}
		scopes = append(scopes, scope)
	}
	return scopes, rows.Err()
}

// Search returns the snippets whose current version's body contains
// the search term. If scope is non-nil, the search is limited to that
// scope. The substring match is case-sensitive.
func (s *SnippetStore) Search(
	ctx context.Context, term string, scope *model.Scope,
) ([]model.SnippetWithCurrentVersion, error) {
	query := `
		SELECT s.id, s.scope_type, s.scope_name, s.name, s.language_code,
		       v.id, v.snippet_id, v.created_at, v.creator_id, v.body
		FROM snippets s
		INNER JOIN snippet_current_versions cv ON cv.snippet_id = s.id
		INNER JOIN snippet_versions v ON v.id = cv.version_id
		WHERE instr(v.body, ?) > 0`
	args := []any{term}

	if scope != nil {
		query += ` AND s.scope_type = ? AND s.scope_name = ?`
		args = append(args, scope.Type, scope.Name)
	}

	query += ` ORDER BY s.name ASC, s.language_code ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching snippets: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectSnippetsWithVersions(rows)
}

// DeleteSnippet removes the current-version pointer, every version,
// and the snippet itself in a single transaction.
func (s *SnippetStore) DeleteSnippet(ctx context.Context, id model.SnippetID) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM snippet_current_versions WHERE snippet_id = ?`, id); err != nil {
			return fmt.Errorf("deleting current version pointer: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM snippet_versions WHERE snippet_id = ?`, id); err != nil {
			return fmt.Errorf("deleting snippet versions: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting snippet: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("reading affected rows: %w", err)
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnippetVersion(row rowScanner) (model.SnippetVersion, error) {
	var version model.SnippetVersion
	err := row.Scan(&version.ID, &version.SnippetID, &version.CreatedAt,
		&version.CreatorID, &version.Body)
	if err != nil {
		return model.SnippetVersion{}, err
	}
	return version, nil
}

func collectSnippetsWithVersions(rows *sql.Rows) ([]model.SnippetWithCurrentVersion, error) {
	var results []model.SnippetWithCurrentVersion
	for rows.Next() {
		var entry model.SnippetWithCurrentVersion
		err := rows.Scan(
			&entry.Snippet.ID, &entry.Snippet.Scope.Type, &entry.Snippet.Scope.Name,
			&entry.Snippet.Name, &entry.Snippet.LanguageCode,
			&entry.CurrentVersion.ID, &entry.CurrentVersion.SnippetID,
			&entry.CurrentVersion.CreatedAt, &entry.CurrentVersion.CreatorID,
			&entry.CurrentVersion.Body,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning snippet row: %w", err)
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}
