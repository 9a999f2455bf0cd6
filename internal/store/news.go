// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/byceps/byceps-go/internal/model"
)

// NewsStore provides access to news channels, items, item versions,
// current-version pointers, and attached images.
type NewsStore struct {
	db *sql.DB
}

// NewNewsStore creates a new NewsStore.
func NewNewsStore(db *sql.DB) *NewsStore {
	return &NewsStore{db: db}
}

// CreateChannel inserts a news channel.
func (s *NewsStore) CreateChannel(ctx context.Context, channel model.NewsChannel) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO news_channels (id, brand_id, announcement_site_id, archived)
		VALUES (?, ?, ?, ?)`,
		channel.ID, channel.BrandID, channel.AnnouncementSiteID, channel.Archived)
	if err != nil {
		return fmt.Errorf("inserting news channel: %w", err)
	}
	return nil
}

// FindChannel returns the channel with that id. Returns sql.ErrNoRows
// if not found.
func (s *NewsStore) FindChannel(ctx context.Context, id model.ChannelID) (model.NewsChannel, error) {
	var channel model.NewsChannel
	err := s.db.QueryRowContext(ctx, `
		SELECT id, brand_id, announcement_site_id, archived
		FROM news_channels WHERE id = ?`, id,
	).Scan(&channel.ID, &channel.BrandID, &channel.AnnouncementSiteID, &channel.Archived)
	if err != nil {
		return model.NewsChannel{}, err
	}
	return channel, nil
}

// GetChannelsForBrand returns all channels of the brand.
func (s *NewsStore) GetChannelsForBrand(ctx context.Context, brandID model.BrandID) ([]model.NewsChannel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, brand_id, announcement_site_id, archived
		FROM news_channels WHERE brand_id = ? ORDER BY id ASC`, brandID)
	if err != nil {
		return nil, fmt.Errorf("listing news channels: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var channels []model.NewsChannel
	for rows.Next() {
		var channel model.NewsChannel
		err := rows.Scan(&channel.ID, &channel.BrandID,
			&channel.AnnouncementSiteID, &channel.Archived)
		if err != nil {
			return nil, fmt.Errorf("scanning news channel: %w", err)
		}
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}

// HasChannelItems reports whether the channel contains items.
func (s *NewsStore) HasChannelItems(ctx context.Context, channelID model.ChannelID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM news_items WHERE channel_id = ?)`, channelID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking channel items: %w", err)
	}
	return exists, nil
}

// GetItemCountByChannelID returns the news item count (including zero)
// per channel, indexed by channel id.
func (s *NewsStore) GetItemCountByChannelID(ctx context.Context) (map[model.ChannelID]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, COUNT(i.id)
		FROM news_channels c
		LEFT OUTER JOIN news_items i ON i.channel_id = c.id
		GROUP BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("counting items by channel: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[model.ChannelID]int)
	for rows.Next() {
		var channelID model.ChannelID
		var count int
		if err := rows.Scan(&channelID, &count); err != nil {
			return nil, fmt.Errorf("scanning item count: %w", err)
		}
		counts[channelID] = count
	}
	return counts, rows.Err()
}

// CreateNewsItemParams holds the values for creating a news item
// together with its initial version.
type CreateNewsItemParams struct {
	ItemID     model.NewsItemID
	VersionID  model.NewsItemVersionID
	BrandID    model.BrandID
	ChannelID  model.ChannelID
	Slug       string
	CreatorID  model.UserID
	CreatedAt  time.Time
	Title      string
	Body       string
	BodyFormat model.BodyFormat
}

// CreateItem inserts a news item, its initial version, and the
// current-version pointer in a single transaction. Slug availability
// per brand is checked case-insensitively.
func (s *NewsStore) CreateItem(ctx context.Context, p CreateNewsItemParams) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM news_items
			WHERE brand_id = ? AND slug = ? COLLATE NOCASE`,
			p.BrandID, p.Slug,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("checking slug availability: %w", err)
		}
		if count > 0 {
			return model.SlugUnavailableError{BrandID: p.BrandID, Slug: p.Slug}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO news_items (id, brand_id, channel_id, slug, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			p.ItemID, p.BrandID, p.ChannelID, p.Slug, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting news item: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO news_item_versions (id, item_id, created_at, creator_id, title, body, body_format)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.VersionID, p.ItemID, p.CreatedAt, p.CreatorID, p.Title, p.Body, p.BodyFormat)
		if err != nil {
			return fmt.Errorf("inserting news item version: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO news_item_current_versions (item_id, version_id)
			VALUES (?, ?)`,
			p.ItemID, p.VersionID)
		if err != nil {
			return fmt.Errorf("inserting current version pointer: %w", err)
		}

		return nil
	})
}

// AppendNewsItemVersionParams holds the values for appending a version
// to an existing news item.
type AppendNewsItemVersionParams struct {
	ItemID     model.NewsItemID
	VersionID  model.NewsItemVersionID
	CreatorID  model.UserID
	CreatedAt  time.Time
	Title      string
	Body       string
	BodyFormat model.BodyFormat
}

// AppendVersion inserts a new version and repoints the head in a
// single transaction. The head update is an idempotent upsert.
func (s *NewsStore) AppendVersion(ctx context.Context, p AppendNewsItemVersionParams) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO news_item_versions (id, item_id, created_at, creator_id, title, body, body_format)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.VersionID, p.ItemID, p.CreatedAt, p.CreatorID, p.Title, p.Body, p.BodyFormat)
		if err != nil {
			return fmt.Errorf("inserting news item version: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO news_item_current_versions (item_id, version_id)
			VALUES (?, ?)
			ON CONFLICT (item_id) DO UPDATE SET version_id = excluded.version_id`,
			p.ItemID, p.VersionID)
		if err != nil {
			return fmt.Errorf("updating current version pointer: %w", err)
		}

		return nil
	})
}

// FindItem returns the news item with that id. Returns sql.ErrNoRows
// if not found.
func (s *NewsStore) FindItem(ctx context.Context, id model.NewsItemID) (model.NewsItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, brand_id, channel_id, slug, created_at, published_at, featured_image_id
		FROM news_items WHERE id = ?`, id)
	return scanNewsItem(row)
}

// FindItemBySlug returns the news item identified by that slug in one
// of the given channels. With publishedOnly, items that are not yet
// published at the given moment are excluded. Returns sql.ErrNoRows if
// not found.
func (s *NewsStore) FindItemBySlug(
	ctx context.Context, channelIDs []model.ChannelID, slug string,
	publishedOnly bool, now time.Time,
) (model.NewsItem, error) {
	if len(channelIDs) == 0 {
		return model.NewsItem{}, sql.ErrNoRows
	}

	query := `
		SELECT id, brand_id, channel_id, slug, created_at, published_at, featured_image_id
		FROM news_items
		WHERE channel_id IN (` + sqlPlaceholders(len(channelIDs)) + `) AND slug = ?`
	args := channelIDArgs(channelIDs)
	args = append(args, slug)

	if publishedOnly {
		query += ` AND published_at IS NOT NULL AND published_at <= ?`
		args = append(args, now)
	}

	row := s.db.QueryRowContext(ctx, query, args...)
	return scanNewsItem(row)
}

// GetHeadVersion returns the version the item's current-version
// pointer names. Returns sql.ErrNoRows if the pointer is absent.
func (s *NewsStore) GetHeadVersion(ctx context.Context, id model.NewsItemID) (model.NewsItemVersion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT v.id, v.item_id, v.created_at, v.creator_id, v.title, v.body, v.body_format
		FROM news_item_versions v
		INNER JOIN news_item_current_versions cv ON cv.version_id = v.id
		WHERE cv.item_id = ?`, id)
	return scanNewsItemVersion(row)
}

// FindVersion returns the version with that id. Returns sql.ErrNoRows
// if not found.
func (s *NewsStore) FindVersion(ctx context.Context, id model.NewsItemVersionID) (model.NewsItemVersion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, item_id, created_at, creator_id, title, body, body_format
		FROM news_item_versions WHERE id = ?`, id)
	return scanNewsItemVersion(row)
}

// ListVersions returns all versions of the news item, newest first.
func (s *NewsStore) ListVersions(ctx context.Context, id model.NewsItemID) ([]model.NewsItemVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_id, created_at, creator_id, title, body, body_format
		FROM news_item_versions
		WHERE item_id = ?
		ORDER BY created_at DESC, id DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("listing news item versions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var versions []model.NewsItemVersion
	for rows.Next() {
		version, err := scanNewsItemVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

// SetFeaturedImage marks the image as the item's featured image.
func (s *NewsStore) SetFeaturedImage(ctx context.Context, itemID model.NewsItemID, imageID model.NewsImageID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE news_items SET featured_image_id = ? WHERE id = ?`, imageID, itemID)
	if err != nil {
		return fmt.Errorf("setting featured image: %w", err)
	}
	return requireRowAffected(result)
}

// UnsetFeaturedImage clears the item's featured image selection.
func (s *NewsStore) UnsetFeaturedImage(ctx context.Context, itemID model.NewsItemID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE news_items SET featured_image_id = NULL WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("unsetting featured image: %w", err)
	}
	return requireRowAffected(result)
}

// Publish sets the item's publication timestamp if, and only if, the
// item is still a draft. Returns false when another transaction has
// already published the item.
func (s *NewsStore) Publish(ctx context.Context, id model.NewsItemID, publishedAt time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE news_items SET published_at = ? WHERE id = ? AND published_at IS NULL`,
		publishedAt, id)
	if err != nil {
		return false, fmt.Errorf("publishing news item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return affected > 0, nil
}

// Unpublish clears the item's publication timestamp if it has one.
// Returns false when the item is a draft.
func (s *NewsStore) Unpublish(ctx context.Context, id model.NewsItemID) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE news_items SET published_at = NULL WHERE id = ? AND published_at IS NOT NULL`,
		id)
	if err != nil {
		return false, fmt.Errorf("unpublishing news item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return affected > 0, nil
}

// ListItemsPaginated returns the news items of the given channels for
// one result page, together with their current versions.
func (s *NewsStore) ListItemsPaginated(
	ctx context.Context, channelIDs []model.ChannelID, limit, offset int,
	publishedOnly bool, now time.Time,
) ([]model.NewsItem, []model.NewsItemVersion, error) {
	if len(channelIDs) == 0 {
		return nil, nil, nil
	}

	query := `
		SELECT i.id, i.brand_id, i.channel_id, i.slug, i.created_at, i.published_at, i.featured_image_id,
		       v.id, v.item_id, v.created_at, v.creator_id, v.title, v.body, v.body_format
		FROM news_items i
		INNER JOIN news_item_current_versions cv ON cv.item_id = i.id
		INNER JOIN news_item_versions v ON v.id = cv.version_id
		WHERE i.channel_id IN (` + sqlPlaceholders(len(channelIDs)) + `)`
	args := channelIDArgs(channelIDs)

	if publishedOnly {
		query += ` AND i.published_at IS NOT NULL AND i.published_at <= ?`
		args = append(args, now)
	}

	query += ` ORDER BY (i.published_at IS NULL) ASC, i.published_at DESC, i.created_at DESC, i.id ASC`
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("listing news items: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []model.NewsItem
	var versions []model.NewsItemVersion
	for rows.Next() {
		var item model.NewsItem
		var version model.NewsItemVersion
		err := rows.Scan(
			&item.ID, &item.BrandID, &item.ChannelID, &item.Slug,
			&item.CreatedAt, &item.PublishedAt, &item.FeaturedImageID,
			&version.ID, &version.ItemID, &version.CreatedAt, &version.CreatorID,
			&version.Title, &version.Body, &version.BodyFormat,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("scanning news item row: %w", err)
		}
		items = append(items, item)
		versions = append(versions, version)
	}
	return items, versions, rows.Err()
}

// CountItems returns the number of news items in the given channels.
func (s *NewsStore) CountItems(
	ctx context.Context, channelIDs []model.ChannelID, publishedOnly bool, now time.Time,
) (int, error) {
	if len(channelIDs) == 0 {
		return 0, nil
	}

	query := `SELECT COUNT(*) FROM news_items
		WHERE channel_id IN (` + sqlPlaceholders(len(channelIDs)) + `)`
	args := channelIDArgs(channelIDs)

	if publishedOnly {
		query += ` AND published_at IS NOT NULL AND published_at <= ?`
		args = append(args, now)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting news items: %w", err)
	}
	return count, nil
}

// GetHeadlinesPaginated returns the headlines of the given channels
// for one result page.
func (s *NewsStore) GetHeadlinesPaginated(
	ctx context.Context, channelIDs []model.ChannelID, limit, offset int,
	publishedOnly bool, now time.Time,
) ([]model.Headline, error) {
	if len(channelIDs) == 0 {
		return nil, nil
	}

	query := headlineQuery + ` WHERE i.channel_id IN (` + sqlPlaceholders(len(channelIDs)) + `)`
	args := channelIDArgs(channelIDs)

	if publishedOnly {
		query += ` AND i.published_at IS NOT NULL AND i.published_at <= ?`
		args = append(args, now)
	}

	query += ` ORDER BY (i.published_at IS NULL) ASC, i.published_at DESC, i.created_at DESC, i.id ASC`
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	return s.queryHeadlines(ctx, query, args...)
}

// GetRecentHeadlines returns the most recently published headlines.
func (s *NewsStore) GetRecentHeadlines(
	ctx context.Context, channelIDs []model.ChannelID, limit int, now time.Time,
) ([]model.Headline, error) {
	if len(channelIDs) == 0 {
		return nil, nil
	}

	query := headlineQuery + `
		WHERE i.channel_id IN (` + sqlPlaceholders(len(channelIDs)) + `)
		AND i.published_at IS NOT NULL AND i.published_at <= ?
		ORDER BY i.published_at DESC, i.created_at DESC, i.id ASC
		LIMIT ?`
	args := channelIDArgs(channelIDs)
	args = append(args, now, limit)

	return s.queryHeadlines(ctx, query, args...)
}

// FindLatestHeadlineBefore returns the most recent headline published
// before the given moment. Returns sql.ErrNoRows if there is none.
func (s *NewsStore) FindLatestHeadlineBefore(
	ctx context.Context, channelIDs []model.ChannelID, instant time.Time,
) (model.Headline, error) {
	if len(channelIDs) == 0 {
		return model.Headline{}, sql.ErrNoRows
	}

	query := headlineQuery + `
		WHERE i.channel_id IN (` + sqlPlaceholders(len(channelIDs)) + `)
		AND i.published_at IS NOT NULL AND i.published_at < ?
		ORDER BY i.published_at DESC, i.created_at DESC, i.id ASC
		LIMIT 1`
	args := channelIDArgs(channelIDs)
	args = append(args, instant)

	row := s.db.QueryRowContext(ctx, query, args...)
	return scanHeadline(row)
}

// FindOldestHeadlineAfter returns the oldest headline published after
// the given moment. Returns sql.ErrNoRows if there is none.
func (s *NewsStore) FindOldestHeadlineAfter(
	ctx context.Context, channelIDs []model.ChannelID, instant time.Time,
) (model.Headline, error) {
	if len(channelIDs) == 0 {
		return model.Headline{}, sql.ErrNoRows
	}

	query := headlineQuery + `
		WHERE i.channel_id IN (` + sqlPlaceholders(len(channelIDs)) + `)
		AND i.published_at IS NOT NULL AND i.published_at > ?
		ORDER BY i.published_at ASC, i.created_at ASC, i.id ASC
		LIMIT 1`
	args := channelIDArgs(channelIDs)
	args = append(args, instant)

	row := s.db.QueryRowContext(ctx, query, args...)
	return scanHeadline(row)
}

const headlineQuery = `
	SELECT i.id, i.slug, v.title, i.published_at
	FROM news_items i
	INNER JOIN news_item_current_versions cv ON cv.item_id = i.id
	INNER JOIN news_item_versions v ON v.id = cv.version_id`

func (s *NewsStore) queryHeadlines(ctx context.Context, query string, args ...any) ([]model.Headline, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing headlines: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var headlines []model.Headline
	for rows.Next() {
		headline, err := scanHeadline(rows)
		if err != nil {
			return nil, err
		}
		headlines = append(headlines, headline)
	}
	return headlines, rows.Err()
}

// CreateImage attaches an image to a news item.
func (s *NewsStore) CreateImage(ctx context.Context, image model.NewsImage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO news_images (id, item_id, number, url_path, alt_text, caption, attribution)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		image.ID, image.ItemID, image.Number, image.URLPath,
		image.AltText, image.Caption, image.Attribution)
	if err != nil {
		return fmt.Errorf("inserting news image: %w", err)
	}
	return nil
}

// GetImages returns the images attached to the item, ordered by their
// per-item number.
func (s *NewsStore) GetImages(ctx context.Context, itemID model.NewsItemID) ([]model.NewsImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_id, number, url_path, alt_text, caption, attribution
		FROM news_images
		WHERE item_id = ?
		ORDER BY number ASC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("listing news images: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var images []model.NewsImage
	for rows.Next() {
		var image model.NewsImage
		err := rows.Scan(&image.ID, &image.ItemID, &image.Number, &image.URLPath,
			&image.AltText, &image.Caption, &image.Attribution)
		if err != nil {
			return nil, fmt.Errorf("scanning news image: %w", err)
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

// DeleteItem removes the current-version pointer, every version, and
// the item itself in a single transaction. Attached images are not
// removed; their foreign keys make the deletion fail instead.
func (s *NewsStore) DeleteItem(ctx context.Context, id model.NewsItemID) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM news_item_current_versions WHERE item_id = ?`, id); err != nil {
			return fmt.Errorf("deleting current version pointer: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM news_item_versions WHERE item_id = ?`, id); err != nil {
			return fmt.Errorf("deleting news item versions: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM news_items WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting news item: %w", err)
		}
		return requireRowAffected(result)
	})
}

// DeleteImages removes all images attached to the item.
func (s *NewsStore) DeleteImages(ctx context.Context, itemID model.NewsItemID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM news_images WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("deleting news images: %w", err)
	}
	return nil
}

func scanNewsItem(row rowScanner) (model.NewsItem, error) {
	var item model.NewsItem
	err := row.Scan(&item.ID, &item.BrandID, &item.ChannelID, &item.Slug,
		&item.CreatedAt, &item.PublishedAt, &item.FeaturedImageID)
	if err != nil {
		return model.NewsItem{}, err
	}
	return item, nil
}

func scanNewsItemVersion(row rowScanner) (model.NewsItemVersion, error) {
	var version model.NewsItemVersion
	err := row.Scan(&version.ID, &version.ItemID, &version.CreatedAt,
		&version.CreatorID, &version.Title, &version.Body, &version.BodyFormat)
	if err != nil {
		return model.NewsItemVersion{}, err
	}
	return version, nil
}

func scanHeadline(row rowScanner) (model.Headline, error) {
	var headline model.Headline
	err := row.Scan(&headline.ItemID, &headline.Slug, &headline.Title, &headline.PublishedAt)
	if err != nil {
		return model.Headline{}, err
	}
	return headline, nil
}

// sqlPlaceholders returns n comma-separated placeholders for an IN
// clause.
func sqlPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func channelIDArgs(channelIDs []model.ChannelID) []any {
	args := make([]any, 0, len(channelIDs)+2)
	for _, id := range channelIDs {
		args = append(args, id)
	}
	return args
}
