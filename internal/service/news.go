// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/store"
	"github.com/byceps/byceps-go/internal/util"
)

// NewsRenderer turns a news item version into HTML, containing any
// render failure inside the result.
type NewsRenderer interface {
	RenderItem(
		ctx context.Context, item model.NewsItem,
		version model.NewsItemVersion, images []model.NewsImage,
	) model.RenderedNewsItem
}

// NewsService manages news channels, items, versions, and images.
type NewsService struct {
	news     *store.NewsStore
	sites    SiteDirectory
	users    UserDirectory
	renderer NewsRenderer
	clock    Clock
	idGen    IDGenerator
	events   EventSink
	log      *slog.Logger
}

// NewNewsService creates a new NewsService.
func NewNewsService(
	news *store.NewsStore, sites SiteDirectory, users UserDirectory,
	renderer NewsRenderer, clock Clock, idGen IDGenerator,
	events EventSink, log *slog.Logger,
) *NewsService {
	return &NewsService{
		news:     news,
		sites:    sites,
		users:    users,
		renderer: renderer,
		clock:    clock,
		idGen:    idGen,
		events:   events,
		log:      log,
	}
}

// CreateChannel creates a news channel.
func (s *NewsService) CreateChannel(ctx context.Context, channel model.NewsChannel) error {
	if err := s.news.CreateChannel(ctx, channel); err != nil {
		return err
	}
	s.log.Info("news channel created", "channel_id", channel.ID, "brand_id", channel.BrandID)
	return nil
}

// GetChannel returns the channel with that id.
func (s *NewsService) GetChannel(ctx context.Context, channelID model.ChannelID) (model.NewsChannel, error) {
	channel, err := s.news.FindChannel(ctx, channelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewsChannel{}, fmt.Errorf("unknown news channel %q", channelID)
		}
		return model.NewsChannel{}, fmt.Errorf("finding news channel: %w", err)
	}
	return channel, nil
}

// GetChannelsForBrand returns all channels of the brand.
func (s *NewsService) GetChannelsForBrand(ctx context.Context, brandID model.BrandID) ([]model.NewsChannel, error) {
	return s.news.GetChannelsForBrand(ctx, brandID)
}

// HasChannelItems reports whether the channel contains items. Channels
// with items must not be removed.
func (s *NewsService) HasChannelItems(ctx context.Context, channelID model.ChannelID) (bool, error) {
	return s.news.HasChannelItems(ctx, channelID)
}

// GetItemCountByChannelID returns the item count per channel.
func (s *NewsService) GetItemCountByChannelID(ctx context.Context) (map[model.ChannelID]int, error) {
	return s.news.GetItemCountByChannelID(ctx)
}

// NewsItemPayload is the version content of a news item.
type NewsItemPayload struct {
	Title      string
	Body       string
	BodyFormat model.BodyFormat
}

// CreateItem creates a news item with an initial version. The item
// starts as a draft. An empty slug is derived from the title; a
// malformed one fails with InvalidSlugError. Fails with
// SlugUnavailableError if the slug is taken for the brand, compared
// case-insensitively.
func (s *NewsService) CreateItem(
	ctx context.Context, channelID model.ChannelID, slug string,
	creatorID model.UserID, payload NewsItemPayload,
) (model.NewsItem, model.NewsItemVersion, error) {
	channel, err := s.GetChannel(ctx, channelID)
	if err != nil {
		return model.NewsItem{}, model.NewsItemVersion{}, err
	}

	if slug == "" {
		slug = util.Slugify(payload.Title)
	}
	if !util.IsValidSlug(slug) {
		return model.NewsItem{}, model.NewsItemVersion{}, model.InvalidSlugError{Slug: slug}
	}

	itemID, err := s.idGen.NewID()
	if err != nil {
		return model.NewsItem{}, model.NewsItemVersion{}, err
	}
	versionID, err := s.idGen.NewID()
	if err != nil {
		return model.NewsItem{}, model.NewsItemVersion{}, err
	}
	now := s.clock.Now()

	err = s.news.CreateItem(ctx, store.CreateNewsItemParams{
		ItemID:     model.NewsItemID(itemID),
		VersionID:  model.NewsItemVersionID(versionID),
		BrandID:    channel.BrandID,
		ChannelID:  channelID,
		Slug:       slug,
		CreatorID:  creatorID,
		CreatedAt:  now,
		Title:      payload.Title,
		Body:       payload.Body,
		BodyFormat: payload.BodyFormat,
	})
	if err != nil {
		return model.NewsItem{}, model.NewsItemVersion{}, err
	}

	item := model.NewsItem{
		ID:        model.NewsItemID(itemID),
		BrandID:   channel.BrandID,
		ChannelID: channelID,
		Slug:      slug,
		CreatedAt: now,
	}
	version := model.NewsItemVersion{
		ID:         model.NewsItemVersionID(versionID),
		ItemID:     item.ID,
		CreatedAt:  now,
		CreatorID:  creatorID,
		Title:      payload.Title,
		Body:       payload.Body,
		BodyFormat: payload.BodyFormat,
	}

	s.log.Info("news item created",
		"item_id", item.ID, "channel_id", channelID, "slug", slug)

	return item, version, nil
}

// UpdateItem appends a new version to the news item and makes it
// current.
func (s *NewsService) UpdateItem(
	ctx context.Context, itemID model.NewsItemID,
	creatorID model.UserID, payload NewsItemPayload,
) (model.NewsItem, model.NewsItemVersion, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return model.NewsItem{}, model.NewsItemVersion{}, err
	}

	versionID, err := s.idGen.NewID()
	if err != nil {
		return model.NewsItem{}, model.NewsItemVersion{}, err
	}
	now := s.clock.Now()

	err = s.news.AppendVersion(ctx, store.AppendNewsItemVersionParams{
		ItemID:     itemID,
		VersionID:  model.NewsItemVersionID(versionID),
		CreatorID:  creatorID,
		CreatedAt:  now,
		Title:      payload.Title,
		Body:       payload.Body,
		BodyFormat: payload.BodyFormat,
	})
	if err != nil {
		return model.NewsItem{}, model.NewsItemVersion{}, err
	}

	version := model.NewsItemVersion{
		ID:         model.NewsItemVersionID(versionID),
		ItemID:     itemID,
		CreatedAt:  now,
		CreatorID:  creatorID,
		Title:      payload.Title,
		Body:       payload.Body,
		BodyFormat: payload.BodyFormat,
	}

	s.log.Info("news item updated", "item_id", itemID, "item_version_id", version.ID)

	return item, version, nil
}

// FindItem returns the news item, or false when it does not exist.
func (s *NewsService) FindItem(ctx context.Context, itemID model.NewsItemID) (model.NewsItem, bool, error) {
	item, err := s.news.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewsItem{}, false, nil
		}
		return model.NewsItem{}, false, fmt.Errorf("finding news item: %w", err)
	}
	return item, true, nil
}

// GetItem returns the news item or a NewsItemNotFoundError.
func (s *NewsService) GetItem(ctx context.Context, itemID model.NewsItemID) (model.NewsItem, error) {
	item, found, err := s.FindItem(ctx, itemID)
	if err != nil {
		return model.NewsItem{}, err
	}
	if !found {
		return model.NewsItem{}, model.NewsItemNotFoundError{ID: itemID}
	}
	return item, nil
}

// GetItemBySlug returns the news item with that slug in one of the
// given channels, or a NewsItemNotFoundError. With publishedOnly,
// drafts and items still scheduled at the current moment are treated
// as absent.
func (s *NewsService) GetItemBySlug(
	ctx context.Context, channelIDs []model.ChannelID, slug string, publishedOnly bool,
) (model.NewsItem, error) {
	item, err := s.news.FindItemBySlug(ctx, channelIDs, slug, publishedOnly, s.clock.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewsItem{}, model.NewsItemNotFoundError{Slug: slug}
		}
		return model.NewsItem{}, fmt.Errorf("finding news item by slug: %w", err)
	}
	return item, nil
}

// GetVersion returns the version with that id, regardless of whether
// it is current.
func (s *NewsService) GetVersion(ctx context.Context, versionID model.NewsItemVersionID) (model.NewsItemVersion, error) {
	version, err := s.news.FindVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewsItemVersion{}, model.NewsItemNotFoundError{Slug: string(versionID)}
		}
		return model.NewsItemVersion{}, fmt.Errorf("finding news item version: %w", err)
	}
	return version, nil
}

// GetHeadVersion returns the item's current version.
func (s *NewsService) GetHeadVersion(ctx context.Context, itemID model.NewsItemID) (model.NewsItemVersion, error) {
	version, err := s.news.GetHeadVersion(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewsItemVersion{}, model.NewsItemNotFoundError{ID: itemID}
		}
		return model.NewsItemVersion{}, fmt.Errorf("finding current news item version: %w", err)
	}
	return version, nil
}

// GetVersions returns all versions of the news item, newest first.
func (s *NewsService) GetVersions(ctx context.Context, itemID model.NewsItemID) ([]model.NewsItemVersion, error) {
	return s.news.ListVersions(ctx, itemID)
}

// GetVersionsWithCreators returns all versions of the news item,
// newest first, along with the directory entries of their creators.
// Creators missing from the directory are absent from the map.
func (s *NewsService) GetVersionsWithCreators(
	ctx context.Context, itemID model.NewsItemID,
) ([]model.NewsItemVersion, map[model.UserID]model.User, error) {
	versions, err := s.news.ListVersions(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[model.UserID]struct{}, len(versions))
	creatorIDs := make([]model.UserID, 0, len(versions))
	for _, version := range versions {
		if _, ok := seen[version.CreatorID]; ok {
			continue
		}
		seen[version.CreatorID] = struct{}{}
		creatorIDs = append(creatorIDs, version.CreatorID)
	}

	creators, err := s.users.GetUsersIndexedByID(ctx, creatorIDs)
	if err != nil {
		return nil, nil, err
	}
	return versions, creators, nil
}

// Publish publishes the news item. A zero `when` publishes now;
// a future `when` schedules the item. Only drafts can be published;
// concurrent calls serialize, exactly one succeeding and the others
// observing ErrNewsItemAlreadyPublished. On success an event carrying
// the external URL (when the channel has an announcement site) is
// emitted.
func (s *NewsService) Publish(
	ctx context.Context, itemID model.NewsItemID, when time.Time, initiator *model.Initiator,
) (model.NewsItem, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return model.NewsItem{}, err
	}

	publishedAt := when
	if publishedAt.IsZero() {
		publishedAt = s.clock.Now()
	}

	published, err := s.news.Publish(ctx, itemID, publishedAt)
	if err != nil {
		return model.NewsItem{}, err
	}
	if !published {
		return model.NewsItem{}, model.ErrNewsItemAlreadyPublished
	}
	item.PublishedAt = sql.NullTime{Time: publishedAt, Valid: true}

	version, err := s.GetHeadVersion(ctx, itemID)
	if err != nil {
		return model.NewsItem{}, err
	}

	externalURL, err := s.externalURL(ctx, item)
	if err != nil {
		s.log.Warn("could not derive external URL for news item",
			"item_id", itemID, "error", err)
	}

	// Resolve the initiator against the user directory so the event
	// carries the current screen name.
	if initiator != nil {
		user, err := s.users.GetUser(ctx, initiator.ID)
		if err != nil {
			s.log.Warn("could not resolve publish initiator",
				"user_id", initiator.ID, "error", err)
		} else {
			initiator = &model.Initiator{ID: user.ID, ScreenName: user.ScreenName}
		}
	}

	s.log.Info("news item published",
		"item_id", itemID, "published_at", publishedAt, "external_url", externalURL)
	s.events.Emit(ctx, model.NewsItemPublishedEvent{
		EventBase:   model.NewEventBase(s.clock.Now(), initiator),
		ItemID:      itemID,
		ChannelID:   item.ChannelID,
		PublishedAt: publishedAt,
		Title:       version.Title,
		ExternalURL: externalURL,
	})

	return item, nil
}

// Unpublish reverts the news item to a draft. Fails with
// ErrNewsItemNotPublished when the item is a draft already.
func (s *NewsService) Unpublish(ctx context.Context, itemID model.NewsItemID) (model.NewsItem, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return model.NewsItem{}, err
	}

	unpublished, err := s.news.Unpublish(ctx, itemID)
	if err != nil {
		return model.NewsItem{}, err
	}
	if !unpublished {
		return model.NewsItem{}, model.ErrNewsItemNotPublished
	}
	item.PublishedAt = sql.NullTime{}

	s.log.Info("news item unpublished", "item_id", itemID)

	return item, nil
}

// externalURL derives the public URL of the item from the channel's
// announcement site. Empty when the channel has none.
func (s *NewsService) externalURL(ctx context.Context, item model.NewsItem) (string, error) {
	channel, err := s.GetChannel(ctx, item.ChannelID)
	if err != nil {
		return "", err
	}
	if !channel.AnnouncementSiteID.Valid {
		return "", nil
	}
	site, err := s.sites.GetSite(ctx, model.SiteID(channel.AnnouncementSiteID.String))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s/news/%s", site.ServerName, item.Slug), nil
}

// AddImage attaches an image to the news item. The image receives the
// next free per-item number.
func (s *NewsService) AddImage(
	ctx context.Context, itemID model.NewsItemID, urlPath string,
	altText, caption, attribution sql.NullString,
) (model.NewsImage, error) {
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return model.NewsImage{}, err
	}

	images, err := s.news.GetImages(ctx, itemID)
	if err != nil {
		return model.NewsImage{}, err
	}
	number := 1
	if len(images) > 0 {
		number = images[len(images)-1].Number + 1
	}

	imageID, err := s.idGen.NewID()
	if err != nil {
		return model.NewsImage{}, err
	}

	image := model.NewsImage{
		ID:          model.NewsImageID(imageID),
		ItemID:      itemID,
		Number:      number,
		URLPath:     urlPath,
		AltText:     altText,
		Caption:     caption,
		Attribution: attribution,
	}
	if err := s.news.CreateImage(ctx, image); err != nil {
		return model.NewsImage{}, err
	}

	s.log.Info("news image added", "item_id", itemID, "image_id", image.ID, "number", number)

	return image, nil
}

// GetImages returns the images attached to the item, ordered by number.
func (s *NewsService) GetImages(ctx context.Context, itemID model.NewsItemID) ([]model.NewsImage, error) {
	return s.news.GetImages(ctx, itemID)
}

// SetFeaturedImage marks the image as the item's featured image.
func (s *NewsService) SetFeaturedImage(
	ctx context.Context, itemID model.NewsItemID, imageID model.NewsImageID,
) error {
	err := s.news.SetFeaturedImage(ctx, itemID, imageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewsItemNotFoundError{ID: itemID}
		}
		return err
	}
	return nil
}

// UnsetFeaturedImage clears the item's featured image selection.
func (s *NewsService) UnsetFeaturedImage(ctx context.Context, itemID model.NewsItemID) error {
	err := s.news.UnsetFeaturedImage(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewsItemNotFoundError{ID: itemID}
		}
		return err
	}
	return nil
}

// DeleteItem removes the news item and all of its versions. Items
// with attached images cannot be deleted; the attempt fails with
// DeletionFailedError and leaves everything in place.
func (s *NewsService) DeleteItem(ctx context.Context, itemID model.NewsItemID) error {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	images, err := s.news.GetImages(ctx, itemID)
	if err != nil {
		return err
	}
	if len(images) > 0 {
		return model.DeletionFailedError{
			Reason: fmt.Sprintf("news item %s still has %d attached image(s)", itemID, len(images)),
		}
	}

	if err := s.news.DeleteItem(ctx, itemID); err != nil {
		return model.DeletionFailedError{
			Reason: fmt.Sprintf("news item %s could not be deleted", itemID),
			Err:    err,
		}
	}

	s.log.Info("news item deleted", "item_id", itemID, "slug", item.Slug)

	return nil
}

// GetRenderedItemsPaginated returns one page of news items, each with
// rendered HTML for body and featured image. Render failures are
// contained per item; a failing item remains listable.
func (s *NewsService) GetRenderedItemsPaginated(
	ctx context.Context, channelIDs []model.ChannelID,
	page, perPage int, publishedOnly bool,
) ([]model.RenderedNewsItem, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	now := s.clock.Now()

	items, versions, err := s.news.ListItemsPaginated(
		ctx, channelIDs, perPage, (page-1)*perPage, publishedOnly, now)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.news.CountItems(ctx, channelIDs, publishedOnly, now)
	if err != nil {
		return nil, 0, err
	}

	rendered := make([]model.RenderedNewsItem, 0, len(items))
	for i, item := range items {
		images, err := s.news.GetImages(ctx, item.ID)
		if err != nil {
			return nil, 0, err
		}
		rendered = append(rendered, s.renderer.RenderItem(ctx, item, versions[i], images))
	}
	return rendered, total, nil
}

// GetRenderedItem returns the news item with rendered HTML for its
// current version.
func (s *NewsService) GetRenderedItem(ctx context.Context, itemID model.NewsItemID) (model.RenderedNewsItem, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return model.RenderedNewsItem{}, err
	}
	version, err := s.GetHeadVersion(ctx, itemID)
	if err != nil {
		return model.RenderedNewsItem{}, err
	}
	images, err := s.news.GetImages(ctx, itemID)
	if err != nil {
		return model.RenderedNewsItem{}, err
	}
	return s.renderer.RenderItem(ctx, item, version, images), nil
}

// GetHeadlinesPaginated returns one page of headlines.
func (s *NewsService) GetHeadlinesPaginated(
	ctx context.Context, channelIDs []model.ChannelID,
	page, perPage int, publishedOnly bool,
) ([]model.Headline, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	return s.news.GetHeadlinesPaginated(
		ctx, channelIDs, perPage, (page-1)*perPage, publishedOnly, s.clock.Now())
}

// GetRecentHeadlines returns the most recently published headlines,
// for site start pages.
func (s *NewsService) GetRecentHeadlines(
	ctx context.Context, channelIDs []model.ChannelID, limit int,
) ([]model.Headline, error) {
	return s.news.GetRecentHeadlines(ctx, channelIDs, limit, s.clock.Now())
}

// FindLatestHeadlineBefore returns the most recent headline published
// before the given moment, or false when there is none.
func (s *NewsService) FindLatestHeadlineBefore(
	ctx context.Context, channelIDs []model.ChannelID, instant time.Time,
) (model.Headline, bool, error) {
	headline, err := s.news.FindLatestHeadlineBefore(ctx, channelIDs, instant)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Headline{}, false, nil
		}
		return model.Headline{}, false, err
	}
	return headline, true, nil
}

// FindOldestHeadlineAfter returns the oldest headline published after
// the given moment, or false when there is none.
func (s *NewsService) FindOldestHeadlineAfter(
	ctx context.Context, channelIDs []model.ChannelID, instant time.Time,
) (model.Headline, bool, error) {
	headline, err := s.news.FindOldestHeadlineAfter(ctx, channelIDs, instant)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Headline{}, false, nil
		}
		return model.Headline{}, false, err
	}
	return headline, true, nil
}
