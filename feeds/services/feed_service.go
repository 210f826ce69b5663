// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/gofrs/uuid"

	feedErrors "github.com/qolzam/telar/apps/feeds/feeds/errors"
	"github.com/qolzam/telar/apps/feeds/feeds/models"
	"github.com/qolzam/telar/apps/feeds/feeds/repository"
	"github.com/qolzam/telar/apps/feeds/internal/cache"
	"github.com/qolzam/telar/apps/feeds/internal/pkg/log"
	"github.com/qolzam/telar/apps/feeds/internal/platform/config"
)

// Action tags used in logs and persistence errors
const (
	actionCreateFeed      = "createFeed"
	actionGetFeed         = "getFeedById"
	actionGetAllFeeds     = "getAllFeeds"
	actionQueryFeeds      = "queryFeeds"
	actionUpdateFeed      = "updateFeed"
	actionDeleteFeed      = "deleteFeed"
	actionAddFeedImages   = "addFeedImages"
	actionUpdateFeedImage = "updateFeedImage"
	actionDeleteFeedImage = "deleteFeedImage"
	actionLikeFeed        = "likeFeed"
	actionUnlikeFeed      = "unlikeFeed"
	actionCheckLikeStatus = "checkLikeStatus"
	actionGetLikeCount    = "getLikeCount"
	actionGetCommentCount = "getCommentCount"
)

// feedService implements FeedService on an injected store and cache
type feedService struct {
	repo        repository.FeedRepository
	cache       cache.Cache
	counters    *counterCache
	invalidator *invalidator
}

// NewFeedService creates a feed service. c may be nil, in which case counters are never cached.
func NewFeedService(repo repository.FeedRepository, c cache.Cache, cfg config.FeedsConfig) FeedService {
	ttl := cfg.CounterTTL
	if ttl <= 0 {
		ttl = config.DefaultCounterTTL
	}
	return &feedService{
		repo:        repo,
		cache:       c,
		counters:    &counterCache{cache: c, ttl: ttl},
		invalidator: newInvalidator(c, cfg.InvalidationTimeout, cfg.InvalidationRetries),
	}
}

// fail logs err under the action tag and returns it with its kind preserved.
// Anything that is not a business outcome becomes a persistence error.
func (s *feedService) fail(ctx context.Context, action string, err error) error {
	if feedErrors.IsBusiness(err) {
		log.WarnWithContext(ctx, "[%s] %v", action, err)
		return err
	}

	log.ErrorWithContext(ctx, "[%s] %v", action, err)
	var fe *feedErrors.FeedError
	if errors.As(err, &fe) && fe.Code == feedErrors.CodePersistenceError {
		return err
	}
	return feedErrors.NewPersistenceError(action, err)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", feedErrors.ErrValidationFailed, err)
}

// parseFeedID maps an unparseable id to ErrFeedNotFound since no such feed can exist
func parseFeedID(raw string) (uuid.UUID, error) {
	id, err := models.ParseFeedID(raw)
	if err != nil {
		return uuid.Nil, feedErrors.ErrFeedNotFound
	}
	return id, nil
}

func parseImageID(raw string) (uuid.UUID, error) {
	id, err := models.ParseFeedID(raw)
	if err != nil {
		return uuid.Nil, feedErrors.ErrImageNotFound
	}
	return id, nil
}

// loadFeed fetches an existing feed by its raw id
func (s *feedService) loadFeed(ctx context.Context, feedID string) (*models.Feed, error) {
	id, err := parseFeedID(feedID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// authorize loads the feed and requires actingID to be its owner.
// The store is not written on rejection.
func (s *feedService) authorize(ctx context.Context, feedID string, actingID uuid.UUID) (*models.Feed, error) {
	feed, err := s.loadFeed(ctx, feedID)
	if err != nil {
		return nil, err
	}
	if feed.OwnerUserId != actingID {
		return nil, feedErrors.ErrPermissionDenied
	}
	return feed, nil
}

// CreateFeed creates a feed owned by authorID with optional ordered images
func (s *feedService) CreateFeed(ctx context.Context, authorID uuid.UUID, req *models.CreateFeedRequest) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, s.fail(ctx, actionCreateFeed, invalid(err))
	}

	feedID, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, s.fail(ctx, actionCreateFeed, fmt.Errorf("failed to generate feed ID: %w", err))
	}

	now := time.Now()
	feed := &models.Feed{
		ObjectId:    feedID,
		OwnerUserId: authorID,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedDate: now.Unix(),
		LastUpdated: now.Unix(),
	}
	for i, url := range req.Images {
		feed.Images = append(feed.Images, models.FeedImage{
			ObjectId:  uuid.Must(uuid.NewV4()),
			FeedId:    feedID,
			URL:       url,
			Position:  i,
			CreatedAt: now,
		})
	}

	if err := s.repo.Create(ctx, feed); err != nil {
		return uuid.Nil, s.fail(ctx, actionCreateFeed, err)
	}

	s.invalidator.invalidate(ctx, models.CounterKeys(feedID)...)
	log.InfoWithContext(ctx, "[%s] feed %s created by %s with %d images", actionCreateFeed, feedID, authorID, len(feed.Images))
	return feedID, nil
}

// GetFeed returns the feed or ErrFeedNotFound
func (s *feedService) GetFeed(ctx context.Context, feedID string) (*models.Feed, error) {
	feed, err := s.loadFeed(ctx, feedID)
	if err != nil {
		return nil, s.fail(ctx, actionGetFeed, err)
	}
	return feed, nil
}

// GetAllFeeds returns every feed, newest first
func (s *feedService) GetAllFeeds(ctx context.Context) ([]*models.Feed, error) {
	feeds, err := s.repo.Find(ctx, repository.FeedFilter{})
	if err != nil {
		return nil, s.fail(ctx, actionGetAllFeeds, err)
	}
	return feeds, nil
}

// QueryFeeds returns the feeds matching filter; a nil filter matches all
func (s *feedService) QueryFeeds(ctx context.Context, filter *models.FeedQueryFilter) ([]*models.Feed, error) {
	var repoFilter repository.FeedFilter
	if filter != nil {
		repoFilter.OwnerUserID = filter.OwnerUserId
	}

	feeds, err := s.repo.Find(ctx, repoFilter)
	if err != nil {
		return nil, s.fail(ctx, actionQueryFeeds, err)
	}
	return feeds, nil
}

// UpdateFeed changes the description of a feed owned by actingID
func (s *feedService) UpdateFeed(ctx context.Context, feedID string, actingID uuid.UUID, description string) (*models.Feed, error) {
	if err := (&models.UpdateFeedRequest{Description: description}).Validate(); err != nil {
		return nil, s.fail(ctx, actionUpdateFeed, invalid(err))
	}

	feed, err := s.authorize(ctx, feedID, actingID)
	if err != nil {
		return nil, s.fail(ctx, actionUpdateFeed, err)
	}

	updated, err := s.repo.UpdateDescription(ctx, feed.ObjectId, description)
	if err != nil {
		return nil, s.fail(ctx, actionUpdateFeed, err)
	}

	s.invalidator.invalidate(ctx, models.CounterKeys(feed.ObjectId)...)
	return updated, nil
}

// DeleteFeed deletes a feed owned by actingID
func (s *feedService) DeleteFeed(ctx context.Context, feedID string, actingID uuid.UUID) error {
	feed, err := s.authorize(ctx, feedID, actingID)
	if err != nil {
		return s.fail(ctx, actionDeleteFeed, err)
	}

	if err := s.repo.Delete(ctx, feed.ObjectId); err != nil {
		return s.fail(ctx, actionDeleteFeed, err)
	}

	s.invalidator.invalidate(ctx, models.CounterKeys(feed.ObjectId)...)
	log.InfoWithContext(ctx, "[%s] feed %s deleted by %s", actionDeleteFeed, feed.ObjectId, actingID)
	return nil
}

// AddFeedImages appends images to a feed owned by actingID
func (s *feedService) AddFeedImages(ctx context.Context, actingID uuid.UUID, feedID string, urls []string) ([]models.FeedImage, error) {
	if err := (&models.AddFeedImagesRequest{Images: urls}).Validate(); err != nil {
		return nil, s.fail(ctx, actionAddFeedImages, invalid(err))
	}

	feed, err := s.authorize(ctx, feedID, actingID)
	if err != nil {
		return nil, s.fail(ctx, actionAddFeedImages, err)
	}

	images, err := s.repo.AppendImages(ctx, feed.ObjectId, urls)
	if err != nil {
		return nil, s.fail(ctx, actionAddFeedImages, err)
	}
	return images, nil
}

// UpdateFeedImage replaces one image reference of a feed owned by actingID.
// Counters are unaffected so nothing is invalidated.
func (s *feedService) UpdateFeedImage(ctx context.Context, actingID uuid.UUID, feedID, imageID string, url string) (*models.FeedImage, error) {
	if err := (&models.UpdateFeedImageRequest{URL: url}).Validate(); err != nil {
		return nil, s.fail(ctx, actionUpdateFeedImage, invalid(err))
	}

	feed, err := s.authorize(ctx, feedID, actingID)
	if err != nil {
		return nil, s.fail(ctx, actionUpdateFeedImage, err)
	}

	imgID, err := parseImageID(imageID)
	if err != nil {
		return nil, s.fail(ctx, actionUpdateFeedImage, err)
	}

	image, err := s.repo.UpdateImage(ctx, feed.ObjectId, imgID, url)
	if err != nil {
		return nil, s.fail(ctx, actionUpdateFeedImage, err)
	}
	return image, nil
}

// DeleteFeedImage deletes one image of a feed owned by actingID, never the last one
func (s *feedService) DeleteFeedImage(ctx context.Context, actingID uuid.UUID, feedID, imageID string) error {
	feed, err := s.authorize(ctx, feedID, actingID)
	if err != nil {
		return s.fail(ctx, actionDeleteFeedImage, err)
	}

	imgID, err := parseImageID(imageID)
	if err != nil {
		return s.fail(ctx, actionDeleteFeedImage, err)
	}

	if err := s.repo.DeleteImageIfNotLast(ctx, feed.ObjectId, imgID); err != nil {
		return s.fail(ctx, actionDeleteFeedImage, err)
	}
	return nil
}

// LikeFeed moves the (user, feed) pair from not liked to liked
func (s *feedService) LikeFeed(ctx context.Context, userID uuid.UUID, feedID string) error {
	feed, err := s.loadFeed(ctx, feedID)
	if err != nil {
		return s.fail(ctx, actionLikeFeed, err)
	}

	created, err := s.repo.CreateLike(ctx, &models.Like{
		FeedId:    feed.ObjectId,
		UserId:    userID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return s.fail(ctx, actionLikeFeed, err)
	}
	if !created {
		return s.fail(ctx, actionLikeFeed, feedErrors.ErrAlreadyLiked)
	}

	s.invalidator.invalidate(ctx, models.CounterLikes.CacheKey(feed.ObjectId))
	return nil
}

// UnlikeFeed moves the (user, feed) pair from liked to not liked
func (s *feedService) UnlikeFeed(ctx context.Context, userID uuid.UUID, feedID string) error {
	feed, err := s.loadFeed(ctx, feedID)
	if err != nil {
		return s.fail(ctx, actionUnlikeFeed, err)
	}

	deleted, err := s.repo.DeleteLike(ctx, feed.ObjectId, userID)
	if err != nil {
		return s.fail(ctx, actionUnlikeFeed, err)
	}
	if !deleted {
		return s.fail(ctx, actionUnlikeFeed, feedErrors.ErrNotLiked)
	}

	s.invalidator.invalidate(ctx, models.CounterLikes.CacheKey(feed.ObjectId))
	return nil
}

// CheckLikeStatus reports whether userID liked the feed
func (s *feedService) CheckLikeStatus(ctx context.Context, userID uuid.UUID, feedID string) (bool, error) {
	feed, err := s.loadFeed(ctx, feedID)
	if err != nil {
		return false, s.fail(ctx, actionCheckLikeStatus, err)
	}

	liked, err := s.repo.LikeExists(ctx, feed.ObjectId, userID)
	if err != nil {
		return false, s.fail(ctx, actionCheckLikeStatus, err)
	}
	return liked, nil
}

// GetLikeCount returns the like count, cached for the counter TTL
func (s *feedService) GetLikeCount(ctx context.Context, feedID string) (int64, error) {
	count, err := s.readCounter(ctx, models.CounterLikes, feedID)
	if err != nil {
		return 0, s.fail(ctx, actionGetLikeCount, err)
	}
	return count, nil
}

// GetCommentCount returns the comment count, cached for the counter TTL
func (s *feedService) GetCommentCount(ctx context.Context, feedID string) (int64, error) {
	count, err := s.readCounter(ctx, models.CounterComments, feedID)
	if err != nil {
		return 0, s.fail(ctx, actionGetCommentCount, err)
	}
	return count, nil
}

// readCounter is the cache-aside read shared by both counters.
// A cache hit is trusted without checking that the feed still exists.
func (s *feedService) readCounter(ctx context.Context, kind models.CounterKind, feedID string) (int64, error) {
	id, err := parseFeedID(feedID)
	if err != nil {
		return 0, err
	}

	key := kind.CacheKey(id)
	if count, ok := s.counters.lookup(ctx, key); ok {
		return count, nil
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return 0, err
	}

	var count int64
	switch kind {
	case models.CounterLikes:
		count, err = s.repo.CountLikes(ctx, id)
	case models.CounterComments:
		count, err = s.repo.CountComments(ctx, id)
	default:
		err = fmt.Errorf("unknown counter kind %q", kind)
	}
	if err != nil {
		return 0, err
	}

	s.counters.store(ctx, key, count)
	return count, nil
}

// Ping checks the store and, when configured, the cache
func (s *feedService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}

// CacheStats reports the counter cache for health checks
func (s *feedService) CacheStats(ctx context.Context) *cache.CacheStats {
	if s.cache == nil {
		return nil
	}
	stats := s.cache.Stats(ctx)
	return &stats
}
