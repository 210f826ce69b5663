package services

import (
	"context"

	uuid "github.com/gofrs/uuid"

	"github.com/qolzam/telar/apps/feeds/feeds/models"
	"github.com/qolzam/telar/apps/feeds/internal/cache"
)

// FeedService defines the interface for feed operations
type FeedService interface {
	// Feed lifecycle
	CreateFeed(ctx context.Context, authorID uuid.UUID, req *models.CreateFeedRequest) (uuid.UUID, error)
	GetFeed(ctx context.Context, feedID string) (*models.Feed, error)
	GetAllFeeds(ctx context.Context) ([]*models.Feed, error)
	QueryFeeds(ctx context.Context, filter *models.FeedQueryFilter) ([]*models.Feed, error)
	UpdateFeed(ctx context.Context, feedID string, actingID uuid.UUID, description string) (*models.Feed, error)
	DeleteFeed(ctx context.Context, feedID string, actingID uuid.UUID) error

	// Images
	AddFeedImages(ctx context.Context, actingID uuid.UUID, feedID string, urls []string) ([]models.FeedImage, error)
	UpdateFeedImage(ctx context.Context, actingID uuid.UUID, feedID, imageID string, url string) (*models.FeedImage, error)
	DeleteFeedImage(ctx context.Context, actingID uuid.UUID, feedID, imageID string) error

	// Likes
	LikeFeed(ctx context.Context, userID uuid.UUID, feedID string) error
	UnlikeFeed(ctx context.Context, userID uuid.UUID, feedID string) error
	CheckLikeStatus(ctx context.Context, userID uuid.UUID, feedID string) (bool, error)

	// Cached counters
	GetLikeCount(ctx context.Context, feedID string) (int64, error)
	GetCommentCount(ctx context.Context, feedID string) (int64, error)

	// Ping checks the store and the cache
	Ping(ctx context.Context) error
	// CacheStats reports the counter cache, or nil when caching is disabled
	CacheStats(ctx context.Context) *cache.CacheStats
}
