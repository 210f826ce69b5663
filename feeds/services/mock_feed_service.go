package services

import (
	"context"

	uuid "github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/qolzam/telar/apps/feeds/feeds/models"
	"github.com/qolzam/telar/apps/feeds/internal/cache"
)

// MockFeedService is a mock implementation of FeedService for handler tests
type MockFeedService struct {
	mock.Mock
}

var _ FeedService = (*MockFeedService)(nil)

func (m *MockFeedService) CreateFeed(ctx context.Context, authorID uuid.UUID, req *models.CreateFeedRequest) (uuid.UUID, error) {
	args := m.Called(ctx, authorID, req)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockFeedService) GetFeed(ctx context.Context, feedID string) (*models.Feed, error) {
	args := m.Called(ctx, feedID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feed), args.Error(1)
}

func (m *MockFeedService) GetAllFeeds(ctx context.Context) ([]*models.Feed, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Feed), args.Error(1)
}

func (m *MockFeedService) QueryFeeds(ctx context.Context, filter *models.FeedQueryFilter) ([]*models.Feed, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Feed), args.Error(1)
}

func (m *MockFeedService) UpdateFeed(ctx context.Context, feedID string, actingID uuid.UUID, description string) (*models.Feed, error) {
	args := m.Called(ctx, feedID, actingID, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feed), args.Error(1)
}

func (m *MockFeedService) DeleteFeed(ctx context.Context, feedID string, actingID uuid.UUID) error {
	args := m.Called(ctx, feedID, actingID)
	return args.Error(0)
}

func (m *MockFeedService) AddFeedImages(ctx context.Context, actingID uuid.UUID, feedID string, urls []string) ([]models.FeedImage, error) {
	args := m.Called(ctx, actingID, feedID, urls)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FeedImage), args.Error(1)
}

func (m *MockFeedService) UpdateFeedImage(ctx context.Context, actingID uuid.UUID, feedID, imageID string, url string) (*models.FeedImage, error) {
	args := m.Called(ctx, actingID, feedID, imageID, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeedImage), args.Error(1)
}

func (m *MockFeedService) DeleteFeedImage(ctx context.Context, actingID uuid.UUID, feedID, imageID string) error {
	args := m.Called(ctx, actingID, feedID, imageID)
	return args.Error(0)
}

func (m *MockFeedService) LikeFeed(ctx context.Context, userID uuid.UUID, feedID string) error {
	args := m.Called(ctx, userID, feedID)
	return args.Error(0)
}

func (m *MockFeedService) UnlikeFeed(ctx context.Context, userID uuid.UUID, feedID string) error {
	args := m.Called(ctx, userID, feedID)
	return args.Error(0)
}

func (m *MockFeedService) CheckLikeStatus(ctx context.Context, userID uuid.UUID, feedID string) (bool, error) {
	args := m.Called(ctx, userID, feedID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFeedService) GetLikeCount(ctx context.Context, feedID string) (int64, error) {
	args := m.Called(ctx, feedID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFeedService) GetCommentCount(ctx context.Context, feedID string) (int64, error) {
	args := m.Called(ctx, feedID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFeedService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockFeedService) CacheStats(ctx context.Context) *cache.CacheStats {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*cache.CacheStats)
}
