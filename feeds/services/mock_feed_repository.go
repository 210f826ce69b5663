// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"

	uuid "github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/qolzam/telar/apps/feeds/feeds/models"
	"github.com/qolzam/telar/apps/feeds/feeds/repository"
)

// MockFeedRepository is a mock implementation of FeedRepository for testing
type MockFeedRepository struct {
	mock.Mock
}

// Ensure MockFeedRepository implements FeedRepository
var _ repository.FeedRepository = (*MockFeedRepository)(nil)

// Create mocks the Create method
func (m *MockFeedRepository) Create(ctx context.Context, feed *models.Feed) error {
	args := m.Called(ctx, feed)
	return args.Error(0)
}

// FindByID mocks the FindByID method
func (m *MockFeedRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Feed, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feed), args.Error(1)
}

// Find mocks the Find method
func (m *MockFeedRepository) Find(ctx context.Context, filter repository.FeedFilter) ([]*models.Feed, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Feed), args.Error(1)
}

// UpdateDescription mocks the UpdateDescription method
func (m *MockFeedRepository) UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*models.Feed, error) {
	args := m.Called(ctx, id, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feed), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockFeedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// AppendImages mocks the AppendImages method
func (m *MockFeedRepository) AppendImages(ctx context.Context, feedID uuid.UUID, urls []string) ([]models.FeedImage, error) {
	args := m.Called(ctx, feedID, urls)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FeedImage), args.Error(1)
}

// UpdateImage mocks the UpdateImage method
func (m *MockFeedRepository) UpdateImage(ctx context.Context, feedID, imageID uuid.UUID, url string) (*models.FeedImage, error) {
	args := m.Called(ctx, feedID, imageID, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeedImage), args.Error(1)
}

// DeleteImageIfNotLast mocks the DeleteImageIfNotLast method
func (m *MockFeedRepository) DeleteImageIfNotLast(ctx context.Context, feedID, imageID uuid.UUID) error {
	args := m.Called(ctx, feedID, imageID)
	return args.Error(0)
}

// CreateLike mocks the CreateLike method. Expectations match on the like's feed and user ids.
func (m *MockFeedRepository) CreateLike(ctx context.Context, like *models.Like) (bool, error) {
	args := m.Called(ctx, like.FeedId, like.UserId)
	return args.Bool(0), args.Error(1)
}

// DeleteLike mocks the DeleteLike method
func (m *MockFeedRepository) DeleteLike(ctx context.Context, feedID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, feedID, userID)
	return args.Bool(0), args.Error(1)
}

// LikeExists mocks the LikeExists method
func (m *MockFeedRepository) LikeExists(ctx context.Context, feedID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, feedID, userID)
	return args.Bool(0), args.Error(1)
}

// CountLikes mocks the CountLikes method
func (m *MockFeedRepository) CountLikes(ctx context.Context, feedID uuid.UUID) (int64, error) {
	args := m.Called(ctx, feedID)
	return args.Get(0).(int64), args.Error(1)
}

// CountComments mocks the CountComments method
func (m *MockFeedRepository) CountComments(ctx context.Context, feedID uuid.UUID) (int64, error) {
	args := m.Called(ctx, feedID)
	return args.Get(0).(int64), args.Error(1)
}

// Ping mocks the Ping method
func (m *MockFeedRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
