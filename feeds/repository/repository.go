// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"

	uuid "github.com/gofrs/uuid"

	"github.com/qolzam/telar/apps/feeds/feeds/models"
)

// FeedFilter represents filtering criteria for querying feeds
type FeedFilter struct {
	OwnerUserID *uuid.UUID
}

// FeedRepository is the durable store for feeds, their images, likes and comment counts.
// Lookups of absent rows return the domain sentinels from feeds/errors.
type FeedRepository interface {
	// Create inserts a new feed together with its images, in order
	Create(ctx context.Context, feed *models.Feed) error

	// FindByID retrieves a feed with its images
	FindByID(ctx context.Context, id uuid.UUID) (*models.Feed, error)

	// Find retrieves feeds matching the filter, newest first
	Find(ctx context.Context, filter FeedFilter) ([]*models.Feed, error)

	// UpdateDescription changes the description of a feed and returns the updated feed
	UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*models.Feed, error)

	// Delete removes a feed; images, likes and comments cascade
	Delete(ctx context.Context, id uuid.UUID) error

	// AppendImages adds images after the existing ones
	AppendImages(ctx context.Context, feedID uuid.UUID, urls []string) ([]models.FeedImage, error)

	// UpdateImage replaces the reference of one image of a feed
	UpdateImage(ctx context.Context, feedID, imageID uuid.UUID, url string) (*models.FeedImage, error)

	// DeleteImageIfNotLast deletes an image unless it is the only one left.
	// The count and the delete happen under a row lock on the feed.
	DeleteImageIfNotLast(ctx context.Context, feedID, imageID uuid.UUID) error

	// CreateLike records a like; created is false when the pair already existed
	CreateLike(ctx context.Context, like *models.Like) (created bool, err error)

	// DeleteLike removes a like; deleted is false when there was none
	DeleteLike(ctx context.Context, feedID, userID uuid.UUID) (deleted bool, err error)

	// LikeExists reports whether the user liked the feed
	LikeExists(ctx context.Context, feedID, userID uuid.UUID) (bool, error)

	// CountLikes returns the number of likes of a feed
	CountLikes(ctx context.Context, feedID uuid.UUID) (int64, error)

	// CountComments returns the number of comments of a feed
	CountComments(ctx context.Context, feedID uuid.UUID) (int64, error)

	// Ping checks the database connection
	Ping(ctx context.Context) error
}
