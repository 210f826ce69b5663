package models

import (
	"fmt"
	"strings"
	"time"

	uuid "github.com/gofrs/uuid"
)

// Feed is a user-authored feed post with its ordered images
type Feed struct {
	ObjectId    uuid.UUID   `json:"objectId" db:"id"`
	OwnerUserId uuid.UUID   `json:"ownerUserId" db:"owner_user_id"`
	Description string      `json:"description" db:"description"`
	Images      []FeedImage `json:"images" db:"-"`

	// Timestamps - both Unix timestamps and TIMESTAMPTZ for compatibility
	CreatedDate int64     `json:"createdDate" db:"created_date"`
	LastUpdated int64     `json:"lastUpdated" db:"last_updated"`
	CreatedAt   time.Time `json:"createdAt,omitempty" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

// FeedImage is one image reference attached to a feed
type FeedImage struct {
	ObjectId  uuid.UUID `json:"objectId" db:"id"`
	FeedId    uuid.UUID `json:"feedId" db:"feed_id"`
	URL       string    `json:"url" db:"url"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"createdAt,omitempty" db:"created_at"`
}

// Like records that a user liked a feed
type Like struct {
	FeedId    uuid.UUID `json:"feedId" db:"feed_id"`
	UserId    uuid.UUID `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt,omitempty" db:"created_at"`
}

// CounterKind names a cached derived counter of a feed
type CounterKind string

const (
	CounterLikes    CounterKind = "likeCount"
	CounterComments CounterKind = "commentCount"
)

// CacheKey returns the cache key holding this counter for feedID
func (k CounterKind) CacheKey(feedID uuid.UUID) string {
	return fmt.Sprintf("feed:%s:%s", feedID, k)
}

// CounterKeys returns the keys of every counter cached for feedID
func CounterKeys(feedID uuid.UUID) []string {
	return []string{CounterLikes.CacheKey(feedID), CounterComments.CacheKey(feedID)}
}

// ParseFeedID normalizes and parses a feed identifier.
// Surrounding whitespace and letter case are ignored.
func ParseFeedID(raw string) (uuid.UUID, error) {
	return uuid.FromString(strings.ToLower(strings.TrimSpace(raw)))
}

// CreateFeedRequest is the payload for creating a feed
type CreateFeedRequest struct {
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// UpdateFeedRequest is the payload for changing a feed description
type UpdateFeedRequest struct {
	Description string `json:"description"`
}

// AddFeedImagesRequest is the payload for appending images to a feed
type AddFeedImagesRequest struct {
	Images []string `json:"images"`
}

// UpdateFeedImageRequest is the payload for replacing an image reference
type UpdateFeedImageRequest struct {
	URL string `json:"url"`
}

// FeedQueryFilter narrows a feed listing; decoded from the query string
type FeedQueryFilter struct {
	OwnerUserId *uuid.UUID `json:"ownerUserId,omitempty" schema:"owner"`
}

// FeedResponse is the API representation of a feed
type FeedResponse struct {
	ObjectId    string              `json:"objectId"`
	OwnerUserId string              `json:"ownerUserId"`
	Description string              `json:"description"`
	Images      []FeedImageResponse `json:"images"`
	CreatedDate int64               `json:"createdDate"`
	LastUpdated int64               `json:"lastUpdated"`
}

// FeedImageResponse is the API representation of a feed image
type FeedImageResponse struct {
	ObjectId string `json:"objectId"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// CreateFeedResponse is returned after a feed is created
type CreateFeedResponse struct {
	ObjectId string `json:"objectId"`
}

// CountResponse carries a derived counter value
type CountResponse struct {
	FeedId string `json:"feedId"`
	Count  int64  `json:"count"`
}

// LikeStatusResponse reports whether the current user liked a feed
type LikeStatusResponse struct {
	FeedId string `json:"feedId"`
	Liked  bool   `json:"liked"`
}

// NewFeedImageResponse converts a FeedImage for the API
func NewFeedImageResponse(img FeedImage) FeedImageResponse {
	return FeedImageResponse{
		ObjectId: img.ObjectId.String(),
		URL:      img.URL,
		Position: img.Position,
	}
}

// NewFeedResponse converts a Feed for the API
func NewFeedResponse(feed *Feed) FeedResponse {
	images := make([]FeedImageResponse, 0, len(feed.Images))
	for _, img := range feed.Images {
		images = append(images, NewFeedImageResponse(img))
	}
	return FeedResponse{
		ObjectId:    feed.ObjectId.String(),
		OwnerUserId: feed.OwnerUserId.String(),
		Description: feed.Description,
		Images:      images,
		CreatedDate: feed.CreatedDate,
		LastUpdated: feed.LastUpdated,
	}
}
