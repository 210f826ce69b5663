package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/schema"

	"github.com/qolzam/telar/apps/feeds/feeds/errors"
	"github.com/qolzam/telar/apps/feeds/feeds/models"
	"github.com/qolzam/telar/apps/feeds/feeds/services"
	"github.com/qolzam/telar/apps/feeds/internal/types"
)

// FeedHandler handles all feed-related HTTP requests
type FeedHandler struct {
	feedService services.FeedService
	decoder     *schema.Decoder
}

// NewFeedHandler creates a new FeedHandler with injected dependencies
func NewFeedHandler(feedService services.FeedService) *FeedHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &FeedHandler{
		feedService: feedService,
		decoder:     decoder,
	}
}

func currentUser(c *fiber.Ctx) (types.UserContext, bool) {
	user, ok := c.Locals(types.UserCtxName).(types.UserContext)
	return user, ok
}

// normalizedFeedID returns the feedId param in canonical lower-case form
func normalizedFeedID(c *fiber.Ctx) string {
	raw := c.Params("feedId")
	if id, err := models.ParseFeedID(raw); err == nil {
		return id.String()
	}
	return raw
}

// CreateFeed handles feed creation
func (h *FeedHandler) CreateFeed(c *fiber.Ctx) error {
	var req models.CreateFeedRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleValidationError(c, "Invalid request body", err.Error())
	}

	if err := req.Validate(); err != nil {
		return errors.HandleValidationError(c, err.Error())
	}

	user, ok := currentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	feedID, err := h.feedService.CreateFeed(c.UserContext(), user.UserID, &req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(models.CreateFeedResponse{
		ObjectId: feedID.String(),
	})
}

// QueryFeeds lists feeds, optionally filtered by ?owner=<userId>
func (h *FeedHandler) QueryFeeds(c *fiber.Ctx) error {
	values := url.Values{}
	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})

	var filter models.FeedQueryFilter
	if err := h.decoder.Decode(&filter, values); err != nil {
		return errors.HandleValidationError(c, "Invalid query parameters", err.Error())
	}

	var (
		feeds []*models.Feed
		err   error
	)
	if filter.OwnerUserId == nil {
		feeds, err = h.feedService.GetAllFeeds(c.UserContext())
	} else {
		feeds, err = h.feedService.QueryFeeds(c.UserContext(), &filter)
	}
	if err != nil {
		return errors.HandleServiceError(c, err)
	}

	response := make([]models.FeedResponse, 0, len(feeds))
	for _, feed := range feeds {
		response = append(response, models.NewFeedResponse(feed))
	}
	return c.JSON(response)
}

// GetFeed handles retrieving a single feed
func (h *FeedHandler) GetFeed(c *fiber.Ctx) error {
	feed, err := h.feedService.GetFeed(c.UserContext(), c.Params("feedId"))
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(models.NewFeedResponse(feed))
}

// UpdateFeed handles changing a feed description
func (h *FeedHandler) UpdateFeed(c *fiber.Ctx) error {
	var req models.UpdateFeedRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleValidationError(c, "Invalid request body", err.Error())
	}

	if err := req.Validate(); err != nil {
		return errors.HandleValidationError(c, err.Error())
	}

	user, ok := currentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	feed, err := h.feedService.UpdateFeed(c.UserContext(), c.Params("feedId"), user.UserID, req.Description)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(models.NewFeedResponse(feed))
}

// DeleteFeed handles feed deletion
func (h *FeedHandler) DeleteFeed(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	if err := h.feedService.DeleteFeed(c.UserContext(), c.Params("feedId"), user.UserID); err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddFeedImages handles appending images to a feed
func (h *FeedHandler) AddFeedImages(c *fiber.Ctx) error {
	var req models.AddFeedImagesRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleValidationError(c, "Invalid request body", err.Error())
	}

	if err := req.Validate(); err != nil {
		return errors.HandleValidationError(c, err.Error())
	}

	user, ok := currentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	images, err := h.feedService.AddFeedImages(c.UserContext(), user.UserID, c.Params("feedId"), req.Images)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}

	response := make([]models.FeedImageResponse, 0, len(images))
	for _, img := range images {
		response = append(response, models.NewFeedImageResponse(img))
	}
	return c.Status(http.StatusCreated).JSON(response)
}

// UpdateFeedImage handles replacing one image reference
func (h *FeedHandler) UpdateFeedImage(c *fiber.Ctx) error {
	var req models.UpdateFeedImageRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleValidationError(c, "Invalid request body", err.Error())
	}

	if err := req.Validate(); err != nil {
		return errors.HandleValidationError(c, err.Error())
	}

	user, ok := currentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	img, err := h.feedService.UpdateFeedImage(c.UserContext(), user.UserID, c.Params("feedId"), c.Params("imageId"), req.URL)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(models.NewFeedImageResponse(*img))
}

// DeleteFeedImage handles deleting one image
func (h *FeedHandler) DeleteFeedImage(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	if err := h.feedService.DeleteFeedImage(c.UserContext(), user.UserID, c.Params("feedId"), c.Params("imageId")); err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// LikeFeed handles liking a feed as the current user
func (h *FeedHandler) LikeFeed(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	if err := h.feedService.LikeFeed(c.UserContext(), user.UserID, c.Params("feedId")); err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(models.LikeStatusResponse{
		FeedId: normalizedFeedID(c),
		Liked:  true,
	})
}

// UnlikeFeed handles removing the current user's like
func (h *FeedHandler) UnlikeFeed(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	if err := h.feedService.UnlikeFeed(c.UserContext(), user.UserID, c.Params("feedId")); err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// GetLikeStatus reports whether the current user liked the feed
func (h *FeedHandler) GetLikeStatus(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	liked, err := h.feedService.CheckLikeStatus(c.UserContext(), user.UserID, c.Params("feedId"))
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(models.LikeStatusResponse{FeedId: normalizedFeedID(c), Liked: liked})
}

// GetLikeCount returns the number of likes of a feed
func (h *FeedHandler) GetLikeCount(c *fiber.Ctx) error {
	count, err := h.feedService.GetLikeCount(c.UserContext(), c.Params("feedId"))
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(models.CountResponse{FeedId: normalizedFeedID(c), Count: count})
}

// GetCommentCount returns the number of comments of a feed
func (h *FeedHandler) GetCommentCount(c *fiber.Ctx) error {
	count, err := h.feedService.GetCommentCount(c.UserContext(), c.Params("feedId"))
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(models.CountResponse{FeedId: normalizedFeedID(c), Count: count})
}

// Health pings the store and the cache
func (h *FeedHandler) Health(c *fiber.Ctx) error {
	if err := h.feedService.Ping(c.UserContext()); err != nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	response := fiber.Map{"status": "ok"}
	if stats := h.feedService.CacheStats(c.UserContext()); stats != nil {
		response["cache"] = stats
	}
	return c.JSON(response)
}
