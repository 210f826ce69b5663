package feeds

import (
	"github.com/gofiber/fiber/v2"

	"github.com/qolzam/telar/apps/feeds/feeds/errors"
	"github.com/qolzam/telar/apps/feeds/feeds/handlers"
	"github.com/qolzam/telar/apps/feeds/internal/middleware/authjwt"
	"github.com/qolzam/telar/apps/feeds/internal/middleware/constraints"
	platformconfig "github.com/qolzam/telar/apps/feeds/internal/platform/config"
)

// FeedsHandlers holds all the handlers this router needs.
type FeedsHandlers struct {
	FeedHandler *handlers.FeedHandler
}

func feedNotFound(c *fiber.Ctx) error {
	return errors.HandleServiceError(c, errors.ErrFeedNotFound)
}

func imageNotFound(c *fiber.Ctx) error {
	return errors.HandleServiceError(c, errors.ErrImageNotFound)
}

// RegisterRoutes is the single entry point for setting up feeds routes.
// Every feed route requires a valid JWT; /healthz is public.
func RegisterRoutes(app *fiber.App, handlers *FeedsHandlers, cfg *platformconfig.Config) {
	h := handlers.FeedHandler

	app.Get("/healthz", h.Health)

	jwtMiddleware := authjwt.New(authjwt.Config{
		PublicKey: cfg.JWT.PublicKey,
	})

	group := app.Group("/feeds", jwtMiddleware)

	// Collection routes
	group.Post("/", h.CreateFeed)
	group.Get("/", h.QueryFeeds)

	// Resource routes
	feed := group.Group("/:feedId", constraints.RequireUUID("feedId", feedNotFound))
	feed.Get("/", h.GetFeed)
	feed.Put("/", h.UpdateFeed)
	feed.Delete("/", h.DeleteFeed)

	// Image sub-resource
	feed.Post("/images", h.AddFeedImages)
	feed.Put("/images/:imageId", constraints.RequireUUID("imageId", imageNotFound), h.UpdateFeedImage)
	feed.Delete("/images/:imageId", constraints.RequireUUID("imageId", imageNotFound), h.DeleteFeedImage)

	// Likes and counters
	feed.Post("/likes", h.LikeFeed)
	feed.Delete("/likes", h.UnlikeFeed)
	feed.Get("/likes/me", h.GetLikeStatus)
	feed.Get("/likes/count", h.GetLikeCount)
	feed.Get("/comments/count", h.GetCommentCount)
}
