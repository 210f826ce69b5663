package main

import (
	"context"
	"errors"
	"os"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/oklog/run"
	"github.com/sethvargo/go-retry"

	"github.com/qolzam/telar/apps/feeds/feeds"
	"github.com/qolzam/telar/apps/feeds/feeds/handlers"
	"github.com/qolzam/telar/apps/feeds/feeds/repository"
	"github.com/qolzam/telar/apps/feeds/feeds/services"
	"github.com/qolzam/telar/apps/feeds/internal/cache"
	"github.com/qolzam/telar/apps/feeds/internal/database/postgres"
	"github.com/qolzam/telar/apps/feeds/internal/middleware/requestid"
	"github.com/qolzam/telar/apps/feeds/internal/pkg/log"
	platformconfig "github.com/qolzam/telar/apps/feeds/internal/platform/config"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := serve(); err != nil {
		log.Error("feeds server stopped: %v", err)
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := platformconfig.LoadFromEnv()
	if err != nil {
		return err
	}
	if cfg.Server.Debug {
		log.Debug(cfg.Server, cfg.Cache, cfg.Feeds)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pgClient, err := connectPostgres(ctx, &cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(pgClient.DB(), repository.Migrations, repository.MigrationsDir); err != nil {
			return err
		}
	}

	counterCache := newCounterCache(cfg)
	if counterCache != nil {
		defer counterCache.Close()
	}

	feedService := services.NewFeedService(repository.NewPostgresRepository(pgClient), counterCache, cfg.Feeds)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			log.ErrorWithContext(c.UserContext(), "[ErrorHandler] Path: %s, Error: %v, Code: %d", c.Path(), err, code)

			// If response already set by handler, don't override it
			if len(c.Response().Body()) > 0 {
				return nil
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.WebDomain,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
	}))

	feeds.RegisterRoutes(app, &feeds.FeedsHandlers{
		FeedHandler: handlers.NewFeedHandler(feedService),
	}, cfg)

	var g run.Group
	g.Add(func() error {
		log.Info("Starting Telar Feeds Server on %s", cfg.Server.Addr())
		return app.Listen(cfg.Server.Addr())
	}, func(error) {
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("server shutdown: %v", err)
		}
	})
	g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		log.Info("received %v, shut down", sigErr.Signal)
		return nil
	}
	return err
}

// connectPostgres retries until the database accepts connections or ctx expires
func connectPostgres(ctx context.Context, cfg *platformconfig.PostgreSQLConfig) (*postgres.Client, error) {
	var client *postgres.Client
	err := retry.Fibonacci(ctx, 500*time.Millisecond, func(ctx context.Context) error {
		c, err := postgres.NewClient(ctx, cfg)
		if err != nil {
			log.Warn("waiting for PostgreSQL: %v", err)
			return retry.RetryableError(err)
		}
		client = c
		return nil
	})
	return client, err
}

// newCounterCache builds the configured cache; an unreachable Redis degrades to the memory backend
func newCounterCache(cfg *platformconfig.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		log.Warn("counter cache disabled, every count hits PostgreSQL")
		return nil
	}

	c, err := cache.NewCacheFromPlatformConfig(cfg.Cache)
	if err == nil {
		log.Info("counter cache backend: %s", cfg.Cache.Backend)
		return c
	}

	log.Warn("counter cache backend %s unavailable (%v), falling back to memory", cfg.Cache.Backend, err)
	fallback := cfg.Cache
	fallback.Backend = string(cache.CacheTypeMemory)
	c, err = cache.NewCacheFromPlatformConfig(fallback)
	if err != nil {
		log.Error("memory cache: %v", err)
		return nil
	}
	return c
}
