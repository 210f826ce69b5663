// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	feedErrors "github.com/qolzam/telar/apps/feeds/feeds/errors"
	"github.com/qolzam/telar/apps/feeds/feeds/models"
	"github.com/qolzam/telar/apps/feeds/internal/database/postgres"
)

const feedColumns = "id, owner_user_id, description, created_at, updated_at, created_date, last_updated"

const imageColumns = "id, feed_id, url, position, created_at"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type txKey struct{}

// postgresRepository implements FeedRepository on PostgreSQL
type postgresRepository struct {
	client *postgres.Client
}

// NewPostgresRepository creates a new PostgreSQL repository for feeds
func NewPostgresRepository(client *postgres.Client) FeedRepository {
	return &postgresRepository{client: client}
}

// getExecutor returns either the transaction from context or the DB connection
func (r *postgresRepository) getExecutor(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return r.client.DB()
}

// Create inserts a new feed and its images in one transaction
func (r *postgresRepository) Create(ctx context.Context, feed *models.Feed) error {
	return r.withTransaction(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO feeds (
				id, owner_user_id, description, created_at, updated_at, created_date, last_updated
			) VALUES (
				:id, :owner_user_id, :description, :created_at, :updated_at, :created_date, :last_updated
			)
		`
		if _, err := sqlx.NamedExecContext(ctx, r.getExecutor(ctx), query, feed); err != nil {
			return fmt.Errorf("failed to create feed: %w", err)
		}

		for i := range feed.Images {
			if err := r.insertImage(ctx, &feed.Images[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *postgresRepository) insertImage(ctx context.Context, img *models.FeedImage) error {
	query := `
		INSERT INTO feed_images (id, feed_id, url, position, created_at)
		VALUES (:id, :feed_id, :url, :position, :created_at)
	`
	if _, err := sqlx.NamedExecContext(ctx, r.getExecutor(ctx), query, img); err != nil {
		return fmt.Errorf("failed to insert feed image: %w", err)
	}
	return nil
}

// FindByID retrieves a feed by its ID
func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Feed, error) {
	query := `SELECT ` + feedColumns + ` FROM feeds WHERE id = $1`

	var feed models.Feed
	if err := sqlx.GetContext(ctx, r.getExecutor(ctx), &feed, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, feedErrors.ErrFeedNotFound
		}
		return nil, fmt.Errorf("failed to find feed: %w", err)
	}

	if err := r.attachImages(ctx, []*models.Feed{&feed}); err != nil {
		return nil, err
	}
	return &feed, nil
}

// Find retrieves feeds matching the filter criteria
func (r *postgresRepository) Find(ctx context.Context, filter FeedFilter) ([]*models.Feed, error) {
	builder := psql.Select(feedColumns).From("feeds").OrderBy("created_at DESC", "id")
	if filter.OwnerUserID != nil {
		builder = builder.Where(sq.Eq{"owner_user_id": *filter.OwnerUserID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find query: %w", err)
	}

	feeds := []*models.Feed{}
	if err := sqlx.SelectContext(ctx, r.getExecutor(ctx), &feeds, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find feeds: %w", err)
	}

	if err := r.attachImages(ctx, feeds); err != nil {
		return nil, err
	}
	return feeds, nil
}

// attachImages loads the images of all given feeds with one query
func (r *postgresRepository) attachImages(ctx context.Context, feeds []*models.Feed) error {
	if len(feeds) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(feeds))
	byID := make(map[uuid.UUID]*models.Feed, len(feeds))
	for _, f := range feeds {
		f.Images = []models.FeedImage{}
		ids = append(ids, f.ObjectId)
		byID[f.ObjectId] = f
	}

	query, args, err := psql.Select(imageColumns).
		From("feed_images").
		Where(sq.Eq{"feed_id": ids}).
		OrderBy("feed_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build image query: %w", err)
	}

	var images []models.FeedImage
	if err := sqlx.SelectContext(ctx, r.getExecutor(ctx), &images, query, args...); err != nil {
		return fmt.Errorf("failed to load feed images: %w", err)
	}

	for _, img := range images {
		if f, ok := byID[img.FeedId]; ok {
			f.Images = append(f.Images, img)
		}
	}
	return nil
}

// UpdateDescription changes the description of a feed
func (r *postgresRepository) UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*models.Feed, error) {
	now := time.Now()
	query, args, err := psql.Update("feeds").
		Set("description", description).
		Set("updated_at", now).
		Set("last_updated", now.Unix()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update feed: %w", err)
	}
	if err := requireAffected(result, feedErrors.ErrFeedNotFound); err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id)
}

// Delete deletes a feed by ID
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.getExecutor(ctx).ExecContext(ctx, `DELETE FROM feeds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feed: %w", err)
	}
	return requireAffected(result, feedErrors.ErrFeedNotFound)
}

// AppendImages adds images after the last existing position
func (r *postgresRepository) AppendImages(ctx context.Context, feedID uuid.UUID, urls []string) ([]models.FeedImage, error) {
	var images []models.FeedImage
	err := r.withTransaction(ctx, func(ctx context.Context) error {
		if err := r.lockFeed(ctx, feedID); err != nil {
			return err
		}

		var next int
		query := `SELECT COALESCE(MAX(position) + 1, 0) FROM feed_images WHERE feed_id = $1`
		if err := sqlx.GetContext(ctx, r.getExecutor(ctx), &next, query, feedID); err != nil {
			return fmt.Errorf("failed to read image position: %w", err)
		}

		now := time.Now()
		images = make([]models.FeedImage, 0, len(urls))
		for i, url := range urls {
			img := models.FeedImage{
				ObjectId:  uuid.Must(uuid.NewV4()),
				FeedId:    feedID,
				URL:       url,
				Position:  next + i,
				CreatedAt: now,
			}
			if err := r.insertImage(ctx, &img); err != nil {
				return err
			}
			images = append(images, img)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// findImage retrieves one image of a feed
func (r *postgresRepository) findImage(ctx context.Context, feedID, imageID uuid.UUID) (*models.FeedImage, error) {
	query := `SELECT ` + imageColumns + ` FROM feed_images WHERE id = $1 AND feed_id = $2`

	var img models.FeedImage
	if err := sqlx.GetContext(ctx, r.getExecutor(ctx), &img, query, imageID, feedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, feedErrors.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to find feed image: %w", err)
	}
	return &img, nil
}

// UpdateImage replaces the url of one image
func (r *postgresRepository) UpdateImage(ctx context.Context, feedID, imageID uuid.UUID, url string) (*models.FeedImage, error) {
	query := `UPDATE feed_images SET url = $1 WHERE id = $2 AND feed_id = $3 RETURNING ` + imageColumns

	var img models.FeedImage
	if err := sqlx.GetContext(ctx, r.getExecutor(ctx), &img, query, url, imageID, feedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, feedErrors.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to update feed image: %w", err)
	}
	return &img, nil
}

// DeleteImageIfNotLast deletes an image while keeping at least one image on the feed
func (r *postgresRepository) DeleteImageIfNotLast(ctx context.Context, feedID, imageID uuid.UUID) error {
	return r.withTransaction(ctx, func(ctx context.Context) error {
		if err := r.lockFeed(ctx, feedID); err != nil {
			return err
		}

		if _, err := r.findImage(ctx, feedID, imageID); err != nil {
			return err
		}

		count, err := r.countImages(ctx, feedID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return feedErrors.ErrLastImage
		}

		result, err := r.getExecutor(ctx).ExecContext(ctx,
			`DELETE FROM feed_images WHERE id = $1 AND feed_id = $2`, imageID, feedID)
		if err != nil {
			return fmt.Errorf("failed to delete feed image: %w", err)
		}
		return requireAffected(result, feedErrors.ErrImageNotFound)
	})
}

// lockFeed takes a row lock on the feed for the rest of the transaction
func (r *postgresRepository) lockFeed(ctx context.Context, feedID uuid.UUID) error {
	var id uuid.UUID
	err := sqlx.GetContext(ctx, r.getExecutor(ctx), &id, `SELECT id FROM feeds WHERE id = $1 FOR UPDATE`, feedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return feedErrors.ErrFeedNotFound
		}
		return fmt.Errorf("failed to lock feed: %w", err)
	}
	return nil
}

func (r *postgresRepository) countImages(ctx context.Context, feedID uuid.UUID) (int64, error) {
	return r.count(ctx, "feed_images", feedID)
}

// CreateLike inserts the like unless the pair already exists
func (r *postgresRepository) CreateLike(ctx context.Context, like *models.Like) (bool, error) {
	query := `
		INSERT INTO feed_likes (feed_id, user_id, created_at)
		VALUES (:feed_id, :user_id, :created_at)
		ON CONFLICT (feed_id, user_id) DO NOTHING
	`
	result, err := sqlx.NamedExecContext(ctx, r.getExecutor(ctx), query, like)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, feedErrors.ErrFeedNotFound
		}
		return false, fmt.Errorf("failed to create like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// DeleteLike removes the like if present
func (r *postgresRepository) DeleteLike(ctx context.Context, feedID, userID uuid.UUID) (bool, error) {
	result, err := r.getExecutor(ctx).ExecContext(ctx,
		`DELETE FROM feed_likes WHERE feed_id = $1 AND user_id = $2`, feedID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// LikeExists reports whether the user liked the feed
func (r *postgresRepository) LikeExists(ctx context.Context, feedID, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM feed_likes WHERE feed_id = $1 AND user_id = $2)`
	if err := sqlx.GetContext(ctx, r.getExecutor(ctx), &exists, query, feedID, userID); err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return exists, nil
}

// CountLikes returns the number of likes of a feed
func (r *postgresRepository) CountLikes(ctx context.Context, feedID uuid.UUID) (int64, error) {
	return r.count(ctx, "feed_likes", feedID)
}

// CountComments returns the number of comments of a feed
func (r *postgresRepository) CountComments(ctx context.Context, feedID uuid.UUID) (int64, error) {
	return r.count(ctx, "feed_comments", feedID)
}

func (r *postgresRepository) count(ctx context.Context, table string, feedID uuid.UUID) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").From(table).Where(sq.Eq{"feed_id": feedID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int64
	if err := sqlx.GetContext(ctx, r.getExecutor(ctx), &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// withTransaction executes fn within a database transaction.
// Calls nested inside an open transaction reuse it.
func (r *postgresRepository) withTransaction(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.client.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

// isForeignKeyViolation reports whether the referenced feed vanished mid-request
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

func requireAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
