// File: /repositories/post_repository.go
package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bioloop-api/models"
)

// PostRepository owns persistence of the post aggregate. The database row is
// the only point of serialization between requests; there is no in-process
// lock shared across handlers.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a new post row.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// GetByID loads the full aggregate: author, like set and comments.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments.Author").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// UpdateFields applies only the supplied column updates to a post.
func (r *PostRepository) UpdateFields(ctx context.Context, postID string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Updates(updates).Error
}

// Delete removes the aggregate: like rows and comments first, then the post.
func (r *PostRepository) Delete(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", postID).Error
	})
}

// List returns posts newest-first, optionally filtered by author.
func (r *PostRepository) List(ctx context.Context, authorID string) ([]models.Post, error) {
	q := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments.Author").
		Order("created_at DESC")

	if authorID != "" {
		q = q.Where("author_id = ?", authorID)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// IncrementViews bumps the view counter by exactly one. At-least-once:
// concurrent reads each add their own increment at the database.
func (r *PostRepository) IncrementViews(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// ToggleLike tests membership of userID in the post's like set and flips it,
// inside one transaction. Returns the post-toggle count and resulting state.
// The unique (post_id, user_id) index backstops the membership invariant.
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string) (int64, bool, error) {
	var count int64
	var liked bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PostLike
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error

		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			liked = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			like := models.PostLike{PostID: postID, UserID: userID}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			liked = true
		default:
			return err
		}

		return tx.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&count).Error
	})

	return count, liked, err
}

// AddComment appends a comment row. Comments are never updated or deleted here.
func (r *PostRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// ListComments returns a post's comments in insertion order.
func (r *PostRepository) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ReferencedAssetURLs lists every image URL currently referenced by a post.
// Used by the orphan sweep to decide which stored files are still live.
func (r *PostRepository) ReferencedAssetURLs(ctx context.Context) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("image_url IS NOT NULL AND image_url <> ''").
		Pluck("image_url", &urls).Error
	if err != nil {
		return nil, err
	}
	return urls, nil
}
