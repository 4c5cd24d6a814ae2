// File: /services/post_service.go
package services

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"

	"bioloop-api/logger"
	"bioloop-api/models"
	"bioloop-api/repositories"
	"bioloop-api/utils"
)

// PostService implements the post store and the engagement operations on top
// of it. Media side effects follow a fixed order: write-new-asset, commit
// record, retire-old-asset — only the retire step may fail silently.
type PostService struct {
	log   *logger.Logger
	posts *repositories.PostRepository
	media *MediaService
}

func NewPostService(log *logger.Logger, posts *repositories.PostRepository, media *MediaService) *PostService {
	return &PostService{
		log:   log.With("service", "PostService"),
		posts: posts,
		media: media,
	}
}

// CreatePostInput carries the fields accepted at post creation.
type CreatePostInput struct {
	AuthorID   string
	Content    string
	RawTags    string
	Image      *multipart.FileHeader
	Variant    string
	Experiment *models.ExperimentDetails
}

// UpdatePostInput carries a partial update; nil fields are left untouched.
type UpdatePostInput struct {
	Content    *string
	RawTags    *string
	Image      *multipart.FileHeader
	Variant    *string
	Experiment *models.ExperimentDetails
}

// LikeResult is the outcome of a toggle: post-toggle count and resulting state.
type LikeResult struct {
	LikesCount int64 `json:"likesCount"`
	Liked      bool  `json:"liked"`
}

// Create validates and persists a new post, ingesting its image first so the
// committed record only ever references a fully-written asset.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, NewValidationError(ValidationEmptyContent, "content is required")
	}

	variant, experiment, err := resolveVariant(in.Variant, in.Experiment)
	if err != nil {
		return nil, err
	}

	var asset *models.ImageAsset
	if in.Image != nil {
		asset, err = s.media.Ingest(in.Image)
		if err != nil {
			return nil, err
		}
	}

	post := models.Post{
		ID:         uuid.New().String(),
		AuthorID:   in.AuthorID,
		Content:    content,
		Tags:       models.StringSlice(utils.NormalizeTags(in.RawTags)),
		Variant:    variant,
		Experiment: experiment,
	}
	applyAsset(&post, asset)

	if err := s.posts.Create(ctx, &post); err != nil {
		// The record never existed, so the freshly-written asset is an orphan.
		if asset != nil {
			s.media.Retire(asset.URL)
		}
		return nil, &StorageError{Op: "create post", Cause: err}
	}

	return s.mustReload(ctx, post.ID)
}

// Get loads a post and bumps its view counter. The increment is fire and
// forget: a failure is logged and never fails the read.
func (s *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	if err := s.posts.IncrementViews(ctx, postID); err != nil {
		s.log.Warn("view increment failed (ignored)", "post_id", postID, "error", err)
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, &NotFoundError{Resource: "post", ID: postID}
		}
		return nil, &StorageError{Op: "get post", Cause: err}
	}
	return post, nil
}

// List returns posts newest-first, optionally filtered by author.
func (s *PostService) List(ctx context.Context, authorID string) ([]models.Post, error) {
	posts, err := s.posts.List(ctx, authorID)
	if err != nil {
		return nil, &StorageError{Op: "list posts", Cause: err}
	}
	return posts, nil
}

// Update applies a partial edit. Only the owner may mutate; an included image
// runs the replacement protocol: the new asset is written before the record
// commit, and the old asset is retired only after the commit succeeds.
func (s *PostService) Update(ctx context.Context, postID, requesterID string, in UpdatePostInput) (*models.Post, error) {
	post, err := s.loadOwned(ctx, postID, requesterID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, NewValidationError(ValidationEmptyContent, "content cannot be empty")
		}
		updates["content"] = content
	}

	if in.RawTags != nil {
		updates["tags"] = models.StringSlice(utils.NormalizeTags(*in.RawTags))
	}

	if in.Variant != nil || in.Experiment != nil {
		variant := post.Variant
		if in.Variant != nil {
			variant = *in.Variant
		}
		resolved, experiment, err := resolveVariant(variant, in.Experiment)
		if err != nil {
			return nil, err
		}
		updates["variant"] = resolved
		// Write the details when they were supplied, when the variant drops
		// back to plain (clearing them), or when a post switches to
		// experiment with nothing stored yet (the resolved defaults apply).
		// Existing details are preserved otherwise.
		if in.Experiment != nil || resolved == models.VariantPlain || post.Experiment == nil {
			updates["experiment"] = experiment
		}
	}

	var newAsset *models.ImageAsset
	var oldURL string
	if in.Image != nil {
		newAsset, err = s.media.Ingest(in.Image)
		if err != nil {
			return nil, err
		}
		if post.ImageURL != nil {
			oldURL = *post.ImageURL
		}
		updates["image_url"] = newAsset.URL
		updates["image_width"] = newAsset.Width
		updates["image_height"] = newAsset.Height
		updates["image_size"] = newAsset.Size
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := s.posts.UpdateFields(ctx, postID, updates); err != nil {
			// Commit failed: the record still references the old asset, so the
			// new file is the orphan to clean up.
			if newAsset != nil {
				s.media.Retire(newAsset.URL)
			}
			return nil, &StorageError{Op: "update post", Cause: err}
		}
	}

	// Record committed; the previous asset is unreachable now.
	if newAsset != nil && oldURL != "" && oldURL != newAsset.URL {
		s.media.Retire(oldURL)
	}

	return s.mustReload(ctx, postID)
}

// Delete removes a post and then retires its asset. The record goes first:
// a crash in between leaves a harmless orphaned file, not a dangling
// reference.
func (s *PostService) Delete(ctx context.Context, postID, requesterID string) error {
	post, err := s.loadOwned(ctx, postID, requesterID)
	if err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return &StorageError{Op: "delete post", Cause: err}
	}

	if post.ImageURL != nil {
		s.media.Retire(*post.ImageURL)
	}

	return nil
}

// ToggleLike flips requester membership in the post's like set. There is no
// separate like/unlike entry point; repeating the call alternates state.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (*LikeResult, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, &NotFoundError{Resource: "post", ID: postID}
		}
		return nil, &StorageError{Op: "get post", Cause: err}
	}

	count, liked, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, &StorageError{Op: "toggle like", Cause: err}
	}

	return &LikeResult{LikesCount: count, Liked: liked}, nil
}

// AddComment appends a comment with a server-assigned timestamp and returns
// the post's full comment list.
func (s *PostService) AddComment(ctx context.Context, postID, authorID, text string) ([]models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError(ValidationEmptyComment, "comment text is required")
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, &NotFoundError{Resource: "post", ID: postID}
		}
		return nil, &StorageError{Op: "get post", Cause: err}
	}

	comment := models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	if err := s.posts.AddComment(ctx, &comment); err != nil {
		return nil, &StorageError{Op: "add comment", Cause: err}
	}

	return s.Comments(ctx, postID)
}

// Comments returns a post's comments in insertion order.
func (s *PostService) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, &NotFoundError{Resource: "post", ID: postID}
		}
		return nil, &StorageError{Op: "get post", Cause: err}
	}

	comments, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		return nil, &StorageError{Op: "list comments", Cause: err}
	}
	return comments, nil
}

func (s *PostService) loadOwned(ctx context.Context, postID, requesterID string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, &NotFoundError{Resource: "post", ID: postID}
		}
		return nil, &StorageError{Op: "get post", Cause: err}
	}
	if post.AuthorID != requesterID {
		return nil, &AuthorizationError{PostID: postID, RequesterID: requesterID}
	}
	return post, nil
}

func (s *PostService) mustReload(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, &StorageError{Op: "reload post", Cause: err}
	}
	return post, nil
}

func resolveVariant(variant string, experiment *models.ExperimentDetails) (string, *models.ExperimentDetails, error) {
	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = models.VariantPlain
	}

	switch variant {
	case models.VariantPlain:
		return models.VariantPlain, nil, nil
	case models.VariantExperiment:
		if experiment == nil {
			experiment = &models.ExperimentDetails{}
		}
		if experiment.Status == "" {
			experiment.Status = models.ExperimentPlanned
		}
		if !models.ValidExperimentStatus(experiment.Status) {
			return "", nil, NewValidationError(ValidationBadExperiment,
				"experiment status must be one of planned, active, completed, failed")
		}
		return models.VariantExperiment, experiment, nil
	default:
		return "", nil, NewValidationError(ValidationBadExperiment,
			"variant must be plain or experiment")
	}
}

func applyAsset(post *models.Post, asset *models.ImageAsset) {
	if asset == nil {
		return
	}
	url := asset.URL
	post.ImageURL = &url
	post.ImageWidth = asset.Width
	post.ImageHeight = asset.Height
	post.ImageSize = asset.Size
}
