// File: /controllers/post_controller.go
package controllers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"bioloop-api/logger"
	"bioloop-api/models"
	"bioloop-api/services"
	"bioloop-api/utils"
)

type PostController struct {
	log      *logger.Logger
	posts    *services.PostService
	maxBytes int64
}

func NewPostController(log *logger.Logger, posts *services.PostService, maxBytes int64) *PostController {
	return &PostController{
		log:      log.With("controller", "PostController"),
		posts:    posts,
		maxBytes: maxBytes,
	}
}

func (pc *PostController) GetPosts(c *gin.Context) {
	author := c.Query("author")

	posts, err := pc.posts.List(c.Request.Context(), author)
	if err != nil {
		pc.log.Error("failed to list posts", "error", err)
		respondError(c, err)
		return
	}

	views := make([]models.PostView, 0, len(posts))
	for i := range posts {
		views = append(views, posts[i].View())
	}

	c.JSON(http.StatusOK, gin.H{"posts": views})
}

func (pc *PostController) GetPost(c *gin.Context) {
	postID := c.Param("id")

	post, err := pc.posts.Get(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post.View()})
}

func (pc *PostController) CreatePost(c *gin.Context) {
	userID := c.GetString("user_id")

	// Cap the whole request body ahead of multipart parsing; the media
	// pipeline re-checks the file size on its own.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, pc.maxBytes+1<<20)

	content := c.PostForm("content")
	rawTags := c.PostForm("tags")
	variant := c.PostForm("variant")

	experiment, err := parseExperiment(c.PostForm("experimentDetails"))
	if err != nil {
		utils.SendValidationError(c, "experimentDetails must be a JSON object")
		return
	}

	post, err := pc.posts.Create(c.Request.Context(), services.CreatePostInput{
		AuthorID:   userID,
		Content:    content,
		RawTags:    rawTags,
		Image:      formImage(c),
		Variant:    variant,
		Experiment: experiment,
	})
	if err != nil {
		if !services.IsValidation(err) {
			pc.log.Error("failed to create post", "error", err)
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post.View()})
}

func (pc *PostController) UpdatePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, pc.maxBytes+1<<20)

	var in services.UpdatePostInput

	if content, ok := c.GetPostForm("content"); ok {
		in.Content = &content
	}
	if rawTags, ok := c.GetPostForm("tags"); ok {
		in.RawTags = &rawTags
	}
	if variant, ok := c.GetPostForm("variant"); ok {
		in.Variant = &variant
	}
	if rawExperim, ok := c.GetPostForm("experimentDetails"); ok {
		experiment, err := parseExperiment(rawExperim)
		if err != nil {
			utils.SendValidationError(c, "experimentDetails must be a JSON object")
			return
		}
		in.Experiment = experiment
	}
	in.Image = formImage(c)

	post, err := pc.posts.Update(c.Request.Context(), postID, userID, in)
	if err != nil {
		if !services.IsValidation(err) && !services.IsAuthorization(err) && !services.IsNotFound(err) {
			pc.log.Error("failed to update post", "post_id", postID, "error", err)
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post.View()})
}

func (pc *PostController) DeletePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	if err := pc.posts.Delete(c.Request.Context(), postID, userID); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Post deleted successfully", nil)
}

func (pc *PostController) LikePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	result, err := pc.posts.ToggleLike(c.Request.Context(), postID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// formImage returns the uploaded image header, or nil when the request
// carries none.
func formImage(c *gin.Context) *multipart.FileHeader {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil
	}
	return fileHeader
}

func parseExperiment(raw string) (*models.ExperimentDetails, error) {
	if raw == "" {
		return nil, nil
	}
	var details models.ExperimentDetails
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		return nil, err
	}
	return &details, nil
}
