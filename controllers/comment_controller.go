package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bioloop-api/logger"
	"bioloop-api/models"
	"bioloop-api/services"
)

type CommentController struct {
	log   *logger.Logger
	posts *services.PostService
}

func NewCommentController(log *logger.Logger, posts *services.PostService) *CommentController {
	return &CommentController{
		log:   log.With("controller", "CommentController"),
		posts: posts,
	}
}

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (cc *CommentController) CreateComment(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comments, err := cc.posts.AddComment(c.Request.Context(), postID, userID, req.Text)
	if err != nil {
		if !services.IsValidation(err) && !services.IsNotFound(err) {
			cc.log.Error("failed to add comment", "post_id", postID, "error", err)
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comments": commentViews(comments)})
}

func (cc *CommentController) GetComments(c *gin.Context) {
	postID := c.Param("id")

	comments, err := cc.posts.Comments(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": commentViews(comments)})
}

func commentViews(comments []models.Comment) []models.CommentView {
	views := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, comments[i].View())
	}
	return views
}
