// File: /routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"bioloop-api/config"
	"bioloop-api/controllers"
	"bioloop-api/logger"
	"bioloop-api/middleware"
	"bioloop-api/services"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, log *logger.Logger, postService *services.PostService) {
	postController := controllers.NewPostController(log, postService, cfg.MaxUploadBytes)
	commentController := controllers.NewCommentController(log, postService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Stored assets are public reads
	r.Static("/uploads", cfg.UploadDir)

	// API version 1
	v1 := r.Group("/api/v1")

	// Public reads
	posts := v1.Group("/posts")
	{
		posts.GET("", postController.GetPosts)
		posts.GET("/:id", postController.GetPost)
		posts.GET("/:id/comments", commentController.GetComments)
	}

	// Mutations require a verified identity claim
	protected := v1.Group("/posts")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protected.Use(middleware.RateLimit(60, 10))
	{
		protected.POST("", postController.CreatePost)
		protected.PUT("/:id", postController.UpdatePost)
		protected.DELETE("/:id", postController.DeletePost)
		protected.POST("/:id/like", postController.LikePost)
		protected.POST("/:id/comments", commentController.CreateComment)
	}
}
