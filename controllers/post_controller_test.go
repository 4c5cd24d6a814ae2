// File: /controllers/post_controller_test.go
package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bioloop-api/logger"
	"bioloop-api/middleware"
	"bioloop-api/models"
	"bioloop-api/repositories"
	"bioloop-api/services"
)

const (
	testSecret = "test-secret"
	aliceID    = "user-alice"
	bobID      = "user-bob"
)

type testAPI struct {
	router *gin.Engine
	posts  *services.PostService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.PostLike{}, &models.Comment{}))
	require.NoError(t, db.Create(&models.User{ID: aliceID, Username: "alice", Email: "alice@example.com"}).Error)
	require.NoError(t, db.Create(&models.User{ID: bobID, Username: "bob", Email: "bob@example.com"}).Error)

	log := logger.NewNop()
	media, err := services.NewMediaService(log, t.TempDir(), 5*1024*1024, 1200, 80)
	require.NoError(t, err)
	postService := services.NewPostService(log, repositories.NewPostRepository(db), media)

	postController := NewPostController(log, postService, 5*1024*1024)
	commentController := NewCommentController(log, postService)

	router := gin.New()
	v1 := router.Group("/api/v1")

	public := v1.Group("/posts")
	public.GET("", postController.GetPosts)
	public.GET("/:id", postController.GetPost)
	public.GET("/:id/comments", commentController.GetComments)

	protected := v1.Group("/posts")
	protected.Use(middleware.AuthMiddleware(testSecret))
	protected.POST("", postController.CreatePost)
	protected.PUT("/:id", postController.UpdatePost)
	protected.DELETE("/:id", postController.DeletePost)
	protected.POST("/:id/like", postController.LikePost)
	protected.POST("/:id/comments", commentController.CreateComment)

	return &testAPI{router: router, posts: postService}
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func (api *testAPI) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func (api *testAPI) seedPost(t *testing.T, authorID, content string) *models.Post {
	t.Helper()

	post, err := api.posts.Create(context.Background(), services.CreatePostInput{
		AuthorID: authorID,
		Content:  content,
	})
	require.NoError(t, err)
	return post
}

func TestCreatePostEndpoint(t *testing.T) {
	api := newTestAPI(t)

	t.Run("creates and returns the view shape", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{
			"content": "my first post",
			"tags":    "sleep, diet, diet",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", bearerFor(t, aliceID))

		w := api.do(t, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Post models.PostView `json:"post"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Post.ID)
		assert.Equal(t, "my first post", resp.Post.Content)
		assert.Equal(t, models.StringSlice{"sleep", "diet"}, resp.Post.Tags)
		assert.Equal(t, "alice", resp.Post.Author.Username)
		assert.Equal(t, 0, resp.Post.LikesCount)
	})

	t.Run("empty content yields a validation failure", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"content": "  "})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", bearerFor(t, aliceID))

		w := api.do(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Validation failed")
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"content": "x"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", body)
		req.Header.Set("Content-Type", contentType)

		w := api.do(t, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetPostEndpoint(t *testing.T) {
	api := newTestAPI(t)
	post := api.seedPost(t, aliceID, "readable")

	t.Run("found", func(t *testing.T) {
		w := api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/posts/"+post.ID, nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Post models.PostView `json:"post"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, post.ID, resp.Post.ID)
		assert.Equal(t, uint64(1), resp.Post.Views, "a read counts as a view")
	})

	t.Run("not found", func(t *testing.T) {
		w := api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/posts/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Post not found")
	})
}

func TestUpdatePostEndpoint(t *testing.T) {
	api := newTestAPI(t)
	post := api.seedPost(t, aliceID, "original")

	t.Run("non-owner is forbidden", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"content": "hijack"})
		req := httptest.NewRequest(http.MethodPut, "/api/v1/posts/"+post.ID, body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", bearerFor(t, bobID))

		w := api.do(t, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner edits", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"content": "edited"})
		req := httptest.NewRequest(http.MethodPut, "/api/v1/posts/"+post.ID, body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", bearerFor(t, aliceID))

		w := api.do(t, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "edited")
	})
}

func TestDeletePostEndpoint(t *testing.T) {
	api := newTestAPI(t)
	post := api.seedPost(t, aliceID, "to delete")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/posts/"+post.ID, nil)
	req.Header.Set("Authorization", bearerFor(t, aliceID))

	w := api.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Post deleted successfully")

	w = api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/posts/"+post.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLikePostEndpoint(t *testing.T) {
	api := newTestAPI(t)
	post := api.seedPost(t, aliceID, "likeable")

	like := func(userID string) map[string]json.RawMessage {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/"+post.ID+"/like", nil)
		req.Header.Set("Authorization", bearerFor(t, userID))
		w := api.do(t, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decodeJSON(t, w)
	}

	first := like(bobID)
	assert.JSONEq(t, "true", string(first["liked"]))
	assert.JSONEq(t, "1", string(first["likesCount"]))

	second := like(bobID)
	assert.JSONEq(t, "false", string(second["liked"]))
	assert.JSONEq(t, "0", string(second["likesCount"]))
}

func TestCommentEndpoints(t *testing.T) {
	api := newTestAPI(t)
	post := api.seedPost(t, aliceID, "discuss")

	t.Run("create", func(t *testing.T) {
		payload, err := json.Marshal(CreateCommentRequest{Text: "nice work"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/"+post.ID+"/comments", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", bearerFor(t, bobID))

		w := api.do(t, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Comments []models.CommentView `json:"comments"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Comments, 1)
		assert.Equal(t, "nice work", resp.Comments[0].Text)
		assert.Equal(t, "bob", resp.Comments[0].Author.Username)
	})

	t.Run("list is public", func(t *testing.T) {
		w := api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/posts/"+post.ID+"/comments", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Comments []models.CommentView `json:"comments"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Comments, 1)
	})

	t.Run("list for a missing post is not found", func(t *testing.T) {
		w := api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/posts/nope/comments", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Post not found")
	})
}

func TestListPostsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.seedPost(t, aliceID, "one")
	api.seedPost(t, bobID, "two")

	t.Run("all posts", func(t *testing.T) {
		w := api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Posts []models.PostView `json:"posts"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Posts, 2)
	})

	t.Run("author filter", func(t *testing.T) {
		w := api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/posts?author="+aliceID, nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Posts []models.PostView `json:"posts"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Posts, 1)
		assert.Equal(t, "alice", resp.Posts[0].Author.Username)
	})
}
