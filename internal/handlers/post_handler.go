package handlers

import (
	"net/http"
	"strconv"

	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts", h.GetPosts) // Posts by user, ?user_id= defaults to the caller
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/share", h.SharePost)
}

// CreatePost creates a new post. A "media" file may be sent when the body is multipart.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	media, closeFile, err := formFile(c, "media")
	if err != nil {
		return err
	}
	defer closeFile()

	post, err := h.postService.CreatePost(c.Request().Context(), getUserIDFromContext(c), services.NewPost{
		Text:     req.Text,
		Media:    req.Media,
		Tags:     req.Tags,
		Location: req.Location,
		File:     media,
	})
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusCreated, post)
}

// GetPost retrieves a post by ID with its counters
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postService.GetPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, post)
}

// GetPosts pages through one author's posts, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		userID = getUserIDFromContext(c)
	}
	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	posts, err := h.postService.ListPostsByAuthor(c.Request().Context(), userID, skip, limit)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"posts": posts})
}

// DeletePost deletes a post owned by the caller
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.postService.Delete(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SharePost re-posts a post under the caller's name
func (h *PostHandler) SharePost(c echo.Context) error {
	post, err := h.postService.Share(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusCreated, post)
}
