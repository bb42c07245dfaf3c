package handlers

import (
	"net/http"

	"github.com/connectai/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SavedPostHandler handles bookmarks
type SavedPostHandler struct {
	postService *services.PostService
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(postService *services.PostService) *SavedPostHandler {
	return &SavedPostHandler{postService: postService}
}

// RegisterSavedPostRoutes registers saved post routes
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("/posts/:id/save", h.SavePost)
	g.DELETE("/posts/:id/save", h.UnsavePost)
	g.GET("/saved", h.GetSavedPosts)
}

// SavePost bookmarks a post
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	if err := h.postService.SavePost(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "saved": true})
}

// UnsavePost removes a bookmark
func (h *SavedPostHandler) UnsavePost(c echo.Context) error {
	if err := h.postService.UnsavePost(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "saved": false})
}

// GetSavedPosts returns the caller's bookmarked posts
func (h *SavedPostHandler) GetSavedPosts(c echo.Context) error {
	posts, err := h.postService.ListSaved(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"posts": posts})
}
