package handlers

import (
	"net/http"

	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	postService *services.PostService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(postService *services.PostService) *CommentHandler {
	return &CommentHandler{postService: postService}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
}

// CreateComment appends a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.postService.Comment(c.Request().Context(), getUserIDFromContext(c), c.Param("id"), req.Text)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusCreated, comment)
}
