package handlers

import (
	"net/http"

	"github.com/connectai/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like toggling
type LikeHandler struct {
	postService *services.PostService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(postService *services.PostService) *LikeHandler {
	return &LikeHandler{postService: postService}
}

// RegisterLikeRoutes registers like routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
}

// ToggleLike likes the post, or unlikes it when the caller already liked it
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	liked, err := h.postService.ToggleLike(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"liked": liked})
}
