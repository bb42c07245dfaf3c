package handlers

import (
	"net/http"

	"github.com/connectai/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow-related HTTP requests
type FollowHandler struct {
	relationshipService *services.RelationshipService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(relationshipService *services.RelationshipService) *FollowHandler {
	return &FollowHandler{relationshipService: relationshipService}
}

// RegisterFollowRoutes registers follow routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// FollowUser follows a user. Following twice is a no-op.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	if err := h.relationshipService.Follow(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Followed successfully"})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	if err := h.relationshipService.Unfollow(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Unfollowed successfully"})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	users, err := h.relationshipService.ListFollowers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"followers": users})
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	users, err := h.relationshipService.ListFollowing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"following": users})
}
