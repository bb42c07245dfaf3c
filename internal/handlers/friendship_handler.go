package handlers

import (
	"net/http"

	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FriendshipHandler handles friend requests and the friends list
type FriendshipHandler struct {
	notificationService *services.NotificationService
	relationshipService *services.RelationshipService
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(notificationService *services.NotificationService, relationshipService *services.RelationshipService) *FriendshipHandler {
	return &FriendshipHandler{
		notificationService: notificationService,
		relationshipService: relationshipService,
	}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friends/requests/:userId", h.SendFriendRequest)
	g.PUT("/friends/requests/:notificationId", h.RespondToFriendRequest)
	g.GET("/friends", h.GetFriends)
	g.DELETE("/friends/:id", h.DeleteFriend) // Unfriend
}

// SendFriendRequest creates a pending friend-request notification for :userId
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	request, err := h.notificationService.SendFriendRequest(c.Request().Context(), getUserIDFromContext(c), c.Param("userId"))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusCreated, request)
}

// RespondToFriendRequest accepts or rejects a pending request
func (h *FriendshipHandler) RespondToFriendRequest(c echo.Context) error {
	var req models.UpdateNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	n, err := h.notificationService.RespondToFriendRequest(c.Request().Context(), getUserIDFromContext(c), c.Param("notificationId"), req.Status)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, n)
}

// GetFriends lists the authenticated user's friends
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	friends, err := h.relationshipService.ListFriends(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"friends": friends})
}

// DeleteFriend removes the friendship on both sides
func (h *FriendshipHandler) DeleteFriend(c echo.Context) error {
	if err := h.relationshipService.Unfriend(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
