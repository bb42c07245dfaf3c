package handlers

import (
	"net/http"

	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)         // Get own profile
	g.PUT("/profile", h.UpdateProfile)      // Update own profile, json or multipart
	g.PUT("/profile/mood", h.SetMood)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/username/:username", h.GetUserByUsername)
	g.GET("/users/:id", h.GetUser) // Get other user's profile by ID
}

// profileView returns the full profile to its owner and the compact projection to everyone else.
func profileView(viewerID string, user *models.User) interface{} {
	if user.ID.Hex() == viewerID {
		return user
	}
	return user.ToCompact()
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userService.GetProfile(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, user)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userService.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, profileView(getUserIDFromContext(c), user))
}

func (h *UserHandler) GetUserByUsername(c echo.Context) error {
	user, err := h.userService.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, profileView(getUserIDFromContext(c), user))
}

// SearchUsers searches users by name or username
func (h *UserHandler) SearchUsers(c echo.Context) error {
	users, err := h.userService.SearchUsers(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"users": users})
}

// UpdateProfile updates the authenticated user's profile. An "avatar" file
// may be sent when the body is multipart.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	avatar, closeFile, err := formFile(c, "avatar")
	if err != nil {
		return err
	}
	defer closeFile()

	in := services.ProfileInput{Interests: req.Interests, Avatar: avatar}
	if req.Name != "" {
		in.Name = &req.Name
	}
	if req.Bio != "" {
		in.Bio = &req.Bio
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), getUserIDFromContext(c), in)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, user)
}

func (h *UserHandler) SetMood(c echo.Context) error {
	var req models.SetMoodRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.userService.SetMood(c.Request().Context(), getUserIDFromContext(c), req.Mood); err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"mood": req.Mood})
}
