package handlers

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/connectai/backend/internal/middleware"
	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterAuthRoutes registers the public authentication routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, verifier middleware.IDTokenVerifier) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.POST("/firebase-session", h.FirebaseSession, middleware.FirebaseAuthMiddleware(verifier))
}

// RegisterLogoutRoute registers logout on the JWT-protected group
func (h *AuthHandler) RegisterLogoutRoute(g *echo.Group) {
	g.POST("/auth/logout", h.Logout)
}

func tokenResponse(c echo.Context, status int, token string, user *models.User) error {
	return success(c, status, echo.Map{"token": token, "user": user})
}

// Register handles local user registration with email and password
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return respondError(err)
	}
	return tokenResponse(c, http.StatusCreated, token, user)
}

// Login handles local user authentication with email and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(err)
	}
	return tokenResponse(c, http.StatusOK, token, user)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin exchanges a Firebase ID token from the body for a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return respondError(err)
	}
	return tokenResponse(c, http.StatusOK, token, user)
}

// FirebaseSession issues a local JWT for the ID token verified by FirebaseAuthMiddleware
func (h *AuthHandler) FirebaseSession(c echo.Context) error {
	firebaseToken, ok := c.Get(middleware.FirebaseTokenKey).(*auth.Token)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Firebase token missing")
	}

	token, user, err := h.authService.FirebaseSignIn(c.Request().Context(), firebaseToken)
	if err != nil {
		return respondError(err)
	}
	return tokenResponse(c, http.StatusOK, token, user)
}

// Logout revokes the caller's token
func (h *AuthHandler) Logout(c echo.Context) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out"})
}
