package handlers

import (
	"net/http"
	"strconv"

	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ConversationHandler handles conversations and messages
type ConversationHandler struct {
	messagingService *services.MessagingService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(messagingService *services.MessagingService) *ConversationHandler {
	return &ConversationHandler{messagingService: messagingService}
}

// RegisterConversationRoutes registers messaging routes
func (h *ConversationHandler) RegisterConversationRoutes(g *echo.Group) {
	g.POST("/conversations", h.CreateConversation)
	g.GET("/conversations", h.GetConversations)
	g.POST("/conversations/:id/messages", h.SendMessage)
	g.GET("/conversations/:id/messages", h.GetMessages)
	g.DELETE("/messages/:id", h.DeleteMessage)
}

func uintParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// CreateConversation returns the caller's conversation with the given
// participants, creating it on first use.
func (h *ConversationHandler) CreateConversation(c echo.Context) error {
	var req models.CreateConversationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	conversation, created, err := h.messagingService.CreateConversation(c.Request().Context(), getUserIDFromContext(c), req.Participants)
	if err != nil {
		return respondError(err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return success(c, status, conversation)
}

func (h *ConversationHandler) GetConversations(c echo.Context) error {
	conversations, err := h.messagingService.ListConversations(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"conversations": conversations})
}

func (h *ConversationHandler) SendMessage(c echo.Context) error {
	conversationID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	message, err := h.messagingService.SendMessage(c.Request().Context(), getUserIDFromContext(c), conversationID, req.MessageType, req.Content)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusCreated, message)
}

func (h *ConversationHandler) GetMessages(c echo.Context) error {
	conversationID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	messages, err := h.messagingService.GetMessages(c.Request().Context(), getUserIDFromContext(c), conversationID)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"messages": messages})
}

func (h *ConversationHandler) DeleteMessage(c echo.Context) error {
	messageID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.messagingService.DeleteMessage(c.Request().Context(), getUserIDFromContext(c), messageID); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
