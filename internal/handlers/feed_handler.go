package handlers

import (
	"net/http"

	"github.com/connectai/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the ranked feed
type FeedHandler struct {
	feedService *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// RegisterFeedRoutes registers feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns one page of the caller's ranked feed. Only the page is enriched.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)
	page, limit := pageParams(c, 20, 100)

	feed, err := h.feedService.GetFeed(ctx, currentUserID)
	if err != nil {
		return respondError(err)
	}

	total := len(feed)
	start, end := pageBounds(page, limit, total)

	posts, err := h.feedService.Enrich(ctx, currentUserID, feed[start:end])
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"posts": posts,
		},
		"meta": pageMeta(page, limit, total),
	})
}
