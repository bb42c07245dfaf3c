// Package handlers exposes the services over HTTP with echo.
package handlers

import (
	"math"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/middleware"
	"github.com/connectai/backend/internal/services"
	"github.com/connectai/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

var statusByKind = map[apperrors.Kind]int{
	apperrors.KindNotFound:        http.StatusNotFound,
	apperrors.KindForbidden:       http.StatusForbidden,
	apperrors.KindInvalidArgument: http.StatusBadRequest,
	apperrors.KindConflict:        http.StatusConflict,
	apperrors.KindUnauthorized:    http.StatusUnauthorized,
}

// respondError maps a service error onto an HTTP error. Internal causes are
// logged by the request logger and never sent to the client.
func respondError(err error) error {
	status, ok := statusByKind[apperrors.KindOf(err)]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
	}
	return echo.NewHTTPError(status, apperrors.Message(err))
}

// getUserIDFromContext returns the authenticated user's id, or "" outside the JWT group.
func getUserIDFromContext(c echo.Context) string {
	if claims := middleware.Claims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{
		"success": true,
		"data":    data,
	})
}

// bindAndValidate binds the request into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

// formFile opens an optional multipart file. A missing field yields nil.
func formFile(c echo.Context, field string) (*services.Upload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, func() {}, nil
		}
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+field+" upload")
	}
	if header.Size > storage.MaxFileSize {
		return nil, nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File exceeds the 10MB limit")
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+field+" upload")
	}
	return &services.Upload{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: contentType(header),
	}, func() { file.Close() }, nil
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// pageParams reads page and limit query params with the given default limit.
func pageParams(c echo.Context, defaultLimit, maxLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return page, limit
}

// pageBounds returns the slice window of page within total items. Pages
// past the end yield an empty window.
func pageBounds(page, limit, total int) (start, end int) {
	if page-1 > total/limit {
		return total, total
	}
	start = (page - 1) * limit
	if start > total {
		start = total
	}
	end = start + limit
	if end > total {
		end = total
	}
	return start, end
}

func pageMeta(page, limit, total int) echo.Map {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return echo.Map{
		"currentPage":     page,
		"totalPages":      totalPages,
		"totalItems":      total,
		"itemsPerPage":    limit,
		"hasNextPage":     page < totalPages,
		"hasPreviousPage": page > 1,
	}
}
