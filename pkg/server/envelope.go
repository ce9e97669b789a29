package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"localfonts/pkg/catalog"
	"localfonts/pkg/media"
)

// errorBody is the machine-readable half of a failure envelope.
type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// respondData wraps a successful payload in the response envelope.
func respondData(ctx echo.Context, status int, data interface{}) error {
	return ctx.JSON(status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// respondError maps an error to its envelope and HTTP status. Catalog
// errors carry their own kind; media validation failures map to the
// validation kind; everything else is reported as an internal error
// without leaking detail.
func respondError(ctx echo.Context, err error) error {
	kind := catalog.KindOf(err)

	switch {
	case kind != "":
		return respondFailure(ctx, statusForKind(kind), string(kind), err.Error())
	case errors.Is(err, media.ErrUnsupportedExtension), errors.Is(err, media.ErrUnsupportedContentType):
		return respondFailure(ctx, http.StatusBadRequest, string(catalog.KindValidation), err.Error())
	case errors.Is(err, media.ErrFileNotFound):
		return respondFailure(ctx, http.StatusNotFound, string(catalog.KindNotFound), err.Error())
	default:
		return respondFailure(ctx, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// respondValidation reports a handler-level input problem, typically a
// malformed request body or path parameter.
func respondValidation(ctx echo.Context, message string) error {
	return respondFailure(ctx, http.StatusBadRequest, string(catalog.KindValidation), message)
}

func respondFailure(ctx echo.Context, status int, kind, message string) error {
	return ctx.JSON(status, map[string]interface{}{
		"success": false,
		"error":   errorBody{Kind: kind, Message: message},
	})
}

func statusForKind(kind catalog.Kind) int {
	switch kind {
	case catalog.KindValidation:
		return http.StatusBadRequest
	case catalog.KindConflict:
		return http.StatusConflict
	case catalog.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
