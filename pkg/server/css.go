package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"localfonts/pkg/log"
)

// serveStylesheet handles GET /fonts.css requests, the public endpoint
// pages link to. An empty stylesheet is a valid response.
func (fs *FontServer) serveStylesheet(ctx echo.Context) error {
	css, err := fs.stylesheet.Compiled()
	if err != nil {
		log.Error().Err(err).Msg("Stylesheet compilation failed")
		return ctx.NoContent(http.StatusInternalServerError)
	}

	return ctx.Blob(http.StatusOK, "text/css; charset=utf-8", []byte(css))
}
