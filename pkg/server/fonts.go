package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"localfonts/pkg/log"
)

type createFontRequest struct {
	Name string `json:"name"`
}

// listFonts handles GET /api/fonts requests.
func (fs *FontServer) listFonts(ctx echo.Context) error {
	fonts, err := fs.catalog.ListFonts()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list fonts")
		return respondError(ctx, err)
	}

	return respondData(ctx, http.StatusOK, fonts)
}

// createFont handles POST /api/fonts requests. The response carries the
// full font list so clients can refresh their view in one round trip.
func (fs *FontServer) createFont(ctx echo.Context) error {
	var req createFontRequest
	if err := ctx.Bind(&req); err != nil {
		return respondValidation(ctx, "invalid request body")
	}

	font, err := fs.catalog.CreateFont(req.Name)
	if err != nil {
		log.Warn().Err(err).Str("name", req.Name).Msg("Font create rejected")
		return respondError(ctx, err)
	}

	log.Info().Str("name", font.Name).Int64("id", font.ID).Msg("Font created")

	fonts, err := fs.catalog.ListFonts()
	if err != nil {
		return respondError(ctx, err)
	}

	return respondData(ctx, http.StatusCreated, fonts)
}

// deleteFont handles DELETE /api/fonts/{name} requests. The response
// carries the remaining fonts plus the IDs of any variant files whose
// physical deletion failed.
func (fs *FontServer) deleteFont(ctx echo.Context) error {
	name := ctx.Param("name")

	failedFiles, err := fs.catalog.DeleteFont(name)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("Font delete failed")
		return respondError(ctx, err)
	}

	log.Info().Str("name", name).Int("failed_files", len(failedFiles)).Msg("Font deleted")

	fonts, err := fs.catalog.ListFonts()
	if err != nil {
		return respondError(ctx, err)
	}

	if failedFiles == nil {
		failedFiles = []int64{}
	}

	return respondData(ctx, http.StatusOK, map[string]interface{}{
		"fonts":           fonts,
		"failed_file_ids": failedFiles,
	})
}

// listFontVariants handles GET /api/fonts/{name}/variants requests.
func (fs *FontServer) listFontVariants(ctx echo.Context) error {
	variants, err := fs.catalog.ListVariants(ctx.Param("name"))
	if err != nil {
		log.Error().Err(err).Str("name", ctx.Param("name")).Msg("Failed to list variants")
		return respondError(ctx, err)
	}

	return respondData(ctx, http.StatusOK, variants)
}
