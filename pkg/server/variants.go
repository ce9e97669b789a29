package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"localfonts/pkg/log"
	"localfonts/pkg/models"
)

type assignRequest struct {
	AssignTo string `json:"assign_to"`
}

// createVariant handles POST /api/variants requests. On success the
// response carries the owning font's full variant list in display
// order.
func (fs *FontServer) createVariant(ctx echo.Context) error {
	var req models.Variant
	if err := ctx.Bind(&req); err != nil {
		return respondValidation(ctx, "invalid request body")
	}

	variant, err := fs.catalog.CreateVariant(req)
	if err != nil {
		log.Warn().Err(err).Str("font", req.FontName).Str("variant", req.Variant).Msg("Variant create rejected")
		return respondError(ctx, err)
	}

	log.Info().Str("font", variant.FontName).Str("variant", variant.Variant).Int64("id", variant.ID).Msg("Variant created")

	variants, err := fs.catalog.ListVariants(variant.FontName)
	if err != nil {
		return respondError(ctx, err)
	}

	return respondData(ctx, http.StatusCreated, variants)
}

// deleteVariant handles DELETE /api/variants/{id} requests. The
// response carries the owning font's remaining variants plus the file
// ID if its physical deletion failed.
func (fs *FontServer) deleteVariant(ctx echo.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return respondValidation(ctx, "invalid variant id")
	}

	fontName, failedFiles, err := fs.catalog.DeleteVariant(id)
	if err != nil {
		log.Warn().Err(err).Int64("id", id).Msg("Variant delete failed")
		return respondError(ctx, err)
	}

	log.Info().Int64("id", id).Str("font", fontName).Msg("Variant deleted")

	variants, err := fs.catalog.ListVariants(fontName)
	if err != nil {
		return respondError(ctx, err)
	}

	if failedFiles == nil {
		failedFiles = []int64{}
	}

	return respondData(ctx, http.StatusOK, map[string]interface{}{
		"font_name":       fontName,
		"variants":        variants,
		"failed_file_ids": failedFiles,
	})
}

// assignVariant handles PUT /api/variants/{id}/assign requests,
// overwriting the variant's CSS selector list.
func (fs *FontServer) assignVariant(ctx echo.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return respondValidation(ctx, "invalid variant id")
	}

	var req assignRequest
	if err := ctx.Bind(&req); err != nil {
		return respondValidation(ctx, "invalid request body")
	}

	if err := fs.catalog.AssignVariant(id, req.AssignTo); err != nil {
		log.Warn().Err(err).Int64("id", id).Msg("Variant assign failed")
		return respondError(ctx, err)
	}

	log.Info().Int64("id", id).Str("assign_to", req.AssignTo).Msg("Variant assigned")
	return respondData(ctx, http.StatusOK, map[string]interface{}{"updated": true})
}
