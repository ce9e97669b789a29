package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"localfonts/pkg/log"
	"localfonts/pkg/media"
)

// uploadFile handles POST /api/uploads requests: a multipart form with
// a single "file" field carrying a font binary.
func (fs *FontServer) uploadFile(ctx echo.Context) error {
	header, err := ctx.FormFile("file")
	if err != nil {
		return respondValidation(ctx, "missing file field")
	}

	if header.Size > media.MaxFileSize {
		return respondValidation(ctx, "file exceeds the maximum allowed size")
	}

	src, err := header.Open()
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to open uploaded file")
		return respondError(ctx, err)
	}
	defer func() { _ = src.Close() }()

	stored, err := fs.uploads.Save(src, header.Filename)
	if err != nil {
		log.Warn().Err(err).Str("filename", header.Filename).Msg("Upload rejected")
		return respondError(ctx, err)
	}

	log.Info().Str("filename", header.Filename).Int64("file_id", stored.ID).Int64("size", stored.Size).Msg("Font file uploaded")
	return respondData(ctx, http.StatusCreated, stored)
}
