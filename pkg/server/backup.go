package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"localfonts/pkg/log"
	"localfonts/pkg/models"
)

// exportBackup handles GET /api/backup requests, returning a portable
// snapshot of every font and variant.
func (fs *FontServer) exportBackup(ctx echo.Context) error {
	payload, err := fs.backup.Export()
	if err != nil {
		log.Error().Err(err).Msg("Backup export failed")
		return respondError(ctx, err)
	}

	log.Info().Int("fonts", len(payload.Fonts)).Int("variants", len(payload.Variants)).Msg("Backup exported")
	return respondData(ctx, http.StatusOK, payload)
}

// restoreBackup handles POST /api/restore requests, merging a snapshot
// into the catalog and re-hosting its font files.
func (fs *FontServer) restoreBackup(ctx echo.Context) error {
	var payload models.BackupPayload
	if err := ctx.Bind(&payload); err != nil {
		return respondValidation(ctx, "invalid backup payload")
	}
	if len(payload.Fonts) == 0 {
		return respondValidation(ctx, "backup payload contains no fonts")
	}

	report, err := fs.backup.Restore(&payload)
	if err != nil {
		log.Error().Err(err).Msg("Backup restore failed")
		return respondError(ctx, err)
	}

	log.Info().
		Int("fonts_restored", report.FontsRestored).
		Int("fonts_skipped", report.FontsSkipped).
		Int("variants_restored", report.VariantsRestored).
		Int("variants_skipped", report.VariantsSkipped).
		Msg("Backup restored")

	return respondData(ctx, http.StatusOK, report)
}
