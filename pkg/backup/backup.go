// Package backup exports the font catalog to a portable JSON payload
// and restores such payloads, re-hosting every remote font file
// locally so the restored site never references the origin it was
// exported from.
package backup

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"localfonts/pkg/log"
	"localfonts/pkg/media"
	"localfonts/pkg/models"
)

// restoreExtensions is the set of file extensions a restore is willing
// to fetch. Checked against the URL path before any download happens.
var restoreExtensions = map[string]bool{
	".ttf":   true,
	".otf":   true,
	".woff":  true,
	".woff2": true,
}

// Catalog is the slice of the font store the engine needs.
type Catalog interface {
	ListFonts() ([]models.Font, error)
	ListAllVariants() ([]models.Variant, error)
	FontExists(name string) (bool, error)
	VariantExists(fontName, variant string) (bool, error)
	InsertFont(font models.Font) (*models.Font, error)
	CreateVariant(data models.Variant) (*models.Variant, error)
	SyncVariantCount(fontName string) (int64, error)
}

// MediaLibrary stores downloaded font files and resolves existing ones.
type MediaLibrary interface {
	Save(r io.Reader, filename string) (*media.StoredFile, error)
	ResolveURL(id int64) (string, error)
}

// Engine performs exports and restores against a catalog and a media
// library.
type Engine struct {
	catalog Catalog
	media   MediaLibrary
	client  *retryablehttp.Client
}

// NewEngine creates a backup engine with a bounded-timeout HTTP client
// for font downloads. A failed download is a skip, not a retriable
// error, so retries stay off.
func NewEngine(catalog Catalog, mediaLib MediaLibrary) *Engine {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.HTTPClient.Timeout = 30 * time.Second
	client.Logger = nil

	return &Engine{
		catalog: catalog,
		media:   mediaLib,
		client:  client,
	}
}

// Export snapshots every font and variant into a payload suitable for
// Restore on another installation.
func (e *Engine) Export() (*models.BackupPayload, error) {
	fonts, err := e.catalog.ListFonts()
	if err != nil {
		return nil, fmt.Errorf("failed to export fonts: %w", err)
	}

	variants, err := e.catalog.ListAllVariants()
	if err != nil {
		return nil, fmt.Errorf("failed to export variants: %w", err)
	}

	return &models.BackupPayload{Fonts: fonts, Variants: variants}, nil
}

// Restore merges a payload into the catalog. Fonts whose name already
// exists are skipped wholesale, their variants included: existing data
// wins, and variants are only restored into fonts this run created.
// Each restored variant's font file is re-hosted: files already served
// by this installation are reused, everything else is downloaded and
// saved through the media library. A variant whose file cannot be
// fetched or fails validation is skipped, never aborting the rest of
// the restore.
func (e *Engine) Restore(payload *models.BackupPayload) (*models.RestoreReport, error) {
	if payload == nil || len(payload.Fonts) == 0 {
		return nil, fmt.Errorf("restore payload contains no fonts")
	}

	report := &models.RestoreReport{}
	restoredFonts := map[string]bool{}

	for _, font := range payload.Fonts {
		if font.Name == "" {
			continue
		}

		exists, err := e.catalog.FontExists(font.Name)
		if err != nil {
			return report, fmt.Errorf("failed to check font %q: %w", font.Name, err)
		}
		if exists {
			report.FontsSkipped++
			continue
		}

		if _, err := e.catalog.InsertFont(models.Font{Name: font.Name, Amount: font.Amount, FontData: font.FontData}); err != nil {
			return report, fmt.Errorf("failed to restore font %q: %w", font.Name, err)
		}
		restoredFonts[font.Name] = true
		report.FontsRestored++
	}

	for _, variant := range payload.Variants {
		if !restoredFonts[variant.FontName] {
			report.VariantsSkipped++
			continue
		}

		exists, err := e.catalog.VariantExists(variant.FontName, variant.Variant)
		if err != nil {
			return report, fmt.Errorf("failed to check variant %q of %q: %w", variant.Variant, variant.FontName, err)
		}
		if exists {
			report.VariantsSkipped++
			continue
		}

		fileURL, fileID, err := e.materializeFile(variant)
		if err != nil {
			log.Warn().Err(err).Str("font", variant.FontName).Str("variant", variant.Variant).Msg("Skipping variant during restore")
			report.VariantsSkipped++
			continue
		}

		_, err = e.catalog.CreateVariant(models.Variant{
			Variant:  variant.Variant,
			FontName: variant.FontName,
			FileURL:  fileURL,
			FileID:   fileID,
			AssignTo: variant.AssignTo,
		})
		if err != nil {
			log.Warn().Err(err).Str("font", variant.FontName).Str("variant", variant.Variant).Msg("Skipping variant during restore")
			report.VariantsSkipped++
			continue
		}
		report.VariantsRestored++
	}

	// The payload's amount was preserved at insert but may disagree with
	// what actually restored; settle every created font on its live count.
	for fontName := range restoredFonts {
		if _, err := e.catalog.SyncVariantCount(fontName); err != nil {
			log.Warn().Err(err).Str("font", fontName).Msg("Failed to resync variant count after restore")
		}
	}

	return report, nil
}

// materializeFile returns a locally hosted URL and media ID for a
// variant's font file, reusing the existing file when the payload came
// from this installation and downloading it otherwise. The extension
// allowlist gates only the download path: a file this installation
// already hosts was validated when it was stored.
func (e *Engine) materializeFile(variant models.Variant) (string, int64, error) {
	if variant.FileURL == "" {
		return "", 0, fmt.Errorf("variant has no file url")
	}

	if variant.FileID != 0 {
		resolved, err := e.media.ResolveURL(variant.FileID)
		if err == nil && resolved == variant.FileURL {
			return variant.FileURL, variant.FileID, nil
		}
	}

	parsed, err := url.Parse(variant.FileURL)
	if err != nil {
		return "", 0, fmt.Errorf("invalid file url: %w", err)
	}

	filename := path.Base(parsed.Path)
	ext := strings.ToLower(path.Ext(parsed.Path))
	if !restoreExtensions[ext] {
		return "", 0, fmt.Errorf("unsupported font file extension %q", ext)
	}

	resp, err := e.client.Get(variant.FileURL)
	if err != nil {
		return "", 0, fmt.Errorf("failed to download font file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("font file download returned status %d", resp.StatusCode)
	}

	stored, err := e.media.Save(resp.Body, filename)
	if err != nil {
		return "", 0, fmt.Errorf("failed to store downloaded font file: %w", err)
	}

	return stored.URL, stored.ID, nil
}
