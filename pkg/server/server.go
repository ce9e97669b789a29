// Package server exposes the font catalog over HTTP: an authenticated
// JSON API for administration plus public endpoints for the compiled
// stylesheet and the hosted font files.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"localfonts/pkg/log"
	"localfonts/pkg/media"
	"localfonts/pkg/models"
)

const shutdownTimeout = 10

// Catalog is the font store surface the handlers call.
type Catalog interface {
	CreateFont(name string) (*models.Font, error)
	DeleteFont(name string) ([]int64, error)
	ListFonts() ([]models.Font, error)
	ListVariants(fontName string) ([]models.Variant, error)
	CreateVariant(data models.Variant) (*models.Variant, error)
	DeleteVariant(id int64) (string, []int64, error)
	AssignVariant(id int64, assignTo string) error
}

// BackupEngine exports and restores catalog snapshots.
type BackupEngine interface {
	Export() (*models.BackupPayload, error)
	Restore(payload *models.BackupPayload) (*models.RestoreReport, error)
}

// Uploader stores an uploaded font file.
type Uploader interface {
	Save(r io.Reader, filename string) (*media.StoredFile, error)
}

// Stylesheet serves the compiled CSS, rebuilding it on cache miss.
type Stylesheet interface {
	Compiled() (string, error)
}

type FontServer struct {
	echo       *echo.Echo
	catalog    Catalog
	backup     BackupEngine
	uploads    Uploader
	stylesheet Stylesheet
	secret     []byte
	uploadsDir string
	version    string
}

func NewFontServer(catalog Catalog, backupEngine BackupEngine, uploads Uploader, stylesheet Stylesheet, secret []byte, uploadsDir, version string) *FontServer {
	return &FontServer{
		echo:       echo.New(),
		catalog:    catalog,
		backup:     backupEngine,
		uploads:    uploads,
		stylesheet: stylesheet,
		secret:     secret,
		uploadsDir: uploadsDir,
		version:    version,
	}
}

func (fs *FontServer) Start(addr string) error {
	fs.setupRoutes()

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("addr", addr).
			Str("uploads_dir", fs.uploadsDir).
			Str("version", fs.version).
			Msg("Starting font server")

		if err := fs.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server startup failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return fs.Shutdown()
}

func (fs *FontServer) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout*time.Second)
	defer cancel()

	if err := fs.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	log.Info().Msg("Server gracefully stopped")
	return nil
}

func (fs *FontServer) setupRoutes() {
	fs.echo.HideBanner = true
	fs.echo.HidePort = true

	fs.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} ${status} ${method} ${uri} (${latency_human})\n",
	}))
	fs.echo.Use(middleware.Recover())

	// Public surface: the compiled stylesheet and the font binaries it
	// references. Font files never change once uploaded, so they are
	// served with a long immutable cache lifetime.
	fs.echo.GET("/fonts.css", fs.serveStylesheet)
	files := fs.echo.Group("/uploads", immutableCache)
	files.Static("/", fs.uploadsDir)

	// Administrative API, token-protected.
	api := fs.echo.Group("/api", TokenAuth(fs.secret))
	api.GET("/fonts", fs.listFonts)
	api.POST("/fonts", fs.createFont)
	api.DELETE("/fonts/:name", fs.deleteFont)
	api.GET("/fonts/:name/variants", fs.listFontVariants)
	api.POST("/variants", fs.createVariant)
	api.DELETE("/variants/:id", fs.deleteVariant)
	api.PUT("/variants/:id/assign", fs.assignVariant)
	api.GET("/backup", fs.exportBackup)
	api.POST("/restore", fs.restoreBackup)
	api.POST("/uploads", fs.uploadFile)
}

func immutableCache(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctx.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		return next(ctx)
	}
}
