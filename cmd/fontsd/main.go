package main

import (
	_ "embed"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"localfonts/pkg/backup"
	"localfonts/pkg/catalog"
	"localfonts/pkg/csscache"
	"localfonts/pkg/cssgen"
	"localfonts/pkg/log"
	"localfonts/pkg/media"
	"localfonts/pkg/options"
	"localfonts/pkg/server"
)

const dataDirPerm = 0750

//go:embed VERSION
var Version string

func main() {
	// Initialize logger first
	_ = log.Logger

	dataDir := flag.String("data", envOr("FONTSD_DATA_DIR", "build/data"), "Data directory path")
	port := flag.String("port", envOr("PORT", "8080"), "Server port")
	baseURL := flag.String("base-url", "", "Public base URL for hosted font files (default http://localhost:<port>)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	printToken := flag.Bool("print-token", false, "Print an admin API token and exit")
	flag.Parse()

	if *debug {
		log.SetDebugMode()
	}

	secret := os.Getenv("FONTSD_SECRET")
	if secret == "" {
		secret = uuid.NewString()
		log.Warn().Msg("FONTSD_SECRET is not set, using a random secret; tokens will not survive a restart")
	}

	if *printToken {
		token, err := server.MintToken([]byte(secret), "admin")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to mint token")
		}
		fmt.Println(token)
		os.Exit(0)
	}

	if *baseURL == "" {
		*baseURL = "http://localhost:" + *port
	}

	if err := os.MkdirAll(*dataDir, dataDirPerm); err != nil {
		log.Fatal().Err(err).Str("data_dir", *dataDir).Msg("Failed to create data directory")
	}

	db, err := catalog.OpenDB(filepath.Join(*dataDir, "fonts.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() { _ = db.Close() }()

	opts, err := options.Open(filepath.Join(*dataDir, "options"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open options store")
	}
	defer func() { _ = opts.Close() }()

	uploadsDir := filepath.Join(*dataDir, "uploads")
	mediaLib, err := media.New(db, afero.NewOsFs(), uploadsDir, *baseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize media library")
	}

	cache := csscache.New(opts)

	store, err := catalog.NewStore(db, mediaLib, cache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize font catalog")
	}

	compiler := cssgen.NewCompiler(store, cache, &cssgen.Renderer{})
	engine := backup.NewEngine(store, mediaLib)

	srv := server.NewFontServer(store, engine, mediaLib, compiler,
		[]byte(secret), uploadsDir, strings.TrimSpace(Version))

	if err := srv.Start(":" + *port); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	os.Exit(0)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
