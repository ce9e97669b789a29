// Package catalog owns the Font and Variant entities and every CRUD
// and integrity operation against them: cascading deletes, variant
// count synchronization and CSS cache invalidation.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"localfonts/pkg/log"
	"localfonts/pkg/models"
)

// fontNamePattern matches every character that is stripped from a font
// name: anything outside letters, digits, dash and underscore.
var fontNamePattern = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// FileDeleter removes a hosted file by its media ID. The media library
// implements it.
type FileDeleter interface {
	Delete(id int64) error
}

// Invalidator drops the compiled CSS cache slot.
type Invalidator interface {
	Invalidate() error
}

// Store manages fonts and variants in SQLite. Mutations hold an
// exclusive lock so the insert/resync/invalidate sequences execute as
// one unit within this process; concurrent processes sharing the
// database can still interleave them, which is an accepted limitation
// for a low-traffic administrative tool.
type Store struct {
	db    *sql.DB
	media FileDeleter
	cache Invalidator
	mu    sync.RWMutex
}

// OpenDB opens the catalog database with the pragmas the service needs.
func OpenDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return db, nil
}

// NewStore creates a Store over db and initializes the schema.
func NewStore(db *sql.DB, media FileDeleter, cache Invalidator) (*Store, error) {
	store := &Store{db: db, media: media, cache: cache}
	if err := store.Initialize(); err != nil {
		return nil, err
	}
	return store, nil
}

// Initialize creates the catalog tables.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(context.Background(), Schema); err != nil {
		return storageError("failed to initialize schema", err)
	}
	return nil
}

// SanitizeFontName strips every character outside letters, digits,
// dash and underscore. The result doubles as display name and CSS
// font-family value.
func SanitizeFontName(name string) string {
	return fontNamePattern.ReplaceAllString(strings.TrimSpace(name), "")
}

// CreateFont inserts a new font with a zero variant count. The name is
// sanitized first; an empty result is rejected and a duplicate name
// surfaces the storage layer's uniqueness constraint as a conflict.
func (s *Store) CreateFont(name string) (*models.Font, error) {
	sanitized := SanitizeFontName(name)
	if sanitized == "" {
		return nil, validationError("font name is empty or contains no valid characters")
	}

	return s.InsertFont(models.Font{Name: sanitized})
}

// InsertFont inserts a font record as given, preserving amount and
// font_data. Backup restore uses it to re-materialize exported fonts.
func (s *Store) InsertFont(font models.Font) (*models.Font, error) {
	if font.Name == "" {
		return nil, validationError("font name is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(context.Background(),
		`INSERT INTO fonts (name, amount, font_data) VALUES (?, ?, ?)`,
		font.Name, font.Amount, nullable(font.FontData),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, conflictError("a font with this name already exists")
		}
		return nil, storageError("could not add the font to the database", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageError("could not read inserted font id", err)
	}

	font.ID = id
	return &font, nil
}

// DeleteFont removes a font, all of its variants and their backing
// files, then invalidates the CSS cache. Deleting a font that does not
// exist is a no-op. File deletions are best-effort: failures do not
// abort the cascade and are returned so callers can surface them.
func (s *Store) DeleteFont(name string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM fonts WHERE name = ?`, name); err != nil {
		return nil, storageError("could not delete the font", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT file_id FROM variants WHERE font_name = ? AND file_id != 0`, name)
	if err != nil {
		return nil, storageError("could not list variant files", err)
	}

	var fileIDs []int64
	for rows.Next() {
		var fileID int64
		if scanErr := rows.Scan(&fileID); scanErr != nil {
			_ = rows.Close()
			return nil, storageError("could not read variant file id", scanErr)
		}
		fileIDs = append(fileIDs, fileID)
	}
	if err = rows.Err(); err != nil {
		_ = rows.Close()
		return nil, storageError("could not list variant files", err)
	}
	_ = rows.Close()

	var failedFiles []int64
	for _, fileID := range fileIDs {
		if err := s.media.Delete(fileID); err != nil {
			log.Warn().Err(err).Int64("file_id", fileID).Str("font", name).Msg("Failed to delete variant file")
			failedFiles = append(failedFiles, fileID)
		}
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM variants WHERE font_name = ?`, name); err != nil {
		return failedFiles, storageError("could not delete the font variants", err)
	}

	if err := s.cache.Invalidate(); err != nil {
		return failedFiles, storageError("font deleted but css cache invalidation failed", err)
	}

	return failedFiles, nil
}

// ListFonts returns all fonts in storage order.
func (s *Store) ListFonts() ([]models.Font, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, name, amount, font_data FROM fonts`)
	if err != nil {
		return nil, storageError("could not list fonts", err)
	}
	defer func() { _ = rows.Close() }()

	var fonts []models.Font
	for rows.Next() {
		var (
			font     models.Font
			fontData sql.NullString
		)
		if err := rows.Scan(&font.ID, &font.Name, &font.Amount, &fontData); err != nil {
			return nil, storageError("could not read font row", err)
		}
		font.FontData = fontData.String
		fonts = append(fonts, font)
	}

	if err = rows.Err(); err != nil {
		return nil, storageError("could not list fonts", err)
	}

	return fonts, nil
}

// FontExists reports whether a font with the given name exists.
func (s *Store) FontExists(name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fontExists(name)
}

func (s *Store) fontExists(name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM fonts WHERE name = ?)`, name).Scan(&exists)
	if err != nil {
		return false, storageError("could not check font existence", err)
	}
	return exists, nil
}

// VariantExists reports whether the (font, variant) pair exists.
// Empty inputs report true: the guard fails closed so a caller that
// skipped validation cannot create a malformed pair. Normal flow never
// reaches this with empty input.
func (s *Store) VariantExists(fontName, variant string) (bool, error) {
	if fontName == "" || variant == "" {
		return true, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.variantExists(fontName, variant)
}

func (s *Store) variantExists(fontName, variant string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM variants WHERE font_name = ? AND variant = ?)`,
		fontName, variant).Scan(&exists)
	if err != nil {
		return false, storageError("could not check variant existence", err)
	}
	return exists, nil
}

// ListVariants returns a font's variants in canonical display order:
// shorter tokens first, then lexicographic. Numeric weights share a
// length, so "400" sorts before "400italic" before "500".
func (s *Store) ListVariants(fontName string) ([]models.Variant, error) {
	if fontName == "" {
		return []models.Variant{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryVariants(
		`SELECT id, variant, font_name, file_url, file_id, assign_to FROM variants
		 WHERE font_name = ?
		 ORDER BY LENGTH(variant), variant ASC`, fontName)
}

// ListAllVariants returns every variant; backup export uses it.
func (s *Store) ListAllVariants() ([]models.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryVariants(
		`SELECT id, variant, font_name, file_url, file_id, assign_to FROM variants`)
}

// ListAssignedVariants returns the variants wired to CSS selectors,
// the input set for stylesheet compilation.
func (s *Store) ListAssignedVariants() ([]models.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryVariants(
		`SELECT id, variant, font_name, file_url, file_id, assign_to FROM variants
		 WHERE assign_to IS NOT NULL AND assign_to != ''`)
}

func (s *Store) queryVariants(query string, args ...interface{}) ([]models.Variant, error) {
	rows, err := s.db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, storageError("could not list variants", err)
	}
	defer func() { _ = rows.Close() }()

	variants := []models.Variant{}
	for rows.Next() {
		var (
			variant  models.Variant
			assignTo sql.NullString
		)
		err := rows.Scan(&variant.ID, &variant.Variant, &variant.FontName,
			&variant.FileURL, &variant.FileID, &assignTo)
		if err != nil {
			return nil, storageError("could not read variant row", err)
		}
		variant.AssignTo = assignTo.String
		variants = append(variants, variant)
	}

	if err = rows.Err(); err != nil {
		return nil, storageError("could not list variants", err)
	}

	return variants, nil
}

// CreateVariant validates and inserts a variant, resynchronizes the
// owning font's count and invalidates the CSS cache. A failure after
// the insert surfaces as a storage error distinct from a clean
// success.
func (s *Store) CreateVariant(data models.Variant) (*models.Variant, error) {
	if data.Variant == "" || data.FontName == "" || data.FileURL == "" || data.FileID == 0 {
		return nil, validationError("variant, font name, file url and file id are required")
	}

	if !ValidVariant(data.Variant) {
		return nil, validationError("this font variant is invalid")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.variantExists(data.FontName, data.Variant)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflictError("this font variant already exists")
	}

	fontExists, err := s.fontExists(data.FontName)
	if err != nil {
		return nil, err
	}
	if !fontExists {
		return nil, notFoundError("font not found")
	}

	ctx := context.Background()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO variants (variant, font_name, file_url, file_id, assign_to) VALUES (?, ?, ?, ?, ?)`,
		data.Variant, data.FontName, data.FileURL, data.FileID, data.AssignTo,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, conflictError("this font variant already exists")
		}
		return nil, storageError("could not add the font variant to the database", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageError("could not read inserted variant id", err)
	}
	data.ID = id

	if _, err := s.syncVariantCount(data.FontName); err != nil {
		return &data, storageError("variant created but count synchronization failed", err)
	}
	if err := s.cache.Invalidate(); err != nil {
		return &data, storageError("variant created but css cache invalidation failed", err)
	}

	return &data, nil
}

// DeleteVariant removes a variant by id, deletes its backing file
// (best-effort), resynchronizes the owning font's count and
// invalidates the CSS cache. It returns the owning font's name so
// callers can refresh their view, plus any file ID whose physical
// deletion failed.
func (s *Store) DeleteVariant(id int64) (string, []int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()

	var (
		fontName string
		fileID   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT font_name, file_id FROM variants WHERE id = ?`, id).Scan(&fontName, &fileID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, notFoundError("variant not found")
	}
	if err != nil {
		return "", nil, storageError("could not look up the variant", err)
	}

	var failedFiles []int64
	if fileID != 0 {
		if err := s.media.Delete(fileID); err != nil {
			log.Warn().Err(err).Int64("file_id", fileID).Int64("variant_id", id).Msg("Failed to delete variant file")
			failedFiles = append(failedFiles, fileID)
		}
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM variants WHERE id = ?`, id); err != nil {
		return fontName, failedFiles, storageError("could not remove the font variant from the database", err)
	}

	if _, err := s.syncVariantCount(fontName); err != nil {
		return fontName, failedFiles, storageError("variant deleted but count synchronization failed", err)
	}
	if err := s.cache.Invalidate(); err != nil {
		return fontName, failedFiles, storageError("variant deleted but css cache invalidation failed", err)
	}

	return fontName, failedFiles, nil
}

// AssignVariant overwrites a variant's selector list and invalidates
// the CSS cache. Trailing whitespace and commas are trimmed from the
// list first.
func (s *Store) AssignVariant(id int64, assignTo string) error {
	assignTo = strings.TrimRight(strings.TrimSpace(assignTo), ",")

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM variants WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return storageError("could not look up the variant", err)
	}
	if !exists {
		return notFoundError("variant not found")
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE variants SET assign_to = ? WHERE id = ?`, assignTo, id); err != nil {
		return storageError("could not assign the font variant", err)
	}

	if err := s.cache.Invalidate(); err != nil {
		return storageError("variant assigned but css cache invalidation failed", err)
	}

	return nil
}

// SyncVariantCount recomputes and persists a font's variant count.
// Exposed for repair; mutations call it automatically.
func (s *Store) SyncVariantCount(fontName string) (int64, error) {
	if fontName == "" {
		return 0, validationError("font name is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncVariantCount(fontName)
}

func (s *Store) syncVariantCount(fontName string) (int64, error) {
	ctx := context.Background()

	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM variants WHERE font_name = ?`, fontName).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count variants: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE fonts SET amount = ? WHERE name = ?`, total, fontName); err != nil {
		return 0, fmt.Errorf("failed to update variant count: %w", err)
	}

	return total, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
