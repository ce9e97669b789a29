// Package media hosts font binaries on the local filesystem and tracks
// them in a SQLite index, standing in for the platform attachment store
// the catalog and backup engine depend on.
package media

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"localfonts/pkg/log"
)

// StoredFile describes a hosted font binary.
type StoredFile struct {
	ID          int64  `json:"file_id"`
	Name        string `json:"name"`
	URL         string `json:"file_url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Library stores font files under a directory and indexes them by ID.
type Library struct {
	db      *sql.DB
	fs      afero.Fs
	dir     string
	baseURL string
	mu      sync.Mutex
}

// New creates a Library writing files to dir and serving them under
// baseURL + "/uploads/". It creates the directory and the index table.
func New(db *sql.DB, fs afero.Fs, dir, baseURL string) (*Library, error) {
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), Schema); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize schema: %w", ErrDatabaseError, err)
	}

	return &Library{
		db:      db,
		fs:      fs,
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Dir returns the directory hosted files live in.
func (l *Library) Dir() string {
	return l.dir
}

// Save validates and stores a font binary, returning its new identity.
// The stored name is a fresh UUID so uploads never collide; the
// original name survives only in the index and the URL extension.
func (l *Library) Save(reader io.Reader, filename string) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType := SniffContentType(head)
	if !AllowedContentTypes[contentType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	storedName := uuid.New().String() + ext
	destPath := filepath.Join(l.dir, storedName)

	size, err := l.writeFile(destPath, head, reader)
	if err != nil {
		return nil, err
	}

	url := l.baseURL + "/uploads/" + storedName

	l.mu.Lock()
	defer l.mu.Unlock()

	result, err := l.db.ExecContext(context.Background(),
		`INSERT INTO media_files (name, stored_name, url, size, content_type) VALUES (?, ?, ?, ?, ?)`,
		filepath.Base(filename), storedName, url, size, contentType,
	)
	if err != nil {
		// The index row is the source of truth; without it the file is
		// unreachable, so remove it again.
		if removeErr := l.fs.Remove(destPath); removeErr != nil {
			log.Warn().Err(removeErr).Str("path", destPath).Msg("Failed to remove orphaned upload")
		}
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	return &StoredFile{
		ID:          id,
		Name:        filepath.Base(filename),
		URL:         url,
		Size:        size,
		ContentType: contentType,
	}, nil
}

func (l *Library) writeFile(destPath string, head []byte, rest io.Reader) (int64, error) {
	dst, err := l.fs.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), rest))
	if err != nil {
		_ = dst.Close()
		_ = l.fs.Remove(destPath)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return 0, fmt.Errorf("failed to close file: %w", err)
	}

	return written, nil
}

// Delete removes the index row and the physical file. The row is
// removed even when the physical delete fails, in which case the
// filesystem error is returned so callers can record it.
func (l *Library) Delete(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx := context.Background()

	var storedName string
	err := l.db.QueryRowContext(ctx, `SELECT stored_name FROM media_files WHERE id = ?`, id).Scan(&storedName)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrFileNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	if _, err := l.db.ExecContext(ctx, `DELETE FROM media_files WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	if err := l.fs.Remove(filepath.Join(l.dir, storedName)); err != nil {
		return fmt.Errorf("failed to remove file %s: %w", storedName, err)
	}

	return nil
}

// ResolveURL returns the public URL of a stored file.
func (l *Library) ResolveURL(id int64) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var url string
	err := l.db.QueryRowContext(context.Background(), `SELECT url FROM media_files WHERE id = ?`, id).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrFileNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	return url, nil
}

// SniffContentType detects the content type from a file's leading
// bytes. The WHATWG sniffing table behind http.DetectContentType
// recognizes every font format the allowlist accepts.
func SniffContentType(head []byte) string {
	contentType := http.DetectContentType(head)
	// DetectContentType may append a charset suffix for text fallbacks.
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return contentType
}
