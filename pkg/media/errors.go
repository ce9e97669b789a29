package media

import "errors"

var (
	// ErrFileNotFound is returned when the requested file ID has no record.
	ErrFileNotFound = errors.New("media file not found")

	// ErrUnsupportedExtension is returned for filenames outside the font allowlist.
	ErrUnsupportedExtension = errors.New("unsupported file extension")

	// ErrUnsupportedContentType is returned when the sniffed content type is not a font.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrDatabaseError is returned when an index operation fails.
	ErrDatabaseError = errors.New("media database error")
)
