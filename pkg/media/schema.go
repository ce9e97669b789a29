package media

// Schema contains the SQL statements to create the media file index.
const Schema = `
-- Files table: maps file IDs to hosted font binaries on disk
CREATE TABLE IF NOT EXISTS media_files (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT NOT NULL,
    stored_name  TEXT NOT NULL,
    url          TEXT NOT NULL,
    size         INTEGER NOT NULL,
    content_type TEXT NOT NULL,
    created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// AllowedExtensions is the set of upload file extensions the service
// accepts, matching the five font types registered with the host.
var AllowedExtensions = map[string]bool{
	".woff":  true,
	".woff2": true,
	".ttf":   true,
	".otf":   true,
	".eot":   true,
}

// AllowedContentTypes is the set of sniffed content types accepted for
// font binaries, including legacy aliases still emitted by some hosts.
var AllowedContentTypes = map[string]bool{
	"font/ttf":                      true,
	"font/otf":                      true,
	"font/woff":                     true,
	"font/woff2":                    true,
	"font/sfnt":                     true,
	"font/collection":               true,
	"application/font-woff":         true,
	"application/font-woff2":        true,
	"application/x-font-ttf":        true,
	"application/x-font-otf":        true,
	"application/x-font-woff":       true,
	"application/x-font-woff2":      true,
	"application/vnd.ms-fontobject": true,
	"application/font-sfnt":         true,
}

// MaxFileSize caps uploaded font binaries at 30MB.
const MaxFileSize = 30 * 1024 * 1024
