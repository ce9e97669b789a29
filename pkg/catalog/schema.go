package catalog

// Schema contains the SQL statements to create the font catalog tables.
const Schema = `
-- Fonts table: one row per named font family
CREATE TABLE IF NOT EXISTS fonts (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    name      TEXT NOT NULL UNIQUE,
    amount    INTEGER NOT NULL DEFAULT 0,
    font_data TEXT
);

-- Variants table: one row per weight/style file of a font.
-- The relation to fonts is by name, not id; renames are unsupported.
CREATE TABLE IF NOT EXISTS variants (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    variant   TEXT NOT NULL,
    font_name TEXT NOT NULL,
    file_url  TEXT NOT NULL DEFAULT '',
    file_id   INTEGER NOT NULL DEFAULT 0,
    assign_to TEXT,
    UNIQUE (font_name, variant)
);

-- Indexes for performance
CREATE INDEX IF NOT EXISTS idx_variants_font_name ON variants(font_name);
`

// validVariants is the fixed set of 18 canonical weight/style tokens.
var validVariants = map[string]bool{
	"100": true, "100italic": true,
	"200": true, "200italic": true,
	"300": true, "300italic": true,
	"400": true, "400italic": true,
	"500": true, "500italic": true,
	"600": true, "600italic": true,
	"700": true, "700italic": true,
	"800": true, "800italic": true,
	"900": true, "900italic": true,
}

// ValidVariant reports whether the token is one of the canonical
// weight/style values.
func ValidVariant(variant string) bool {
	return validVariants[variant]
}
