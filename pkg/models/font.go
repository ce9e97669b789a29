package models

// Font represents a named font family owned by the installation.
// The name doubles as the CSS font-family value and is the key that
// Variants reference; renaming a font is not supported.
type Font struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	// Amount is a denormalized count of the font's variants. It is
	// recomputed after every variant insert or delete and must never be
	// trusted as authoritative.
	Amount int64 `json:"amount"`

	// FontData is reserved metadata; the service stores it verbatim and
	// does not interpret it.
	FontData string `json:"font_data,omitempty"`
}
