package models

// Variant represents one physical font file holding a specific
// weight/style combination of a Font. The (FontName, Variant) pair is
// unique.
type Variant struct {
	ID int64 `json:"id"`

	// Variant is one of the 18 canonical weight/style tokens, e.g.
	// "400" or "700italic".
	Variant string `json:"variant"`

	// FontName references Font.Name, not Font.ID.
	FontName string `json:"font_name"`

	// FileURL is the public URL of the hosted font binary.
	FileURL string `json:"file_url"`

	// FileID identifies the backing file in the media library and is
	// used to delete the physical file when the variant is removed.
	FileID int64 `json:"file_id"`

	// AssignTo is a comma-separated CSS selector list. Empty means the
	// variant is uploaded but not wired to any CSS.
	AssignTo string `json:"assign_to"`
}
