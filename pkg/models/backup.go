package models

// BackupPayload is the flat catalog snapshot exchanged between
// installations: every font record plus every variant record.
type BackupPayload struct {
	Fonts    []Font    `json:"fonts"`
	Variants []Variant `json:"variants"`
}

// RestoreReport summarizes a restore run. Skips are not errors: a
// variant whose file cannot be fetched or validated is skipped and the
// rest of the payload is still processed.
type RestoreReport struct {
	FontsRestored    int `json:"fonts_restored"`
	FontsSkipped     int `json:"fonts_skipped"`
	VariantsRestored int `json:"variants_restored"`
	VariantsSkipped  int `json:"variants_skipped"`
}
