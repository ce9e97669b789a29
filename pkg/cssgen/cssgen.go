// Package cssgen compiles assigned font variants into @font-face and
// selector CSS rules.
package cssgen

import (
	"net/url"
	"path"
	"strings"

	"localfonts/pkg/models"
)

// fontFormats maps a file extension to the CSS src format() hint.
// Unknown extensions fall back to woff2.
var fontFormats = map[string]string{
	"woff2": "woff2",
	"woff":  "woff",
	"ttf":   "truetype",
	"otf":   "opentype",
	"eot":   "embedded-opentype",
}

const defaultFormat = "woff2"

// Filter post-processes a generated CSS block before it is emitted.
type Filter func(css string, variant models.Variant) string

// Renderer turns variant records into CSS text. The optional filters
// let callers rewrite the @font-face and selector blocks before
// concatenation.
type Renderer struct {
	FontFaceFilter Filter
	SelectorFilter Filter
}

// Weight derives the font-weight value by stripping every non-digit
// character from the variant token ("700italic" -> "700").
func Weight(variant string) string {
	var b strings.Builder
	for _, r := range variant {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Style derives the font-style value from the variant token.
func Style(variant string) string {
	if strings.Contains(variant, "italic") {
		return "italic"
	}
	return "normal"
}

// Format derives the src format() hint from the file URL's extension.
func Format(fileURL string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(urlPath(fileURL)), "."))
	if format, ok := fontFormats[ext]; ok {
		return format
	}
	return defaultFormat
}

func urlPath(fileURL string) string {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return fileURL
	}
	return parsed.Path
}

// RenderVariant generates the @font-face rule and the selector rule for
// one variant. A variant missing any required field contributes no CSS.
func (r *Renderer) RenderVariant(v models.Variant) string {
	if v.FontName == "" || v.Variant == "" || v.FileURL == "" || v.AssignTo == "" {
		return ""
	}

	weight := Weight(v.Variant)
	style := Style(v.Variant)
	format := Format(v.FileURL)

	var face strings.Builder
	face.WriteString("@font-face {\n")
	face.WriteString("    font-family: '" + v.FontName + "';\n")
	face.WriteString("    font-weight: " + weight + ";\n")
	face.WriteString("    font-style: " + style + ";\n")
	face.WriteString("    src: url('" + v.FileURL + "') format('" + format + "');\n")
	face.WriteString("    font-display: swap;\n")
	face.WriteString("}\n")

	output := face.String()
	if r.FontFaceFilter != nil {
		output = r.FontFaceFilter(output, v)
	}

	var selector strings.Builder
	selector.WriteString(v.AssignTo + " {\n")
	selector.WriteString("    font-family: '" + v.FontName + "', sans-serif;\n")
	selector.WriteString("    font-weight: " + weight + ";\n")
	selector.WriteString("    font-style: " + style + ";\n")
	selector.WriteString("}\n")

	block := selector.String()
	if r.SelectorFilter != nil {
		block = r.SelectorFilter(block, v)
	}

	return output + block
}

// RenderAll concatenates the CSS of every variant in the given order.
// Zero assigned variants yield an empty stylesheet.
func (r *Renderer) RenderAll(variants []models.Variant) string {
	var b strings.Builder
	for _, v := range variants {
		b.WriteString(r.RenderVariant(v))
	}
	return b.String()
}
