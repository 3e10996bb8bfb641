// Package table builds tabular sections of an offer document.
//
// It wraps an Fpdf document with a fluent builder supporting auto-width
// columns, repeating header rows, zebra striping, row highlighting and
// page breaks that defer to a layout guard when one is attached.
package table

// RGBColor is an RGB color value.
type RGBColor struct {
	R, G, B int
}

// FontSpec names a font for cell text.
type FontSpec struct {
	Family string
	Style  string  // "", "B", "I", "BI"
	Size   float64 // points
}

// Padding is the spacing inside a cell.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// UniformPadding returns a Padding with the same value on all sides.
func UniformPadding(v float64) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// CellStyle describes the appearance of one or more cells. Nil pointer
// fields inherit from the enclosing row, stripe or table style.
type CellStyle struct {
	FillColor *RGBColor
	TextColor *RGBColor
	Font      *FontSpec
	Align     string // "L", "C", "R"
}

// Stripes holds the alternating body row styles.
type Stripes struct {
	Even CellStyle
	Odd  CellStyle
}

// Style is the table-wide appearance.
type Style struct {
	BorderWidth float64
	BorderColor RGBColor
	Header      *CellStyle
	Body        *Stripes
	Highlight   *CellStyle // applied to rows marked with Highlight()
	CellPadding Padding
	Font        *FontSpec
}

// OfferStyle returns the house style used by the generated offer pages:
// a filled header band, light zebra striping and an amber highlight row.
func OfferStyle() Style {
	return Style{
		BorderWidth: 0.2,
		BorderColor: RGBColor{180, 180, 180},
		Header: &CellStyle{
			FillColor: &RGBColor{236, 120, 27},
			TextColor: &RGBColor{255, 255, 255},
			Font:      &FontSpec{Family: "Helvetica", Style: "B", Size: 10},
		},
		Body: &Stripes{
			Even: CellStyle{FillColor: &RGBColor{255, 255, 255}},
			Odd:  CellStyle{FillColor: &RGBColor{245, 245, 245}},
		},
		Highlight: &CellStyle{
			FillColor: &RGBColor{255, 223, 168},
			Font:      &FontSpec{Family: "Helvetica", Style: "B", Size: 9},
		},
		CellPadding: UniformPadding(1.2),
		Font:        &FontSpec{Family: "Helvetica", Style: "", Size: 9},
	}
}

// overlay copies the set fields of src onto dst.
func overlay(dst *CellStyle, src *CellStyle) {
	if src == nil {
		return
	}
	if src.FillColor != nil {
		dst.FillColor = src.FillColor
	}
	if src.TextColor != nil {
		dst.TextColor = src.TextColor
	}
	if src.Font != nil {
		dst.Font = src.Font
	}
	if src.Align != "" {
		dst.Align = src.Align
	}
}
