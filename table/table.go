package table

import (
	"github.com/jung-kurt/gofpdf"

	"github.com/helioprint/offerdoc/layout"
)

// ColumnDef describes one table column.
type ColumnDef struct {
	Width    float64 // fixed width, 0 means fill remaining space
	MinWidth float64 // lower bound for fill columns
	MaxWidth float64 // upper bound for fill columns, 0 means none
	Align    string  // default alignment for the column
}

// Table is a fluent builder that renders rows into an Fpdf document.
type Table struct {
	pdf     *gofpdf.Fpdf
	guard   *layout.Guard
	name    string
	columns []ColumnDef
	rows    []*Row
	style   Style
	x, y    float64
	width   float64 // 0 means page width minus margins
}

// New creates a table bound to the given document, using the offer house
// style.
func New(pdf *gofpdf.Fpdf) *Table {
	return &Table{pdf: pdf, style: OfferStyle()}
}

// SetName sets the identifier used when the attached guard logs page
// breaks caused by this table.
func (t *Table) SetName(name string) *Table {
	t.name = name
	return t
}

// SetGuard attaches a page guard. When the guard is active its bottom
// margin decides row breaks and each break is recorded in the guard's log.
func (t *Table) SetGuard(g *layout.Guard) *Table {
	t.guard = g
	return t
}

// SetColumns sets the column definitions.
func (t *Table) SetColumns(cols ...ColumnDef) *Table {
	t.columns = cols
	return t
}

// SetColumnWidths sets fixed column widths. A width of 0 fills remaining
// space.
func (t *Table) SetColumnWidths(widths ...float64) *Table {
	t.columns = make([]ColumnDef, len(widths))
	for i, w := range widths {
		t.columns[i] = ColumnDef{Width: w}
	}
	return t
}

// SetStyle replaces the table-wide style.
func (t *Table) SetStyle(s Style) *Table {
	t.style = s
	return t
}

// SetPosition sets the starting position. Unset means the current cursor.
func (t *Table) SetPosition(x, y float64) *Table {
	t.x = x
	t.y = y
	return t
}

// SetWidth sets the total table width.
func (t *Table) SetWidth(w float64) *Table {
	t.width = w
	return t
}

// AddRow appends a body row.
func (t *Table) AddRow() *Row {
	r := &Row{}
	t.rows = append(t.rows, r)
	return r
}

// AddHeaderRow appends a header row. Header rows render first and repeat
// at the top of every page the table spills onto.
func (t *Table) AddHeaderRow() *Row {
	r := &Row{isHeader: true}
	t.rows = append(t.rows, r)
	return r
}

// Height returns the total height the table will occupy, ignoring page
// breaks. Offer pages use it to size protected groups before rendering.
func (t *Table) Height() float64 {
	widths := t.columnWidths()
	var h float64
	for _, r := range t.rows {
		h += t.rowHeight(r, widths)
	}
	return h
}

// Render draws the table.
func (t *Table) Render() error {
	if t.pdf.Err() {
		return t.pdf.Error()
	}

	widths := t.columnWidths()

	startX := t.x
	if startX == 0 {
		startX = t.pdf.GetX()
	}
	if t.y != 0 {
		t.pdf.SetY(t.y)
	}

	var header, body []*Row
	for _, r := range t.rows {
		if r.isHeader {
			header = append(header, r)
		} else {
			body = append(body, r)
		}
	}

	for _, r := range header {
		t.renderRow(r, widths, startX, -1)
	}

	for i, r := range body {
		if t.needsBreak(t.rowHeight(r, widths)) {
			t.pdf.AddPage()
			if t.guard != nil {
				t.guard.SetPage(t.pdf.PageNo())
			}
			for _, hr := range header {
				t.renderRow(hr, widths, startX, -1)
			}
		}
		t.renderRow(r, widths, startX, i)
	}

	return t.pdf.Error()
}

// needsBreak reports whether the next row of the given height requires a
// new page. An active guard owns the decision so the break is logged.
func (t *Table) needsBreak(rowH float64) bool {
	_, pageH := t.pdf.GetPageSize()
	y := t.pdf.GetY()
	if t.guard != nil && t.guard.Active() {
		return t.guard.MaybeBreakBefore(t.name, rowH, pageH-y)
	}
	_, _, _, bMargin := t.pdf.GetMargins()
	return y+rowH > pageH-bMargin
}

func (t *Table) columnWidths() []float64 {
	total := t.width
	if total == 0 {
		pageW, _ := t.pdf.GetPageSize()
		lMargin, _, rMargin, _ := t.pdf.GetMargins()
		total = pageW - lMargin - rMargin
	}

	n := len(t.columns)
	if n == 0 {
		if len(t.rows) > 0 {
			n = len(t.rows[0].cells)
		}
		if n == 0 {
			return nil
		}
		t.columns = make([]ColumnDef, n)
	}

	widths := make([]float64, n)
	fixed := 0.0
	fill := 0
	for i, col := range t.columns {
		if col.Width > 0 {
			widths[i] = col.Width
			fixed += col.Width
		} else {
			fill++
		}
	}
	if fill > 0 {
		remaining := total - fixed
		if remaining < 0 {
			remaining = 0
		}
		each := remaining / float64(fill)
		for i, col := range t.columns {
			if col.Width != 0 {
				continue
			}
			w := each
			if col.MinWidth > 0 && w < col.MinWidth {
				w = col.MinWidth
			}
			if col.MaxWidth > 0 && w > col.MaxWidth {
				w = col.MaxWidth
			}
			widths[i] = w
		}
	}
	return widths
}

func (t *Table) rowHeight(r *Row, widths []float64) float64 {
	h := 5.0
	if r.minH > h {
		h = r.minH
	}
	pad := t.style.CellPadding

	for i, cell := range r.cells {
		if i >= len(widths) {
			break
		}
		cellW := widths[i]
		for j := 1; j < cell.colspan && i+j < len(widths); j++ {
			cellW += widths[i+j]
		}
		contentW := cellW - pad.Left - pad.Right
		if contentW < 1 {
			contentW = 1
		}
		lines := t.pdf.SplitLines([]byte(cell.text), contentW)
		_, fontH := t.pdf.GetFontSize()
		cellH := float64(len(lines))*fontH*1.5 + pad.Top + pad.Bottom
		if cellH > h {
			h = cellH
		}
	}
	return h
}

func (t *Table) renderRow(r *Row, widths []float64, startX float64, bodyIdx int) {
	rowH := t.rowHeight(r, widths)
	pad := t.style.CellPadding

	t.pdf.SetX(startX)
	y := t.pdf.GetY()

	for i, cell := range r.cells {
		if i >= len(widths) {
			break
		}
		cellW := widths[i]
		for j := 1; j < cell.colspan && i+j < len(widths); j++ {
			cellW += widths[i+j]
		}

		style := t.cellStyle(cell, r, bodyIdx)
		x := t.pdf.GetX()

		if style.FillColor != nil {
			t.pdf.SetFillColor(style.FillColor.R, style.FillColor.G, style.FillColor.B)
			t.pdf.Rect(x, y, cellW, rowH, "F")
		}
		if t.style.BorderWidth > 0 {
			bc := t.style.BorderColor
			t.pdf.SetDrawColor(bc.R, bc.G, bc.B)
			t.pdf.SetLineWidth(t.style.BorderWidth)
			t.pdf.Rect(x, y, cellW, rowH, "D")
		}

		if style.TextColor != nil {
			t.pdf.SetTextColor(style.TextColor.R, style.TextColor.G, style.TextColor.B)
		}
		if style.Font != nil {
			t.pdf.SetFont(style.Font.Family, style.Font.Style, style.Font.Size)
		}

		align := "L"
		if style.Align != "" {
			align = style.Align
		} else if i < len(t.columns) && t.columns[i].Align != "" {
			align = t.columns[i].Align
		}

		contentW := cellW - pad.Left - pad.Right
		t.pdf.SetXY(x+pad.Left, y+pad.Top)
		if t.pdf.GetStringWidth(cell.text) > contentW {
			t.pdf.MultiCell(contentW, rowH-pad.Top-pad.Bottom, cell.text, "", align, false)
		} else {
			t.pdf.CellFormat(contentW, rowH-pad.Top-pad.Bottom, cell.text, "", 0, align, false, 0, "")
		}

		t.pdf.SetXY(x+cellW, y)
	}

	t.pdf.SetDrawColor(0, 0, 0)
	t.pdf.SetTextColor(0, 0, 0)
	t.pdf.SetXY(startX, y+rowH)
}

// cellStyle merges table, stripe, highlight, row and cell styles, the
// later layers winning.
func (t *Table) cellStyle(cell *Cell, row *Row, bodyIdx int) CellStyle {
	var result CellStyle
	if t.style.Font != nil {
		result.Font = t.style.Font
	}
	if row.isHeader {
		overlay(&result, t.style.Header)
	} else if bodyIdx >= 0 && t.style.Body != nil {
		if bodyIdx%2 == 0 {
			overlay(&result, &t.style.Body.Even)
		} else {
			overlay(&result, &t.style.Body.Odd)
		}
	}
	if row.highlight {
		overlay(&result, t.style.Highlight)
	}
	overlay(&result, row.style)
	overlay(&result, cell.style)
	return result
}
