package table

import "fmt"

// Cell is a single cell in a row.
type Cell struct {
	text    string
	colspan int
	style   *CellStyle
}

// Span sets the number of columns this cell spans.
func (c *Cell) Span(n int) *Cell {
	if n > 0 {
		c.colspan = n
	}
	return c
}

// Align sets the horizontal alignment ("L", "C", "R") for this cell.
func (c *Cell) Align(align string) *Cell {
	c.ensureStyle()
	c.style.Align = align
	return c
}

// Fill sets the background color for this cell.
func (c *Cell) Fill(r, g, b int) *Cell {
	c.ensureStyle()
	c.style.FillColor = &RGBColor{r, g, b}
	return c
}

// Bold switches this cell to the bold variant of the table font.
func (c *Cell) Bold() *Cell {
	c.ensureStyle()
	c.style.Font = &FontSpec{Family: "Helvetica", Style: "B", Size: 9}
	return c
}

func (c *Cell) ensureStyle() {
	if c.style == nil {
		c.style = &CellStyle{}
	}
}

// Row is a single table row.
type Row struct {
	cells     []*Cell
	style     *CellStyle
	isHeader  bool
	highlight bool
	minH      float64
}

// Cell appends a text cell and returns it for chaining.
func (r *Row) Cell(text string) *Cell {
	c := &Cell{text: text, colspan: 1}
	r.cells = append(r.cells, c)
	return c
}

// Cellf appends a formatted text cell.
func (r *Row) Cellf(format string, args ...any) *Cell {
	return r.Cell(fmt.Sprintf(format, args...))
}

// Highlight marks the row for the table's highlight style. Offer pages use
// this for the break-even row of the cashflow schedule.
func (r *Row) Highlight() *Row {
	r.highlight = true
	return r
}

// SetStyle applies a style to every cell in the row.
func (r *Row) SetStyle(s CellStyle) *Row {
	r.style = &s
	return r
}

// MinHeight sets a minimum row height in document units.
func (r *Row) MinHeight(h float64) *Row {
	r.minH = h
	return r
}
