package table_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioprint/offerdoc/layout"
	"github.com/helioprint/offerdoc/pdfread"
	"github.com/helioprint/offerdoc/table"
)

func newDoc() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.AddPage()
	return pdf
}

func parse(t *testing.T, pdf *gofpdf.Fpdf) *pdfread.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	doc, err := pdfread.Parse(buf.Bytes())
	require.NoError(t, err)
	return doc
}

func TestRenderBasicTable(t *testing.T) {
	pdf := newDoc()

	tbl := table.New(pdf).SetColumnWidths(60, 0, 40)
	hdr := tbl.AddHeaderRow()
	hdr.Cell("Position")
	hdr.Cell("Description")
	hdr.Cell("Amount").Align("R")
	for i := 1; i <= 5; i++ {
		row := tbl.AddRow()
		row.Cellf("Item %d", i)
		row.Cell("Photovoltaic component")
		row.Cellf("%.2f EUR", float64(i)*100).Align("R")
	}

	require.NoError(t, tbl.Render())
	assert.Equal(t, 1, parse(t, pdf).NumPages())
}

func TestTableHeight(t *testing.T) {
	pdf := newDoc()

	tbl := table.New(pdf).SetColumnWidths(50, 50)
	tbl.AddHeaderRow().Cell("Year")
	for i := 0; i < 10; i++ {
		tbl.AddRow().Cellf("%d", i)
	}

	h := tbl.Height()
	assert.Greater(t, h, 0.0)

	// A table with more rows must not be shorter.
	tbl.AddRow().Cell("extra")
	assert.Greater(t, tbl.Height(), h)
}

func TestLongTableSpillsPages(t *testing.T) {
	pdf := newDoc()

	tbl := table.New(pdf).SetColumnWidths(40, 0)
	tbl.AddHeaderRow().Cell("Row")
	for i := 0; i < 80; i++ {
		tbl.AddRow().MinHeight(6).Cellf("row %d", i)
	}

	require.NoError(t, tbl.Render())
	assert.Greater(t, parse(t, pdf).NumPages(), 1)
}

func TestGuardDecidesBreaks(t *testing.T) {
	pdf := newDoc()

	g := layout.NewGuard()
	g.SetPage(layout.BasePages + 1)

	tbl := table.New(pdf).
		SetName("cashflow_schedule").
		SetGuard(g).
		SetColumnWidths(40, 0)
	tbl.AddHeaderRow().Cell("Year")
	for i := 0; i < 80; i++ {
		tbl.AddRow().MinHeight(6).Cellf("%d", i)
	}

	require.NoError(t, tbl.Render())
	assert.Greater(t, parse(t, pdf).NumPages(), 1)

	var breaks int
	for _, e := range g.Entries() {
		if e.Action == layout.PageBreakInserted {
			breaks++
			assert.Equal(t, "cashflow_schedule", e.ElementID)
		}
	}
	assert.Greater(t, breaks, 0, "guard should have recorded the first break")
}

func TestHighlightRowRenders(t *testing.T) {
	pdf := newDoc()

	tbl := table.New(pdf).SetColumnWidths(30, 30, 30)
	tbl.AddHeaderRow().Cell("Year")
	tbl.AddRow().Cell("8")
	tbl.AddRow().Highlight().Cell("9")
	tbl.AddRow().Cell("10")

	require.NoError(t, tbl.Render())
	assert.Equal(t, 1, parse(t, pdf).NumPages())
}

func TestColspan(t *testing.T) {
	pdf := newDoc()

	tbl := table.New(pdf).SetColumnWidths(40, 40, 40)
	row := tbl.AddRow()
	row.Cell("Total investment").Span(2).Bold()
	row.Cell("18500.00 EUR").Align("R")

	require.NoError(t, tbl.Render())
	assert.False(t, pdf.Err())
}

func ExampleTable() {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.AddPage()

	tbl := table.New(pdf).SetColumnWidths(60, 0)
	hdr := tbl.AddHeaderRow()
	hdr.Cell("Scenario")
	hdr.Cell("Total cost").Align("R")
	cash := tbl.AddRow()
	cash.Cell("Cash purchase")
	cash.Cellf("%.2f EUR", 18500.0).Align("R")
	credit := tbl.AddRow()
	credit.Cell("Credit")
	credit.Cellf("%.2f EUR", 21340.55).Align("R")

	if err := tbl.Render(); err != nil {
		fmt.Println("render:", err)
	}
}
