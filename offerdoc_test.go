package offerdoc_test

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioprint/offerdoc"
	"github.com/helioprint/offerdoc/attach"
	"github.com/helioprint/offerdoc/charts"
	"github.com/helioprint/offerdoc/finance"
	"github.com/helioprint/offerdoc/pdfread"
)

// buildBase produces a stand-in for the fixed offer template.
func buildBase(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Text(20, 30, fmt.Sprintf("Template page %d", i))
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func monthly(base float64) []float64 {
	s := make([]float64, 12)
	for i := range s {
		s[i] = base + float64(i)*10
	}
	return s
}

func TestGenerateFullRun(t *testing.T) {
	base := buildBase(t, 8)

	dir := t.TempDir()
	ds := filepath.Join(dir, "inverter.pdf")
	writeAttachment(t, ds, 2)

	price := 18500.0
	data := charts.AnalysisData{
		string(charts.ProductionMonthly):  monthly(300),
		string(charts.ConsumptionMonthly): monthly(250),
		string(charts.AutarkyMonthly):     monthly(40),
	}

	doc, summary, err := offerdoc.Generate(base, data,
		offerdoc.WithFinancing(
			finance.PriceSources{Net: &price},
			finance.Config{
				AnnualRatePct:     4.5,
				TermMonths:        120,
				LeasingFactorPct:  1.1,
				ResidualPct:       10,
				AnnualSavings:     2400,
				AnnualRunningCost: 300,
			},
		),
		offerdoc.WithChartKeys(charts.ProductionMonthly, charts.ConsumptionMonthly, charts.AutarkyMonthly),
		offerdoc.WithChartLayout(offerdoc.TwoPerPage),
		offerdoc.WithDatasheets(attach.PathResolver{"inv": ds}, "inv"),
	)
	require.NoError(t, err)

	assert.Greater(t, doc.PageCount, 8)
	assert.NotEmpty(t, summary.RunID)
	assert.Empty(t, summary.Errors)
	assert.NotEmpty(t, summary.Info)

	parsed, err := pdfread.Parse(doc.Bytes)
	require.NoError(t, err)
	assert.Equal(t, doc.PageCount, parsed.NumPages())
}

func TestGenerateDegradesToBaseDocument(t *testing.T) {
	base := buildBase(t, 8)

	// Nothing computable: no price, no chart data, nothing resolvable.
	doc, summary, err := offerdoc.Generate(base, charts.AnalysisData{},
		offerdoc.WithFinancing(finance.PriceSources{}, finance.Config{TermMonths: 60}),
		offerdoc.WithChartKeys(charts.ProductionMonthly, charts.FeedInMonthly),
		offerdoc.WithDatasheets(attach.PathResolver{}, "inverter", "module"),
		offerdoc.WithCompanyDocuments(attach.PathResolver{}, "terms"),
	)
	require.NoError(t, err)

	assert.Equal(t, 8, doc.PageCount)
	assert.NotEmpty(t, summary.Warnings, "degraded attach and chart stages must leave warnings")

	// A financing chapter that cannot be computed is an error, not a
	// warning: the offer goes out without its central chapter.
	require.NotEmpty(t, summary.Errors)
	assert.Equal(t, "financing", summary.Errors[0].Component)
	assert.Contains(t, summary.Errors[0].Message, "skipped")

	parsed, err := pdfread.Parse(doc.Bytes)
	require.NoError(t, err)
	assert.Equal(t, 8, parsed.NumPages())
}

func TestGenerateChartsFollowAttachments(t *testing.T) {
	base := buildBase(t, 2)

	dir := t.TempDir()
	ds := filepath.Join(dir, "module.pdf")
	writeAttachment(t, ds, 1)

	data := charts.AnalysisData{
		string(charts.ProductionMonthly): monthly(300),
	}
	_, summary, err := offerdoc.Generate(base, data,
		offerdoc.WithChartKeys(charts.ProductionMonthly),
		offerdoc.WithDatasheets(attach.PathResolver{"mod": ds}, "mod"),
	)
	require.NoError(t, err)

	// Chart pages close the document, after every attachment.
	firstChart, firstDatasheet := -1, -1
	for i, n := range summary.Info {
		switch n.Component {
		case "charts":
			if firstChart < 0 {
				firstChart = i
			}
		case "datasheets":
			if firstDatasheet < 0 {
				firstDatasheet = i
			}
		}
	}
	require.GreaterOrEqual(t, firstChart, 0)
	require.GreaterOrEqual(t, firstDatasheet, 0)
	assert.Less(t, firstDatasheet, firstChart)
}

func TestGenerateBareRun(t *testing.T) {
	base := buildBase(t, 3)

	doc, summary, err := offerdoc.Generate(base, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.PageCount)
	assert.Empty(t, summary.Warnings)
}

func TestGenerateEmptyBase(t *testing.T) {
	_, _, err := offerdoc.Generate(nil, nil)
	assert.ErrorIs(t, err, offerdoc.ErrNoBaseDocument)
}

func TestGenerateGarbageBase(t *testing.T) {
	_, _, err := offerdoc.Generate([]byte("not a pdf at all"), nil)
	assert.ErrorIs(t, err, offerdoc.ErrBaseUnreadable)
}

func TestGenerateProtectionLoggedPastTemplateRegion(t *testing.T) {
	base := buildBase(t, 8)

	price := 18500.0
	_, summary, err := offerdoc.Generate(base, nil,
		offerdoc.WithFinancing(
			finance.PriceSources{Net: &price},
			finance.Config{
				AnnualRatePct:     4.5,
				TermMonths:        120,
				LeasingFactorPct:  1.1,
				ResidualPct:       10,
				AnnualSavings:     2400,
				AnnualRunningCost: 300,
			},
		),
	)
	require.NoError(t, err)

	var layoutNotes int
	for _, n := range summary.Info {
		if n.Component == "layout" {
			layoutNotes++
		}
	}
	assert.Greater(t, layoutNotes, 0, "financing after 8 template pages runs under protection")
}

func TestGenerateWithStamps(t *testing.T) {
	base := buildBase(t, 2)

	doc, summary, err := offerdoc.Generate(base, nil,
		offerdoc.WithDraftWatermark(offerdoc.Watermark{Text: "DRAFT"}),
		offerdoc.WithPageNumbers("Page %d of %d"),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.PageCount)
	assert.Empty(t, summary.Errors)

	parsed, err := pdfread.Parse(doc.Bytes)
	require.NoError(t, err)
	assert.Equal(t, 2, parsed.NumPages())
}

func writeAttachment(t *testing.T, path string, pages int) {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Text(20, 30, fmt.Sprintf("Attachment page %d", i))
	}
	require.NoError(t, pdf.OutputFileAndClose(path))
}
