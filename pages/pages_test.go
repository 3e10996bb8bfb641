package pages_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioprint/offerdoc/charts"
	"github.com/helioprint/offerdoc/finance"
	"github.com/helioprint/offerdoc/layout"
	"github.com/helioprint/offerdoc/pages"
	"github.com/helioprint/offerdoc/pdfread"
)

type memLog struct {
	infos, warns []string
}

func (l *memLog) Infof(format string, args ...any) {
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *memLog) Warnf(format string, args ...any) {
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func newDoc() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

func pageCount(t *testing.T, pdf *gofpdf.Fpdf) int {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	doc, err := pdfread.Parse(buf.Bytes())
	require.NoError(t, err)
	return doc.NumPages()
}

func monthly(base float64) []float64 {
	s := make([]float64, 12)
	for i := range s {
		s[i] = base + float64(i)*10
	}
	return s
}

func TestGroupKeys(t *testing.T) {
	all := []charts.Key{
		charts.ProductionMonthly, charts.ConsumptionMonthly, charts.AutarkyMonthly,
		charts.FeedInMonthly, charts.GridPurchaseMonthly, charts.CO2SavingsAnnual,
	}
	// Enough distinct keys for the big cases; duplicates are fine for grouping.
	many := func(n int) []charts.Key {
		keys := make([]charts.Key, n)
		for i := range keys {
			keys[i] = all[i%len(all)]
		}
		return keys
	}

	for _, n := range []int{0, 1, 2, 3, 4, 5, 12, 50} {
		for _, d := range []int{1, 2, 4} {
			t.Run(fmt.Sprintf("n=%d_d=%d", n, d), func(t *testing.T) {
				groups := pages.GroupKeys(many(n), d)

				want := (n + d - 1) / d
				assert.Len(t, groups, want)

				var flat []charts.Key
				for _, g := range groups {
					assert.LessOrEqual(t, len(g), d)
					flat = append(flat, g...)
				}
				assert.Equal(t, many(n), append([]charts.Key{}, flat...))
			})
		}
	}
}

func TestGroupKeysInvalidDensity(t *testing.T) {
	keys := []charts.Key{charts.ProductionMonthly, charts.ConsumptionMonthly, charts.AutarkyMonthly}
	groups := pages.GroupKeys(keys, 3)
	// Unknown density falls back to two per page.
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 1)
}

func TestRenderChartsPageCount(t *testing.T) {
	pdf := newDoc()
	g := layout.NewGuard()
	r := charts.NewRenderer()

	keys := []charts.Key{
		charts.ProductionMonthly, charts.ConsumptionMonthly, charts.AutarkyMonthly,
		charts.FeedInMonthly, charts.GridPurchaseMonthly,
	}
	data := charts.AnalysisData{}
	for _, k := range keys {
		data[string(k)] = monthly(300)
	}

	log := &memLog{}
	n := pages.RenderCharts(pdf, g, r, data, keys, 4, log)

	assert.Equal(t, 2, n)
	assert.Equal(t, 2, pageCount(t, pdf))
	assert.Empty(t, log.warns)
}

func TestRenderChartsOmitsMissingData(t *testing.T) {
	pdf := newDoc()
	g := layout.NewGuard()
	r := charts.NewRenderer()

	keys := []charts.Key{charts.ProductionMonthly, charts.ConsumptionMonthly, charts.FeedInMonthly}
	data := charts.AnalysisData{
		string(charts.ProductionMonthly): monthly(300),
	}

	log := &memLog{}
	n := pages.RenderCharts(pdf, g, r, data, keys, 2, log)

	// Two of three charts have no data: one page, two warnings, no gap slots.
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, pageCount(t, pdf))
	assert.Len(t, log.warns, 2)
	// The summary line counts charts actually drawn, not charts requested.
	require.NotEmpty(t, log.infos)
	assert.Contains(t, log.infos[len(log.infos)-1], "rendered 1 charts on 1 pages")
}

func TestRenderChartsNothingRenderable(t *testing.T) {
	pdf := newDoc()
	pdf.AddPage()
	g := layout.NewGuard()

	log := &memLog{}
	n := pages.RenderCharts(pdf, g, charts.NewRenderer(), charts.AnalysisData{},
		[]charts.Key{charts.ProductionMonthly}, 2, log)

	assert.Equal(t, 0, n)
	assert.Equal(t, 1, pageCount(t, pdf))
	assert.Len(t, log.warns, 1)
}

// addBasePages simulates an already imported template region so appended
// content starts on the first protected page.
func addBasePages(pdf *gofpdf.Fpdf) {
	for i := 0; i < layout.BasePages; i++ {
		pdf.AddPage()
	}
}

func TestRenderChartsGuardRecordsChartGroups(t *testing.T) {
	pdf := newDoc()
	addBasePages(pdf)
	g := layout.NewGuard()

	data := charts.AnalysisData{
		string(charts.ProductionMonthly):  monthly(300),
		string(charts.ConsumptionMonthly): monthly(200),
	}
	pages.RenderCharts(pdf, g, charts.NewRenderer(), data,
		[]charts.Key{charts.ProductionMonthly, charts.ConsumptionMonthly}, 1, &memLog{})

	var wrapped int
	for _, e := range g.Entries() {
		if e.Action == layout.WrappedAtomic {
			wrapped++
			assert.Greater(t, e.Page, layout.BasePages)
		}
	}
	assert.Equal(t, 2, wrapped)
}

func TestRenderChartsTemplateRegionUnguarded(t *testing.T) {
	pdf := newDoc()
	g := layout.NewGuard()

	data := charts.AnalysisData{string(charts.ProductionMonthly): monthly(300)}
	pages.RenderCharts(pdf, g, charts.NewRenderer(), data,
		[]charts.Key{charts.ProductionMonthly}, 1, &memLog{})

	// The first chart page of an empty document is page 1, inside the
	// template region, so the guard records nothing.
	assert.Empty(t, g.Entries())
}

func financingConfig() finance.Config {
	return finance.Config{
		AnnualRatePct:     4.5,
		TermMonths:        120,
		LeasingFactorPct:  1.1,
		ResidualPct:       10,
		HorizonYears:      20,
		AnnualSavings:     2400,
		AnnualRunningCost: 300,
	}
}

func TestRenderFinancing(t *testing.T) {
	pdf := newDoc()
	g := layout.NewGuard()

	price := 18500.0
	log := &memLog{}
	res, err := pages.RenderFinancing(pdf, g,
		finance.PriceSources{Net: &price}, financingConfig(), log)
	require.NoError(t, err)

	assert.InDelta(t, 18500.0, res.Price, 0.001)
	assert.Greater(t, res.Credit.MonthlyRate, 0.0)
	assert.Greater(t, res.Leasing.MonthlyRate, 0.0)
	// 18500 / (2400-300) per year: break-even in year 9.
	assert.Equal(t, 9, res.AmortizationYear)
	assert.NotEmpty(t, res.Recommended)
	assert.GreaterOrEqual(t, res.Pages, 1)
	assert.GreaterOrEqual(t, pageCount(t, pdf), 1)
}

func TestRenderFinancingNoPrice(t *testing.T) {
	pdf := newDoc()
	g := layout.NewGuard()

	_, err := pages.RenderFinancing(pdf, g, finance.PriceSources{}, financingConfig(), &memLog{})
	require.ErrorIs(t, err, finance.ErrNoPrice)
	assert.Equal(t, 0, pdf.PageCount())
}

func TestRenderFinancingInvalidTerm(t *testing.T) {
	pdf := newDoc()
	g := layout.NewGuard()

	price := 18500.0
	cfg := financingConfig()
	cfg.TermMonths = 0

	_, err := pages.RenderFinancing(pdf, g, finance.PriceSources{Net: &price}, cfg, &memLog{})
	require.ErrorIs(t, err, finance.ErrInvalidTerm)
}

func TestRenderFinancingStrictGroups(t *testing.T) {
	pdf := newDoc()
	addBasePages(pdf)
	g := layout.NewGuard()

	price := 18500.0
	_, err := pages.RenderFinancing(pdf, g, finance.PriceSources{Net: &price}, financingConfig(), &memLog{})
	require.NoError(t, err)

	var strict int
	for _, e := range g.Entries() {
		if e.Action == layout.WrappedAtomic && e.Detail == "strict financing group" {
			strict++
		}
	}
	// Credit, leasing, schedule, comparison: all four wrapped strictly.
	assert.Equal(t, 4, strict)
}

func TestRenderFinancingNeverAmortizes(t *testing.T) {
	pdf := newDoc()
	g := layout.NewGuard()

	price := 50000.0
	cfg := financingConfig()
	cfg.AnnualSavings = 500

	log := &memLog{}
	res, err := pages.RenderFinancing(pdf, g, finance.PriceSources{Net: &price}, cfg, log)
	require.NoError(t, err)
	assert.Equal(t, 0, res.AmortizationYear)
	assert.NotEmpty(t, log.warns)
}
