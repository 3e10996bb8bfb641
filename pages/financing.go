package pages

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/helioprint/offerdoc/finance"
	"github.com/helioprint/offerdoc/layout"
	"github.com/helioprint/offerdoc/table"
)

// FinancingResult summarizes what the financing chapter rendered.
type FinancingResult struct {
	Price            float64
	Credit           finance.Figures
	Leasing          finance.Figures
	AmortizationYear int
	Recommended      string
	Pages            int
}

// RenderFinancing appends the financing chapter: credit and leasing
// figures, the year-by-year cashflow schedule with the break-even row
// highlighted, and the closing scenario comparison. Every table is a
// strict group on the guard so no financial disclosure is torn across a
// page boundary silently.
//
// Price resolution failing is the one fatal condition: without a price no
// figure in the chapter is computable, so the caller skips the chapter and
// records the warning.
func RenderFinancing(pdf *gofpdf.Fpdf, g *layout.Guard, src finance.PriceSources, cfg finance.Config, log Logger) (FinancingResult, error) {
	price, err := finance.ResolvePrice(src)
	if err != nil {
		return FinancingResult{}, fmt.Errorf("pages: financing: %w", err)
	}
	credit, err := finance.Annuity(price, cfg.AnnualRatePct, cfg.TermMonths)
	if err != nil {
		return FinancingResult{}, fmt.Errorf("pages: financing: credit: %w", err)
	}
	leasing, err := finance.Leasing(price, cfg)
	if err != nil {
		return FinancingResult{}, fmt.Errorf("pages: financing: leasing: %w", err)
	}

	schedule := finance.Cashflow(price, cfg)
	amort := finance.AmortizationYear(schedule)
	scenarios := finance.Compare(price, credit, leasing)

	pdf.AddPage()
	g.SetPage(pdf.PageNo())
	first := pdf.PageNo()

	writeHeading(pdf, "Financing & profitability")

	sections := []struct {
		id    string
		title string
		build func() *table.Table
	}{
		{"financing_credit", "Credit financing", func() *table.Table {
			return creditTable(pdf, g, price, cfg, credit)
		}},
		{"financing_leasing", "Leasing", func() *table.Table {
			return leasingTable(pdf, g, price, cfg, leasing)
		}},
		{"cashflow_schedule", "Cashflow and amortization", func() *table.Table {
			return scheduleTable(pdf, g, schedule)
		}},
		{"scenario_comparison", "Scenario comparison", func() *table.Table {
			return comparisonTable(pdf, g, scenarios)
		}},
	}

	for _, s := range sections {
		if err := renderSection(pdf, g, s.id, s.title, s.build()); err != nil {
			return FinancingResult{}, fmt.Errorf("pages: financing: %s: %w", s.id, err)
		}
	}

	if amort > 0 {
		log.Infof("installation amortizes in year %d", amort)
	} else {
		log.Warnf("installation does not amortize within %d years", len(schedule))
	}

	return FinancingResult{
		Price:            price,
		Credit:           credit,
		Leasing:          leasing,
		AmortizationYear: amort,
		Recommended:      scenarios[0].Name,
		Pages:            pdf.PageNo() - first + 1,
	}, nil
}

// renderSection places one titled table under guard protection. The group
// is strict; if it is too tall even for a full page the guard waives
// atomicity and the heading is instead bound to the first rows so it never
// strands at a page bottom.
func renderSection(pdf *gofpdf.Fpdf, g *layout.Guard, id, title string, tbl *table.Table) error {
	_, pageH := pdf.GetPageSize()
	groupH := headingHeight + tbl.Height() + sectionGap

	node := g.WrapFinancing(layout.Group{{Kind: layout.KindFinancing, ID: id, Height: groupH}})
	node = g.HandleOversized(node, pageH-2*pageMargin)

	if node.Atomic {
		if g.MaybeBreakBefore(id, groupH, pageH-pdf.GetY()) {
			pdf.AddPage()
			g.SetPage(pdf.PageNo())
		}
	} else {
		pair := g.PreventOrphanHeading(
			layout.Element{Kind: layout.KindHeading, ID: id + "_heading", Height: headingHeight},
			layout.Element{Kind: layout.KindTable, ID: id, Height: 3 * 6.0},
		)
		if g.MaybeBreakBefore(pair.Group.ID(), pair.Group.Height(), pageH-pdf.GetY()) {
			pdf.AddPage()
			g.SetPage(pdf.PageNo())
		}
	}

	writeSubheading(pdf, title)
	if err := tbl.Render(); err != nil {
		return err
	}
	pdf.Ln(sectionGap)
	return nil
}

func creditTable(pdf *gofpdf.Fpdf, g *layout.Guard, price float64, cfg finance.Config, f finance.Figures) *table.Table {
	tbl := table.New(pdf).SetGuard(g).SetName("financing_credit").SetColumnWidths(90, 0)
	addKV(tbl, "Purchase price", eur(price))
	addKV(tbl, "Nominal annual rate", fmt.Sprintf("%.2f %%", cfg.AnnualRatePct))
	addKV(tbl, "Term", fmt.Sprintf("%d months", cfg.TermMonths))
	addKV(tbl, "Monthly payment", eur(f.MonthlyRate))
	addKV(tbl, "Total cost", eur(f.TotalCost))
	addKV(tbl, "Total interest", eur(f.TotalInterest))
	return tbl
}

func leasingTable(pdf *gofpdf.Fpdf, g *layout.Guard, price float64, cfg finance.Config, f finance.Figures) *table.Table {
	tbl := table.New(pdf).SetGuard(g).SetName("financing_leasing").SetColumnWidths(90, 0)
	addKV(tbl, "Monthly leasing rate", eur(f.MonthlyRate))
	addKV(tbl, "Term", fmt.Sprintf("%d months", cfg.TermMonths))
	addKV(tbl, "Residual value", eur(price*cfg.ResidualPct/100))
	addKV(tbl, "Total cost", eur(f.TotalCost))
	return tbl
}

func scheduleTable(pdf *gofpdf.Fpdf, g *layout.Guard, rows []finance.CashflowRow) *table.Table {
	tbl := table.New(pdf).SetGuard(g).SetName("cashflow_schedule").
		SetColumns(
			table.ColumnDef{Width: 20, Align: "C"},
			table.ColumnDef{Align: "R"},
			table.ColumnDef{Align: "R"},
			table.ColumnDef{Align: "R"},
			table.ColumnDef{Align: "R"},
		)
	hdr := tbl.AddHeaderRow()
	hdr.Cell("Year")
	hdr.Cell("Savings")
	hdr.Cell("Running cost")
	hdr.Cell("Net")
	hdr.Cell("Balance")

	for _, r := range rows {
		row := tbl.AddRow()
		if r.BreakEven {
			row.Highlight()
		}
		row.Cellf("%d", r.Year)
		row.Cell(eur(r.Savings))
		row.Cell(eur(r.RunningCost))
		row.Cell(eur(r.Net))
		row.Cell(eur(r.Cumulative))
	}
	return tbl
}

func comparisonTable(pdf *gofpdf.Fpdf, g *layout.Guard, scenarios []finance.Scenario) *table.Table {
	tbl := table.New(pdf).SetGuard(g).SetName("scenario_comparison").SetColumnWidths(90, 0)
	hdr := tbl.AddHeaderRow()
	hdr.Cell("Scenario")
	hdr.Cell("Total effective cost").Align("R")

	for i, s := range scenarios {
		row := tbl.AddRow()
		name := s.Name
		if i == 0 {
			name += " (recommended)"
			row.Highlight()
		}
		row.Cell(name)
		row.Cell(eur(s.TotalCost)).Align("R")
	}
	return tbl
}

func addKV(tbl *table.Table, label, value string) {
	row := tbl.AddRow()
	row.Cell(label)
	row.Cell(value).Align("R")
}

func eur(v float64) string {
	return fmt.Sprintf("%.2f EUR", v)
}

func writeHeading(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(236, 120, 27)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Ln(2)
}

func writeSubheading(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.Ln(1)
}
