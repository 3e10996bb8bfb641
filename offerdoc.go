// Package offerdoc assembles extended solar offer documents. A generation
// run takes a fixed base document, appends the financing chapter, external
// PDF attachments, and the selected analysis charts, and returns the
// finished document together with a structured run log.
//
// The pipeline degrades instead of failing: any stage that cannot do its
// work is skipped with a log entry, and the run always produces a
// document. Only an unusable base document aborts a run.
package offerdoc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"github.com/helioprint/offerdoc/attach"
	"github.com/helioprint/offerdoc/charts"
	"github.com/helioprint/offerdoc/layout"
	"github.com/helioprint/offerdoc/pages"
	"github.com/helioprint/offerdoc/pdfread"
)

// ptToMM converts PDF points to millimeters.
const ptToMM = 25.4 / 72.0

// Document is a finished offer.
type Document struct {
	Bytes     []byte
	PageCount int
}

// Generate runs the assembly pipeline over the base document. The stage
// order is fixed: base pages, financing chapter, datasheets, company
// documents, chart pages. Degradations are reported through the returned
// LogSummary; the error return is reserved for an unusable base document
// or a failed final write.
func Generate(base []byte, data charts.AnalysisData, opts ...Option) (Document, LogSummary, error) {
	cfg := newRunConfig(opts...)
	log := newRunLog(cfg.logger)

	if len(base) == 0 {
		return Document{}, log.Summary(), ErrNoBaseDocument
	}
	baseDoc, err := pdfread.Parse(base)
	if err != nil {
		return Document{}, log.Summary(), fmt.Errorf("%w: %v", ErrBaseUnreadable, err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 9)

	if err := importBase(pdf, base, baseDoc.NumPages()); err != nil {
		return Document{}, log.Summary(), err
	}
	log.Scope("base").Infof("imported %d template pages", baseDoc.NumPages())

	guard := layout.NewGuard()
	guard.SetPage(pdf.PageNo())
	renderer := charts.NewRenderer()

	runStage(log, "financing", func() {
		if cfg.financing == nil {
			return
		}
		slog := log.Scope("financing")
		res, err := pages.RenderFinancing(pdf, guard, cfg.financing.sources, cfg.financing.config, slog)
		if err != nil {
			slog.Errorf("chapter skipped: %v", err)
			return
		}
		slog.Infof("chapter on %d pages, recommended scenario: %s", res.Pages, res.Recommended)
	})

	runStage(log, "datasheets", func() {
		if cfg.datasheetSrc == nil || len(cfg.datasheets) == 0 {
			return
		}
		attach.AppendAll(pdf, cfg.datasheetSrc, cfg.datasheets, log.Scope("datasheets"))
	})

	runStage(log, "documents", func() {
		if cfg.documentSrc == nil || len(cfg.documents) == 0 {
			return
		}
		attach.AppendAll(pdf, cfg.documentSrc, cfg.documents, log.Scope("documents"))
	})

	runStage(log, "charts", func() {
		if len(cfg.chartKeys) == 0 {
			return
		}
		pages.RenderCharts(pdf, guard, renderer, data, cfg.chartKeys, int(cfg.chartLayout), log.Scope("charts"))
	})

	for _, e := range guard.Entries() {
		log.Scope("layout").Infof("page %d: %s %s (%s)", e.Page, e.Action, e.ElementID, e.Detail)
	}

	// A run never emits an empty document.
	if pdf.PageCount() == 0 {
		pdf.AddPage()
	}

	applyStamps(pdf, cfg)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, log.Summary(), fmt.Errorf("offerdoc: writing output: %w", err)
	}
	return Document{Bytes: buf.Bytes(), PageCount: pdf.PageCount()}, log.Summary(), nil
}

// runStage runs one pipeline stage, converting a panic into an error note
// so later stages still run.
func runStage(log *RunLog, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Scope(name).Errorf("%v", newStageError(name, fmt.Errorf("%v", r)))
		}
	}()
	fn()
}

// importBase copies every page of the base document into the target as an
// imported template. The import library panics on malformed input, which
// is converted into ErrBaseUnreadable here.
func importBase(pdf *gofpdf.Fpdf, base []byte, numPages int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: importing pages: %v", ErrBaseUnreadable, r)
		}
	}()

	imp := gofpdi.NewImporter()
	var rs io.ReadSeeker = bytes.NewReader(base)
	for i := 1; i <= numPages; i++ {
		tpl := imp.ImportPageFromStream(pdf, &rs, i, "/MediaBox")
		w, h := basePageSizeMM(imp, i)
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
		imp.UseImportedTemplate(pdf, tpl, 0, 0, w, h)
	}

	if pdf.Err() {
		return fmt.Errorf("%w: %v", ErrBaseUnreadable, pdf.Error())
	}
	return nil
}

func basePageSizeMM(imp *gofpdi.Importer, pageNum int) (w, h float64) {
	if dims, ok := imp.GetPageSizes()[pageNum]; ok {
		if mb, ok := dims["/MediaBox"]; ok {
			w = mb["w"] * ptToMM
			h = mb["h"] * ptToMM
		}
	}
	if w <= 0 || h <= 0 {
		w, h = 210.0, 297.0
	}
	return w, h
}
