package offerdoc

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Watermark is a rotated text overlay stamped across every page, used for
// draft and preview offers.
type Watermark struct {
	Text     string
	FontSize float64 // points, default 60
	Gray     int     // 0..255, default 200
	Opacity  float64 // 0..1, default 0.3
	Angle    float64 // degrees, default 45
}

func (w Watermark) withDefaults() Watermark {
	if w.FontSize == 0 {
		w.FontSize = 60
	}
	if w.Gray == 0 {
		w.Gray = 200
	}
	if w.Opacity == 0 {
		w.Opacity = 0.3
	}
	if w.Angle == 0 {
		w.Angle = 45
	}
	return w
}

// applyStamps revisits the finished pages and draws the configured
// overlays: the draft watermark on every page and page numbers in the
// bottom margin. It runs after all stages so the total page count is
// final.
func applyStamps(pdf *gofpdf.Fpdf, cfg *runConfig) {
	total := pdf.PageCount()
	if total == 0 {
		return
	}

	for i := 1; i <= total; i++ {
		pdf.SetPage(i)
		pageW, pageH := pdf.GetPageSize()

		if cfg.watermark != nil {
			drawWatermark(pdf, *cfg.watermark, pageW, pageH)
		}
		if cfg.pageNumberFmt != "" {
			drawPageNumber(pdf, cfg.pageNumberFmt, i, total, pageW, pageH)
		}
	}
	pdf.SetPage(total)
}

func drawWatermark(pdf *gofpdf.Fpdf, wm Watermark, pageW, pageH float64) {
	wm = wm.withDefaults()

	pdf.SetFont("Helvetica", "B", wm.FontSize)
	pdf.SetTextColor(wm.Gray, wm.Gray, wm.Gray)
	pdf.SetAlpha(wm.Opacity, "Normal")

	textW := pdf.GetStringWidth(wm.Text)
	cx := pageW / 2
	cy := pageH / 2

	pdf.TransformBegin()
	pdf.TransformRotate(wm.Angle, cx, cy)
	// Vertical centering is approximate; a third of the font size in mm.
	pdf.Text(cx-textW/2, cy+wm.FontSize/3*ptToMM, wm.Text)
	pdf.TransformEnd()

	pdf.SetAlpha(1.0, "Normal")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 9)
}

func drawPageNumber(pdf *gofpdf.Fpdf, format string, page, total int, pageW, pageH float64) {
	const bottomOffset = 8.0 // mm above the page edge

	text := fmt.Sprintf(format, page, total)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.Text((pageW-pdf.GetStringWidth(text))/2, pageH-bottomOffset, text)
	pdf.SetTextColor(0, 0, 0)
}
