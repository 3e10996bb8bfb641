package pages

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/helioprint/offerdoc/charts"
	"github.com/helioprint/offerdoc/layout"
)

// chartAspect is the width/height ratio of rendered chart images.
const chartAspect = 880.0 / 460.0

// GroupKeys splits the chart keys into per-page groups of the given
// density. Order is preserved; the last group may be short. A density
// outside {1, 2, 4} falls back to two charts per page.
func GroupKeys(keys []charts.Key, perPage int) [][]charts.Key {
	perPage = normalizeDensity(perPage)
	var groups [][]charts.Key
	for len(keys) > 0 {
		n := perPage
		if n > len(keys) {
			n = len(keys)
		}
		groups = append(groups, keys[:n])
		keys = keys[n:]
	}
	return groups
}

func normalizeDensity(n int) int {
	switch n {
	case 1, 2, 4:
		return n
	}
	return 2
}

// RenderCharts renders the selected charts onto appended pages and returns
// the number of pages added. Charts whose data is missing are omitted with
// a warning; the page count shrinks accordingly instead of leaving gaps.
func RenderCharts(pdf *gofpdf.Fpdf, g *layout.Guard, r *charts.Renderer, data charts.AnalysisData, keys []charts.Key, perPage int, log Logger) int {
	perPage = normalizeDensity(perPage)

	var imgs []charts.Image
	for _, k := range keys {
		img, cached, err := r.Render(k, data)
		if err != nil {
			log.Warnf("omitting chart %s: %v", k, err)
			continue
		}
		if cached {
			log.Infof("chart %s served from render cache", k)
		}
		imgs = append(imgs, img)
	}
	if len(imgs) == 0 {
		return 0
	}
	rendered := len(imgs)

	var pages int
	for len(imgs) > 0 {
		n := perPage
		if n > len(imgs) {
			n = len(imgs)
		}
		pdf.AddPage()
		g.SetPage(pdf.PageNo())
		drawChartPage(pdf, g, imgs[:n], perPage)
		imgs = imgs[n:]
		pages++
	}
	log.Infof("rendered %d charts on %d pages", rendered, pages)
	return pages
}

// drawChartPage lays out up to perPage charts in a fixed grid: one full
// width, two stacked, or a two by two grid.
func drawChartPage(pdf *gofpdf.Fpdf, g *layout.Guard, imgs []charts.Image, perPage int) {
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin
	contentH := pageH - 2*pageMargin

	cols := 1
	if perPage == 4 {
		cols = 2
	}
	rows := perPage / cols

	slotW := contentW / float64(cols)
	slotH := contentH / float64(rows)

	for i, img := range imgs {
		col := i % cols
		row := i / cols
		x := pageMargin + float64(col)*slotW
		y := pageMargin + float64(row)*slotH

		// Chart plus caption stay together within their slot.
		g.WrapAtomic(layout.Group{{Kind: layout.KindChart, ID: string(img.Key), Height: slotH}})
		drawChartSlot(pdf, img, x, y, slotW, slotH)
	}
}

func drawChartSlot(pdf *gofpdf.Fpdf, img charts.Image, x, y, slotW, slotH float64) {
	const gutter = 4.0
	imgW := slotW - gutter
	imgH := imgW / chartAspect
	if maxH := slotH - gutter - 12; imgH > maxH {
		imgH = maxH
		imgW = imgH * chartAspect
	}

	name := fmt.Sprintf("chart_%s", img.Key)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.PNG))
	pdf.ImageOptions(name, x, y, imgW, imgH, false, opts, 0, "")

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetXY(x, y+imgH+1.5)
	pdf.MultiCell(imgW, 3.5, img.Caption, "", "L", false)
	pdf.SetFont("Helvetica", "", 9)
}
