package charts

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Plot area inset from the image edges, in pixels.
const (
	insetLeft   = 70
	insetRight  = 30
	insetTop    = 50
	insetBottom = 40
)

var (
	colorBG    = color.RGBA{255, 255, 255, 255}
	colorAxis  = color.RGBA{60, 60, 60, 255}
	colorGrid  = color.RGBA{225, 225, 225, 255}
	colorText  = color.RGBA{30, 30, 30, 255}
	colorPrime = color.RGBA{243, 146, 0, 255} // solar orange
	colorDark  = color.RGBA{0, 84, 142, 255}

	palette = []color.RGBA{
		{243, 146, 0, 255},
		{0, 84, 142, 255},
		{109, 179, 63, 255},
		{200, 48, 48, 255},
		{120, 120, 120, 255},
		{148, 102, 189, 255},
	}
)

// drawChart rasterizes a chart spec over one data series.
func drawChart(spec Spec, series []float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, imageWidth, imageHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBG), image.Point{}, draw.Src)

	drawLabel(img, insetLeft, 25, spec.Title, colorText)
	if spec.Unit != "" {
		drawLabel(img, insetLeft, 40, "["+spec.Unit+"]", colorAxis)
	}

	switch spec.Kind {
	case Pie:
		drawPie(img, series)
	case Line:
		drawSeries(img, series, false)
	case Area:
		drawSeries(img, series, true)
	default:
		drawBars(img, series)
	}
	return img
}

// plotRect is the inner drawing area.
func plotRect() image.Rectangle {
	return image.Rect(insetLeft, insetTop, imageWidth-insetRight, imageHeight-insetBottom)
}

// seriesRange returns the value range to plot, always including zero so
// bars and areas have a meaningful baseline.
func seriesRange(series []float64) (lo, hi float64) {
	lo, hi = 0, 0
	for _, v := range series {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

// valueToY maps a value into vertical pixel space.
func valueToY(v, lo, hi float64, r image.Rectangle) int {
	frac := (v - lo) / (hi - lo)
	return r.Max.Y - int(frac*float64(r.Dy()))
}

func drawFrame(img *image.RGBA, series []float64) (lo, hi float64, r image.Rectangle) {
	r = plotRect()
	lo, hi = seriesRange(series)

	// Horizontal gridlines with value labels.
	for i := 0; i <= 4; i++ {
		v := lo + (hi-lo)*float64(i)/4
		y := valueToY(v, lo, hi, r)
		fillRect(img, image.Rect(r.Min.X, y, r.Max.X, y+1), colorGrid)
		drawLabel(img, 8, y+4, fmt.Sprintf("%.0f", v), colorAxis)
	}

	// Axes.
	fillRect(img, image.Rect(r.Min.X-1, r.Min.Y, r.Min.X, r.Max.Y), colorAxis)
	baseY := valueToY(0, lo, hi, r)
	fillRect(img, image.Rect(r.Min.X, baseY, r.Max.X, baseY+1), colorAxis)
	return lo, hi, r
}

func drawBars(img *image.RGBA, series []float64) {
	lo, hi, r := drawFrame(img, series)
	n := len(series)
	slot := float64(r.Dx()) / float64(n)
	barW := int(slot * 0.7)
	if barW < 1 {
		barW = 1
	}
	baseY := valueToY(0, lo, hi, r)

	for i, v := range series {
		x := r.Min.X + int(float64(i)*slot+slot*0.15)
		y := valueToY(v, lo, hi, r)
		c := colorPrime
		if v < 0 {
			c = colorDark
		}
		top, bot := y, baseY
		if top > bot {
			top, bot = bot, top
		}
		fillRect(img, image.Rect(x, top, x+barW, bot), c)
	}
}

func drawSeries(img *image.RGBA, series []float64, filled bool) {
	lo, hi, r := drawFrame(img, series)
	n := len(series)
	if n == 1 {
		y := valueToY(series[0], lo, hi, r)
		fillRect(img, image.Rect(r.Min.X, y-2, r.Max.X, y+2), colorPrime)
		return
	}

	baseY := valueToY(0, lo, hi, r)
	step := float64(r.Dx()) / float64(n-1)

	for i := 0; i < n-1; i++ {
		x1 := r.Min.X + int(float64(i)*step)
		x2 := r.Min.X + int(float64(i+1)*step)
		y1 := valueToY(series[i], lo, hi, r)
		y2 := valueToY(series[i+1], lo, hi, r)
		drawLine(img, x1, y1, x2, y2, colorDark)
		if filled {
			for x := x1; x <= x2 && x2 > x1; x++ {
				t := float64(x-x1) / float64(x2-x1)
				y := int(float64(y1) + t*float64(y2-y1))
				top, bot := y, baseY
				if top > bot {
					top, bot = bot, top
				}
				fillRect(img, image.Rect(x, top, x+1, bot), color.RGBA{243, 146, 0, 90})
			}
		}
	}
}

func drawPie(img *image.RGBA, series []float64) {
	r := plotRect()
	cx := (r.Min.X + r.Max.X) / 2
	cy := (r.Min.Y + r.Max.Y) / 2
	radius := r.Dy() / 2
	if r.Dx()/2 < radius {
		radius = r.Dx() / 2
	}

	var total float64
	for _, v := range series {
		if v > 0 {
			total += v
		}
	}
	if total == 0 {
		return
	}

	// Slice boundaries in radians, starting at twelve o'clock.
	bounds := make([]float64, 0, len(series)+1)
	bounds = append(bounds, 0)
	acc := 0.0
	for _, v := range series {
		if v > 0 {
			acc += v
		}
		bounds = append(bounds, acc/total*2*math.Pi)
	}

	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := float64(x-cx), float64(y-cy)
			if dx*dx+dy*dy > float64(radius*radius) {
				continue
			}
			ang := math.Atan2(dx, -dy) // zero at top, clockwise
			if ang < 0 {
				ang += 2 * math.Pi
			}
			for i := 0; i+1 < len(bounds); i++ {
				if ang >= bounds[i] && ang < bounds[i+1] {
					img.SetRGBA(x, y, palette[i%len(palette)])
					break
				}
			}
		}
	}
}

// fillRect fills an axis-aligned rectangle clipped to the image bounds.
func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if c.A == 255 {
		draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
		return
	}
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// drawLine draws a one-pixel line between two points.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx := int(math.Abs(float64(x2 - x1)))
	dy := -int(math.Abs(float64(y2 - y1)))
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy
	for {
		if image.Pt(x1, y1).In(img.Bounds()) {
			img.SetRGBA(x1, y1, c)
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

// drawLabel renders text at a baseline position with the built-in bitmap face.
func drawLabel(img *image.RGBA, x, y int, s string, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
