package charts

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	gocache "github.com/patrickmn/go-cache"
)

// AnalysisData is the read-only mapping of analysis series supplied by the
// external calculation layer. Series are keyed by name; order within a
// series is meaningful (months, years, hours).
type AnalysisData map[string][]float64

// Sentinel errors for expected render failures. Both are "chart not
// available" conditions, not faults.
var (
	ErrUnknownChart = errors.New("charts: unknown chart key")
	ErrDataMissing  = errors.New("charts: no data for chart")
)

// Rendered image dimensions in pixels.
const (
	imageWidth  = 880
	imageHeight = 460
)

// Image is one rendered chart with its generated caption.
type Image struct {
	Key     Key
	PNG     []byte
	Width   int
	Height  int
	Caption string
}

// Renderer draws catalog charts and memoizes results by (key, fingerprint).
// The cache lives for the renderer's lifetime; a generation run renders a
// bounded set of distinct charts, so no eviction is configured.
type Renderer struct {
	cache *gocache.Cache
	draw  func(Spec, []float64) *image.RGBA
}

// NewRenderer returns a Renderer with an empty cache.
func NewRenderer() *Renderer {
	return &Renderer{
		cache: gocache.New(gocache.NoExpiration, 0),
		draw:  drawChart,
	}
}

// Render returns the image for a chart key. The second return reports a
// cache hit. A key outside the catalog or a missing data series returns an
// error that callers log as a warning and recover from by omitting the
// chart; neither aborts a generation run.
func (r *Renderer) Render(key Key, data AnalysisData) (Image, bool, error) {
	spec, ok := Lookup(key)
	if !ok {
		return Image{}, false, fmt.Errorf("%w: %q", ErrUnknownChart, key)
	}

	series, ok := data[spec.DataKey]
	if !ok || len(series) == 0 {
		return Image{}, false, fmt.Errorf("%w: %s needs series %q", ErrDataMissing, key, spec.DataKey)
	}

	ck := string(key) + "|" + Fingerprint(series)
	if v, hit := r.cache.Get(ck); hit {
		return v.(Image), true, nil
	}

	rgba := r.draw(spec, series)
	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return Image{}, false, fmt.Errorf("charts: encoding %s: %w", key, err)
	}

	img := Image{
		Key:     key,
		PNG:     buf.Bytes(),
		Width:   rgba.Bounds().Dx(),
		Height:  rgba.Bounds().Dy(),
		Caption: Caption(spec, series),
	}
	r.cache.Set(ck, img, gocache.NoExpiration)
	return img, false, nil
}

// Fingerprint hashes a data series for cache keying. The first 16 hex
// characters of a SHA-256 over the raw float bits are enough to tell the
// few dozen charts of a run apart.
func Fingerprint(series []float64) string {
	h := sha256.New()
	var b [8]byte
	for _, v := range series {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		h.Write(b[:])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Caption builds the figure caption for a chart: type, purpose, and a few
// headline figures computed from the series.
func Caption(spec Spec, series []float64) string {
	var total, peak, mean float64
	peak = math.Inf(-1)
	for _, v := range series {
		total += v
		if v > peak {
			peak = v
		}
	}
	mean = total / float64(len(series))

	kind := "Bar chart"
	switch spec.Kind {
	case Line:
		kind = "Line chart"
	case Area:
		kind = "Area chart"
	case Pie:
		kind = "Pie chart"
	}

	unit := spec.Unit
	if unit != "" {
		unit = " " + unit
	}

	if spec.Kind == Pie {
		return fmt.Sprintf("%s: %s. %d segments, total %.0f%s.",
			kind, spec.Title, len(series), total, unit)
	}
	return fmt.Sprintf("%s: %s. Total %.0f%s, peak %.0f%s, average %.1f%s over %d values.",
		kind, spec.Title, total, unit, peak, unit, mean, unit, len(series))
}
