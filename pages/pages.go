// Package pages renders the generated sections appended behind the fixed
// template region of an offer document: the chart pages and the financing
// chapter. All page breaks inside these sections go through the layout
// guard so every decision lands in the run log.
package pages

// Logger receives progress and degradation notices from the renderers.
// The engine's scoped run log satisfies it.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

const (
	pageMargin    = 15.0 // mm on all sides of generated pages
	headingHeight = 10.0 // mm reserved for a section heading
	sectionGap    = 6.0  // mm between sections
)
