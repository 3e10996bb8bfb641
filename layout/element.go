// Package layout implements the page protection rules for appended offer
// pages. Content rendered into the variable region of the document (after
// the fixed template pages) is grouped into atomic units that must not be
// split across a page boundary; the Guard decides when a conditional page
// break is required and records every decision it makes.
package layout

import "strings"

// ElementKind identifies the visual type of a page element.
type ElementKind string

const (
	KindChart     ElementKind = "chart"
	KindTable     ElementKind = "table"
	KindParagraph ElementKind = "paragraph"
	KindHeading   ElementKind = "heading"
	KindFinancing ElementKind = "financing"
)

// Element is a single page element with a pre-layout height estimate.
// Heights are in the document unit (millimeters).
type Element struct {
	Kind   ElementKind
	ID     string
	Height float64
}

// Group is an ordered sequence of elements that belong together visually,
// such as a chart and its caption or a table and its title.
type Group []Element

// Height returns the summed height estimate of the group.
func (g Group) Height() float64 {
	var h float64
	for _, e := range g {
		h += e.Height
	}
	return h
}

// ID returns a joined identity string for logging.
func (g Group) ID() string {
	ids := make([]string, len(g))
	for i, e := range g {
		ids[i] = e.ID
	}
	return strings.Join(ids, "+")
}

// kind returns the kind of the first element, which names the group in logs.
func (g Group) kind() ElementKind {
	if len(g) == 0 {
		return KindParagraph
	}
	return g[0].Kind
}

// Node is the layout unit handed to a renderer. When Atomic is set the
// renderer must place the whole group on one page. Strict marks financing
// content whose atomicity survives the usual oversize waiver.
type Node struct {
	Atomic bool
	Strict bool
	Group  Group
}
