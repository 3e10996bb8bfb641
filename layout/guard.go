package layout

import "fmt"

// BasePages is the number of fixed template pages at the front of every
// offer document. The guard is a passthrough while rendering that region;
// every page appended after it gets full protection.
const BasePages = 8

// DefaultBottomMargin is the minimum vertical space, in millimeters, that
// must remain below an element before a page break is forced.
const DefaultBottomMargin = 30.0

// Guard tracks the current page and decides when groups must be kept
// together and when conditional page breaks are inserted. It never fails;
// every decision is conservative and recorded in its log.
type Guard struct {
	page         int
	bottomMargin float64
	entries      []LogEntry
}

// NewGuard returns a Guard positioned on page 1 with the default bottom margin.
func NewGuard() *Guard {
	return &Guard{page: 1, bottomMargin: DefaultBottomMargin}
}

// SetPage updates the page the guard considers current. Renderers call this
// after every page change so protection activates exactly at the boundary
// between the template region and appended content.
func (g *Guard) SetPage(n int) {
	if n > 0 {
		g.page = n
	}
}

// Page returns the current page number.
func (g *Guard) Page() int { return g.page }

// BottomMargin returns the reserved space at the bottom of each page.
func (g *Guard) BottomMargin() float64 { return g.bottomMargin }

// Active reports whether protection applies on the current page.
func (g *Guard) Active() bool { return g.page > BasePages }

// Entries returns a copy of all recorded protection decisions.
func (g *Guard) Entries() []LogEntry {
	out := make([]LogEntry, len(g.entries))
	copy(out, g.entries)
	return out
}

func (g *Guard) record(kind ElementKind, id string, action Action, detail string) {
	g.entries = append(g.entries, LogEntry{
		ElementType: string(kind),
		ElementID:   id,
		Page:        g.page,
		Action:      action,
		Detail:      detail,
	})
}

// WrapAtomic wraps a group into a keep-together node. In the template
// region it returns the group unwrapped and records nothing.
func (g *Guard) WrapAtomic(group Group) Node {
	if !g.Active() {
		return Node{Group: group}
	}
	g.record(group.kind(), group.ID(), WrappedAtomic, fmt.Sprintf("height %.1fmm", group.Height()))
	return Node{Atomic: true, Group: group}
}

// WrapFinancing wraps a financing group with strict atomicity: partial
// financial disclosures are treated as a correctness defect, so the usual
// oversize waiver does not apply short of genuine impossibility.
func (g *Guard) WrapFinancing(group Group) Node {
	if !g.Active() {
		return Node{Group: group}
	}
	g.record(KindFinancing, group.ID(), WrappedAtomic, "strict financing group")
	return Node{Atomic: true, Strict: true, Group: group}
}

// MaybeBreakBefore reports whether a page break must be inserted before an
// element of nextHeight given the space still available on the page. The
// break fires only when placing the element would leave less than the
// bottom margin; an exact fit does not break.
func (g *Guard) MaybeBreakBefore(id string, nextHeight, available float64) bool {
	if !g.Active() {
		return false
	}
	if available-nextHeight < g.bottomMargin {
		g.record(KindParagraph, id, PageBreakInserted,
			fmt.Sprintf("need %.1fmm, %.1fmm available", nextHeight, available))
		return true
	}
	return false
}

// PreventOrphanHeading joins a heading with the first block that follows it
// so the heading never sits alone at the bottom of a page.
func (g *Guard) PreventOrphanHeading(heading, body Element) Node {
	group := Group{heading, body}
	if !g.Active() {
		return Node{Group: group}
	}
	g.record(KindHeading, heading.ID, OrphanPrevented, "heading bound to following block")
	return Node{Atomic: true, Group: group}
}

// HandleOversized waives atomicity for a group whose estimated height
// exceeds one full page, letting it flow naturally instead of forcing an
// unplaceable break. Strict financing groups may additionally consume the
// bottom margin before the waiver applies.
func (g *Guard) HandleOversized(n Node, maxPageHeight float64) Node {
	if !n.Atomic {
		return n
	}
	limit := maxPageHeight
	if n.Strict {
		limit += g.bottomMargin
	}
	if n.Group.Height() <= limit {
		return n
	}
	detail := fmt.Sprintf("group %.1fmm exceeds page %.1fmm", n.Group.Height(), maxPageHeight)
	if n.Strict {
		detail = "financing " + detail
	}
	g.record(n.Group.kind(), n.Group.ID(), OversizedAllowedToSplit, detail)
	n.Atomic = false
	n.Strict = false
	return n
}
