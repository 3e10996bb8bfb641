package layout

// Action classifies a single protection decision.
type Action string

const (
	WrappedAtomic           Action = "wrapped_atomic"
	PageBreakInserted       Action = "page_break_inserted"
	OrphanPrevented         Action = "orphan_prevented"
	OversizedAllowedToSplit Action = "oversized_allowed_to_split"
)

// LogEntry records one protection decision. Entries are append-only and
// never mutated after being recorded.
type LogEntry struct {
	ElementType string
	ElementID   string
	Page        int
	Action      Action
	Detail      string
}
