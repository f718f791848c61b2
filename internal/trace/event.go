package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of an event. Lower values are
// coarser.
type Scope uint8

const (
	// ScopeDriver covers top-level driver operations.
	ScopeDriver Scope = iota + 1
	// ScopePhase covers pipeline phases (reflect, close, reduce, lower).
	ScopePhase
	// ScopeTarget covers per-target processing in a batch.
	ScopeTarget
	// ScopeTerm covers individual term rewrites (most detailed).
	ScopeTerm
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePhase:
		return "phase"
	case ScopeTarget:
		return "target"
	case ScopeTerm:
		return "term"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // monotonic sequence number
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Name     string // e.g. "reduce", "target:voice"
	Detail   string
	Extra    map[string]string
}
