package chart

// EventKind orders notifications within one edit cycle: structural
// change events are always delivered before the graphics event that
// follows the solve.
type EventKind uint8

const (
	// EventStructure fires when the specification tree changed shape:
	// element added/removed/reordered, glyph list remapped, class
	// switched.
	EventStructure EventKind = iota
	// EventGraphics fires after a solve pass rewrote resolved values.
	EventGraphics
	// EventSelection fires when selection bookkeeping changed (an
	// element referenced by the selection was removed).
	EventSelection
)

// Event is one notification from the Manager.
type Event struct {
	Kind EventKind
	// Element is the affected element id; empty for chart-wide events.
	Element string
	// Generation is the Manager's edit counter at delivery time, so
	// subscribers can detect coalesced or missed cycles.
	Generation uint64
}

// Subscriber receives Manager events. Delivery is synchronous and in
// order within one edit cycle.
type Subscriber func(Event)

// notifier fan-outs events to subscribers in registration order.
type notifier struct {
	subs []Subscriber
}

// subscribe appends a subscriber. Not safe for concurrent use; the
// Manager is single-goroutine by contract.
func (n *notifier) subscribe(s Subscriber) {
	n.subs = append(n.subs, s)
}

func (n *notifier) emit(ev Event) {
	for _, s := range n.subs {
		s(ev)
	}
}
