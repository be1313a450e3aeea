// internal/game/events.go
package game

import "github.com/jason-s-yu/solitaire/internal/card"

// EventType names a rule event raised by stacks and intents and consumed by
// the active variant.
type EventType string

const (
	EventDeal      EventType = "deal"       // the draw pile was tapped
	EventStackAdd  EventType = "stack_add"  // cards landed on a notifying stack
	EventFling     EventType = "fling"      // a single card was flung toward the sinks
	EventSmartMove EventType = "smart_move" // try to auto-sink one more card
	EventDealNext  EventType = "deal_next"  // continue a one-card-at-a-time deal
)

// Event carries the stack it concerns and, for flings, the card in flight.
type Event struct {
	Type   EventType
	Anchor int
	Card   *card.Card
}

// eventQueue is a FIFO of pending rule events. Posting an event identical to
// the most recently queued one is a no-op.
type eventQueue struct {
	events []Event
}

func (q *eventQueue) post(ev Event) {
	if n := len(q.events); n > 0 && q.events[n-1] == ev {
		return
	}
	q.events = append(q.events, ev)
}

func (q *eventQueue) next() (Event, bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	ev := q.events[0]
	q.events = q.events[1:]
	return ev, true
}

func (q *eventQueue) clear() {
	q.events = nil
}

func (q *eventQueue) len() int {
	return len(q.events)
}
