package notifier

import (
	"context"
	"time"
)

// Value is the canonical decimal rendering of an observed value (a block
// number). Two values are the same observation when their strings are equal.
type Value string

func (v Value) String() string {
	return string(v)
}

// Recipient is a chain-namespaced account, e.g. "eip155:1:0xAbC...".
type Recipient string

func (r Recipient) String() string {
	return string(r)
}

type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

type ValueSource interface {
	Fetch(ctx context.Context) (Value, error)
}

// Sink delivers one payload to a set of recipients. Implementations return
// ErrNoRecipient for an empty set and a *DeliveryError when the delivery
// itself failed.
type Sink interface {
	Send(ctx context.Context, recipients []Recipient, payload Payload) error
}

type Observer interface {
	Observe(event Event)
}

type EventType string

const (
	EventSkipped        EventType = "skipped"
	EventOverlap        EventType = "overlap"
	EventFetchFailed    EventType = "fetch_failed"
	EventUnchanged      EventType = "unchanged"
	EventEmitting       EventType = "emitting"
	EventEmitted        EventType = "emitted"
	EventDeliveryFailed EventType = "delivery_failed"
	EventDiscarded      EventType = "discarded"
)

type Event struct {
	Type      EventType
	Value     Value
	Recipient Recipient
	Err       error
	Time      time.Time
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(event Event) {
	f(event)
}

type Outcome int

const (
	OutcomeIdle Outcome = iota
	OutcomeOverlap
	OutcomeFetchFailed
	OutcomeUnchanged
	OutcomeEmitted
	OutcomeDeliveryFailed
	OutcomeDiscarded
)

var outcomes = [...]string{"idle", "overlap", "fetch_failed", "unchanged", "emitted", "delivery_failed", "discarded"}

func (o Outcome) String() string {
	if int(o) < 0 || int(o) >= len(outcomes) {
		return "unknown"
	}
	return outcomes[o]
}
