package events

import (
	"sync"

	"github.com/google/uuid"

	"cinechain/core/types"
)

// Envelope wraps an emitted event with the delivery metadata indexers need to
// deduplicate and order a stream: a unique id and a monotonic sequence.
type Envelope struct {
	ID       string
	Sequence uint64
	Event    *types.Event
}

// Subscriber receives every envelope published after registration. Handlers
// must not block; slow consumers should buffer on their side.
type Subscriber func(Envelope)

// Bus is the in-process event-subscription mechanism. Engines emit through
// it and any number of subscribers (RPC streams, metrics, external indexer
// bridges) observe the resulting envelopes.
type Bus struct {
	mu      sync.RWMutex
	seq     uint64
	subs    []Subscriber
	replay  []Envelope
	replayN int
}

// NewBus constructs a bus retaining up to replayN envelopes for late
// subscribers. A non-positive replayN disables retention.
func NewBus(replayN int) *Bus {
	if replayN < 0 {
		replayN = 0
	}
	return &Bus{replayN: replayN}
}

// Subscribe registers a subscriber and replays the retained envelope window
// to it before any new event is delivered.
func (b *Bus) Subscribe(fn Subscriber) {
	if b == nil || fn == nil {
		return
	}
	b.mu.Lock()
	backlog := make([]Envelope, len(b.replay))
	copy(backlog, b.replay)
	b.subs = append(b.subs, fn)
	b.mu.Unlock()
	for _, env := range backlog {
		fn(env)
	}
}

// Emit implements the Emitter interface. Events that do not carry a typed
// payload are dropped.
func (b *Bus) Emit(evt Event) {
	if b == nil || evt == nil {
		return
	}
	carrier, ok := evt.(interface{ Event() *types.Event })
	if !ok || carrier.Event() == nil {
		return
	}
	b.mu.Lock()
	b.seq++
	env := Envelope{
		ID:       uuid.NewString(),
		Sequence: b.seq,
		Event:    carrier.Event(),
	}
	if b.replayN > 0 {
		b.replay = append(b.replay, env)
		if len(b.replay) > b.replayN {
			b.replay = b.replay[len(b.replay)-b.replayN:]
		}
	}
	subs := make([]Subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()
	for _, fn := range subs {
		fn(env)
	}
}
