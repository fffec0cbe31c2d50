package types

import "sync"

// Event types emitted by the amm module
const (
	EventTypePoolCreated = "amm_pool_created"
	EventTypeMint        = "amm_mint"
	EventTypeBurn        = "amm_burn"
	EventTypeSwap        = "amm_swap"
	EventTypeSync        = "amm_sync"
	EventTypeSkim        = "amm_skim"
	EventTypeFeeConfig   = "amm_fee_config"
)

// Event attribute keys
const (
	AttributeKeyPoolID       = "pool_id"
	AttributeKeyAssetA       = "asset_a"
	AttributeKeyAssetB       = "asset_b"
	AttributeKeyAmountA      = "amount_a"
	AttributeKeyAmountB      = "amount_b"
	AttributeKeyAmountAIn    = "amount_a_in"
	AttributeKeyAmountBIn    = "amount_b_in"
	AttributeKeyAmountAOut   = "amount_a_out"
	AttributeKeyAmountBOut   = "amount_b_out"
	AttributeKeyShares       = "shares"
	AttributeKeySender       = "sender"
	AttributeKeyRecipient    = "recipient"
	AttributeKeyCreator      = "creator"
	AttributeKeyFeeRecipient = "fee_recipient"
	AttributeKeyFeeAdmin     = "fee_admin"
)

// Attribute is a single key/value pair attached to an event.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is a typed occurrence recorded by the engine, mirroring on-chain
// event emission for off-engine consumers (indexers, the graduation trigger).
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// NewEvent constructs an event from a type and attributes.
func NewEvent(eventType string, attrs ...Attribute) Event {
	return Event{Type: eventType, Attributes: attrs}
}

// NewAttribute constructs a single event attribute.
func NewAttribute(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Attribute returns the value for key and whether it was present.
func (e Event) Attribute(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// MaxRetainedEvents bounds the in-memory event log. When the bound is
// exceeded the oldest events are dropped first, so a long-running process
// keeps a sliding window rather than growing forever. Consumers that need
// every event should drain with Drain.
const MaxRetainedEvents = 16384

// EventManager collects events emitted during engine operations. Safe for
// concurrent use.
type EventManager struct {
	mu     sync.RWMutex
	events []Event
}

func NewEventManager() *EventManager {
	return &EventManager{}
}

// EmitEvent appends an event to the log.
func (em *EventManager) EmitEvent(event Event) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.events = append(em.events, event)
	em.trim()
}

// EmitEvents appends several events to the log.
func (em *EventManager) EmitEvents(events []Event) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.events = append(em.events, events...)
	em.trim()
}

// trim drops the oldest events past the retention bound. Callers must hold
// the write lock. The survivors are reallocated so the dropped prefix does
// not pin the old backing array.
func (em *EventManager) trim() {
	if over := len(em.events) - MaxRetainedEvents; over > 0 {
		em.events = append([]Event(nil), em.events[over:]...)
	}
}

// Events returns a copy of all recorded events.
func (em *EventManager) Events() []Event {
	em.mu.RLock()
	defer em.mu.RUnlock()
	out := make([]Event, len(em.events))
	copy(out, em.events)
	return out
}

// Drain returns all recorded events and clears the log in one step.
func (em *EventManager) Drain() []Event {
	em.mu.Lock()
	defer em.mu.Unlock()
	out := em.events
	em.events = nil
	return out
}

// Clear discards all recorded events.
func (em *EventManager) Clear() {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.events = nil
}
