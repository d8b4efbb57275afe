// Package telemetry provides step timing, ecosystem statistics, lineage
// tracking and CSV output.
package telemetry

import "github.com/pthm-cable/affinity/traits"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventBite
	EventDrop
	EventRepair
)

func (t EventType) String() string {
	switch t {
	case EventBirth:
		return "birth"
	case EventDeath:
		return "death"
	case EventBite:
		return "bite"
	case EventDrop:
		return "drop"
	case EventRepair:
		return "repair"
	default:
		return "unknown"
	}
}

// Event is something that happened to an entity during a step.
type Event struct {
	Type     EventType
	Tick     int64
	EntityID uint64
	Kind     traits.Kind

	// Optional fields depending on event type
	TargetID uint64  // bite target, or parent for births
	Amount   float64 // energy transferred by a bite
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(tick int64, childID, parentID uint64, kind traits.Kind) Event {
	return Event{Type: EventBirth, Tick: tick, EntityID: childID, Kind: kind, TargetID: parentID}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(tick int64, id uint64, kind traits.Kind) Event {
	return Event{Type: EventDeath, Tick: tick, EntityID: id, Kind: kind}
}

// NewBiteEvent creates a bite event.
func NewBiteEvent(tick int64, eaterID, targetID uint64, amount float64) Event {
	return Event{Type: EventBite, Tick: tick, EntityID: eaterID, Kind: traits.Organism, TargetID: targetID, Amount: amount}
}

// NewDropEvent records an entity removed because it failed validation.
func NewDropEvent(tick int64, id uint64, kind traits.Kind) Event {
	return Event{Type: EventDrop, Tick: tick, EntityID: id, Kind: kind}
}

// NewRepairEvent records a safety repair.
func NewRepairEvent(tick int64, id uint64, kind traits.Kind) Event {
	return Event{Type: EventRepair, Tick: tick, EntityID: id, Kind: kind}
}
