package custody

import "time"

// EventType names a notification emitted by the state machine.
type EventType string

const (
	EventBeneficiaryAdded    EventType = "beneficiary_added"
	EventBeneficiaryUpdated  EventType = "beneficiary_updated"
	EventBeneficiaryRemoved  EventType = "beneficiary_removed"
	EventTriggered           EventType = "triggered"
	EventClaimed             EventType = "claimed"
	EventEmergencyWithdrawal EventType = "emergency_withdrawal"
)

// Event is an observational notification. The core never consumes events;
// they exist for external observers and indexers.
type Event struct {
	Type   EventType
	At     time.Time
	Caller Identity

	// Recipient is the beneficiary affected by a registry event, or the
	// payout recipient of a claimed/emergency_withdrawal event.
	Recipient Identity

	// ShareBps is set on beneficiary_added and beneficiary_updated.
	ShareBps uint64

	// Asset and Amount are set on claimed and emergency_withdrawal, one
	// event per asset actually considered.
	Asset  AssetID
	Amount uint64
}

// Sink receives events synchronously, while the system's state lock is held.
// Implementations must return quickly and must not call back into the
// emitting System; a mutating callback is rejected with ErrReentrantCall.
type Sink interface {
	Notify(Event)
}

// Discard is a Sink that drops every event.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Notify(Event) {}

func (s *System) emit(ev Event) {
	s.events.Notify(ev)
}
