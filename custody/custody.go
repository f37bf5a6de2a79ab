// Package custody implements a custodial asset-distribution state machine.
//
// A single owner registers beneficiaries with basis-point entitlements over
// pooled assets held behind an asset ledger gateway. The pool unlocks for
// claims when the owner shows no activity past a timeout, or earlier when a
// designated trusted party attests. Each beneficiary withdraws its
// proportional share exactly once; before unlock the owner may sweep the
// whole pool back.
//
// The package is deliberately environment-free: caller identity, time, and
// asset movement are injected, so the same state machine runs behind an HTTP
// daemon, a test harness, or any other host.
package custody

import (
	"sync"
	"time"
)

const (
	// BasisPointsTotal is the denominator of all shares: 10000 = 100%.
	BasisPointsTotal = 10000

	// DefaultTimeout is the owner-inactivity timeout used when Params does
	// not override it. Thirty days balances "owner on a long holiday" against
	// "beneficiaries locked out for years".
	DefaultTimeout = 30 * 24 * time.Hour
)

// Identity is an authenticated caller or recipient identifier supplied by
// the hosting environment. The empty value is the null identifier and is
// never a valid registry key.
type Identity string

// NoIdentity is the null identifier.
const NoIdentity Identity = ""

// AssetID names an asset held by the system. The empty value denotes the
// native currency; any other value denotes a fungible-token account.
type AssetID string

// NativeAsset is the distinguished native-currency asset id.
const NativeAsset AssetID = ""

// Phase is the distribution state of the system.
type Phase string

const (
	// PhaseOpen is the initial phase: the registry is mutable and the owner
	// may sweep.
	PhaseOpen Phase = "open"

	// PhaseDistributing is the terminal phase: beneficiaries claim, the
	// registry is frozen.
	PhaseDistributing Phase = "distributing"
)

// Beneficiary is a registered recipient entitled to ShareBps basis points of
// every pool balance. Claimed flips true exactly once, on the beneficiary's
// claim, and never reverts.
type Beneficiary struct {
	Recipient Identity
	ShareBps  uint64
	Claimed   bool
}

// Gateway is the asset ledger consumed by the system: current pool balances
// and the ability to move assets out of the pool. Calls may fail and may
// have side effects on the caller, including reentrant callbacks; the
// system's lock discipline assumes nothing safer.
type Gateway interface {
	// BalanceOf reports the pool's current balance of the asset.
	BalanceOf(asset AssetID) (uint64, error)

	// Transfer moves amount of the asset from the pool to the recipient.
	Transfer(asset AssetID, recipient Identity, amount uint64) error
}

// Params configures a new System. Owner and TrustedParty are fixed for the
// lifetime of the instance.
type Params struct {
	Owner        Identity
	TrustedParty Identity
	Gateway      Gateway

	// Timeout is the owner-inactivity duration after which anyone may
	// trigger distribution. Zero or negative selects DefaultTimeout.
	Timeout time.Duration

	// Events receives notifications. Nil discards them.
	Events Sink

	// Now supplies the current time. Nil selects time.Now.
	Now func() time.Time
}

// System is the singleton state machine. All exported methods are safe for
// concurrent use; state-mutating methods additionally reject nested calls
// (see ErrReentrantCall) so a gateway callback cannot re-enter mid-transfer.
type System struct {
	mu sync.Mutex

	owner        Identity
	trustedParty Identity
	timeout      time.Duration
	lastActive   time.Time
	triggered    bool
	entries      []*Beneficiary

	gateway Gateway
	events  Sink
	now     func() time.Time
}

// New constructs a System in the open phase with an empty registry and
// lastActive set to the current time. Fails with ErrInvalidOracle when the
// trusted party is the null identifier.
func New(p Params) (*System, error) {
	if p.TrustedParty == NoIdentity {
		return nil, ErrInvalidOracle
	}
	if p.Gateway == nil {
		return nil, ErrNilGateway
	}
	s := &System{
		owner:        p.Owner,
		trustedParty: p.TrustedParty,
		timeout:      p.Timeout,
		gateway:      p.Gateway,
		events:       p.Events,
		now:          p.Now,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.events == nil {
		s.events = Discard
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.lastActive = s.now()
	return s, nil
}

// lock acquires the exclusive state lock without blocking. A failed acquire
// means another state-mutating operation is in progress, which is exactly
// the nested-call case the reentrancy guard must reject.
func (s *System) lock() error {
	if !s.mu.TryLock() {
		return ErrReentrantCall
	}
	return nil
}

// findEntry returns the index of the beneficiary, or -1.
func (s *System) findEntry(recipient Identity) int {
	for i := range s.entries {
		if s.entries[i].Recipient == recipient {
			return i
		}
	}
	return -1
}

// Owner returns the owner identity fixed at construction.
func (s *System) Owner() Identity { return s.owner }

// TrustedParty returns the trusted-party identity fixed at construction.
func (s *System) TrustedParty() Identity { return s.trustedParty }

// Timeout returns the owner-inactivity timeout fixed at construction.
func (s *System) Timeout() time.Duration { return s.timeout }

// State reports the current phase.
func (s *System) State() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.triggered {
		return PhaseDistributing
	}
	return PhaseOpen
}
