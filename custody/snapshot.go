package custody

import "time"

// Snapshot is a full export of the mutable state plus the construction-time
// identities, suitable for persistence. All fields are plain values so the
// type is gob- and json-encodable as is.
type Snapshot struct {
	Owner         Identity
	TrustedParty  Identity
	Timeout       time.Duration
	LastActive    time.Time
	Triggered     bool
	Beneficiaries []Beneficiary
}

// Snapshot exports the current state.
func (s *System) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	bs := make([]Beneficiary, len(s.entries))
	for i, b := range s.entries {
		bs[i] = *b
	}
	return Snapshot{
		Owner:         s.owner,
		TrustedParty:  s.trustedParty,
		Timeout:       s.timeout,
		LastActive:    s.lastActive,
		Triggered:     s.triggered,
		Beneficiaries: bs,
	}
}

// Restore reconstructs a System from a snapshot. Identities and mutable
// state come from the snapshot; Gateway, Events and Now come from p (the
// remaining Params fields are ignored). A restored system resumes with the
// same triggered and claimed flags, so no invariant weakens across a
// restart.
func Restore(snap Snapshot, p Params) (*System, error) {
	if snap.TrustedParty == NoIdentity {
		return nil, ErrInvalidOracle
	}
	if p.Gateway == nil {
		return nil, ErrNilGateway
	}
	s := &System{
		owner:        snap.Owner,
		trustedParty: snap.TrustedParty,
		timeout:      snap.Timeout,
		lastActive:   snap.LastActive,
		triggered:    snap.Triggered,
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
	s.entries = make([]*Beneficiary, len(snap.Beneficiaries))
	for i := range snap.Beneficiaries {
		b := snap.Beneficiaries[i]
		s.entries[i] = &b
	}
	return s, nil
}
