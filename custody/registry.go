package custody

// AddOrUpdateBeneficiary registers recipient with shareBps basis points, or
// updates its share when already registered. Owner only, open phase only.
// The write is atomic: when the new total allocation would exceed 10000
// basis points the call fails with ErrAllocationExceeded and the registry is
// left untouched.
func (s *System) AddOrUpdateBeneficiary(caller, recipient Identity, shareBps uint64) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}
	if recipient == NoIdentity {
		return ErrInvalidBeneficiary
	}
	if shareBps == 0 || shareBps > BasisPointsTotal {
		return ErrInvalidShare
	}
	if s.triggered {
		return ErrAlreadyFinalized
	}

	// Validate before committing so a failed call cannot leave a partial
	// write behind.
	i := s.findEntry(recipient)
	total := shareBps
	for j, b := range s.entries {
		if j != i {
			total += b.ShareBps
		}
	}
	if total > BasisPointsTotal {
		return ErrAllocationExceeded
	}

	ev := Event{At: s.now(), Caller: caller, Recipient: recipient, ShareBps: shareBps}
	if i < 0 {
		s.entries = append(s.entries, &Beneficiary{Recipient: recipient, ShareBps: shareBps})
		ev.Type = EventBeneficiaryAdded
	} else {
		s.entries[i].ShareBps = shareBps
		ev.Type = EventBeneficiaryUpdated
	}
	s.emit(ev)
	return nil
}

// RemoveBeneficiary deletes recipient from the registry. Owner only, open
// phase only. Swap-remove: the order of the remaining entries is not part of
// the contract beyond being deterministic within one call.
func (s *System) RemoveBeneficiary(caller, recipient Identity) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}
	if s.triggered {
		return ErrAlreadyFinalized
	}
	i := s.findEntry(recipient)
	if i < 0 {
		return ErrInvalidBeneficiary
	}

	last := len(s.entries) - 1
	s.entries[i] = s.entries[last]
	s.entries[last] = nil
	s.entries = s.entries[:last]

	s.emit(Event{Type: EventBeneficiaryRemoved, At: s.now(), Caller: caller, Recipient: recipient})
	return nil
}

// Beneficiaries returns the registered identifiers in registry order.
func (s *System) Beneficiaries() []Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]Identity, len(s.entries))
	for i, b := range s.entries {
		ids[i] = b.Recipient
	}
	return ids
}

// Beneficiary returns a copy of the registry entry for recipient, or
// ErrInvalidBeneficiary when not registered.
func (s *System) Beneficiary(recipient Identity) (Beneficiary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findEntry(recipient)
	if i < 0 {
		return Beneficiary{}, ErrInvalidBeneficiary
	}
	return *s.entries[i], nil
}

// TotalShareBps returns the current allocation total in basis points.
func (s *System) TotalShareBps() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total uint64
	for _, b := range s.entries {
		total += b.ShareBps
	}
	return total
}
