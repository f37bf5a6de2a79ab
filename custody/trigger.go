package custody

// Trigger transitions the system from open to distributing. The trusted
// party may trigger at any time; anyone else only after the activity timeout
// elapsed. The transition happens at most once for the lifetime of the
// system and never reverts.
func (s *System) Trigger(caller Identity) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if s.triggered {
		return ErrAlreadyTriggered
	}
	if len(s.entries) == 0 {
		return ErrNoBeneficiaries
	}
	now := s.now()
	if caller != s.trustedParty && !s.timeoutElapsed(now) {
		return ErrTimeLockNotExpired
	}

	s.triggered = true
	s.emit(Event{Type: EventTriggered, At: now, Caller: caller})
	return nil
}
