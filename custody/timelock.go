package custody

import "time"

// RecordActivity refreshes the owner's last-activity timestamp to the
// current time. Owner only. No other effect.
func (s *System) RecordActivity(caller Identity) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}
	s.lastActive = s.now()
	return nil
}

// TimeoutElapsed reports whether the activity timeout has elapsed at now.
func (s *System) TimeoutElapsed(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeoutElapsed(now)
}

// timeoutElapsed is TimeoutElapsed without the lock, for use inside
// operations that already hold it. now >= lastActive + timeout.
func (s *System) timeoutElapsed(now time.Time) bool {
	return !now.Before(s.lastActive.Add(s.timeout))
}

// LastActive returns the owner's last attested activity timestamp.
func (s *System) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
