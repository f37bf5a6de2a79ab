package custody

import "fmt"

// Sweep moves the pool's entire balance of the asset to the owner. Owner
// only, and only while the system is still open: once distribution is
// triggered the escape hatch closes for good. A zero balance is a no-op
// success. Emits an emergency_withdrawal event with the amount moved.
func (s *System) Sweep(caller Identity, asset AssetID) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}
	if s.triggered {
		return ErrAlreadyTriggered
	}

	balance, err := s.gateway.BalanceOf(asset)
	if err != nil {
		return fmt.Errorf("%w: read balance: %w", ErrTransferFailed, err)
	}
	if balance > 0 {
		if err := s.gateway.Transfer(asset, s.owner, balance); err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
	}
	s.emit(Event{Type: EventEmergencyWithdrawal, At: s.now(), Caller: caller, Recipient: s.owner, Asset: asset, Amount: balance})
	return nil
}
