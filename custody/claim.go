package custody

import (
	"fmt"
	"math/bits"
)

// Claim settles the caller's proportional share of the native asset and,
// when token is non-empty, of that token. Requires the distributing phase
// and an unclaimed registry entry for the caller.
//
// The claimed flag is committed before any gateway call and is not rolled
// back when a transfer fails: a beneficiary whose transfer fails forfeits.
// Amounts are floor(balance * share / 10000) against the pool balance at the
// moment of the call, so later claimants divide whatever earlier claims and
// deposits left behind. One claimed event is emitted per asset moved.
func (s *System) Claim(caller Identity, token AssetID) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if !s.triggered {
		return ErrNotTriggered
	}
	i := s.findEntry(caller)
	if i < 0 {
		return ErrInvalidBeneficiary
	}
	b := s.entries[i]
	if b.Claimed {
		return ErrAlreadyClaimed
	}

	// Write before the external calls below. A reentrant claim is already
	// rejected by the lock; the committed flag closes the window for hosts
	// that persist between gateway calls.
	b.Claimed = true

	assets := []AssetID{NativeAsset}
	if token != NativeAsset {
		assets = append(assets, token)
	}
	now := s.now()
	for _, asset := range assets {
		balance, err := s.gateway.BalanceOf(asset)
		if err != nil {
			return fmt.Errorf("%w: read balance: %w", ErrTransferFailed, err)
		}
		amount := shareAmount(balance, b.ShareBps)
		if amount == 0 {
			continue
		}
		if err := s.gateway.Transfer(asset, caller, amount); err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
		s.emit(Event{Type: EventClaimed, At: now, Caller: caller, Recipient: caller, Asset: asset, Amount: amount})
	}
	return nil
}

// shareAmount computes floor(balance * shareBps / 10000) exactly. The
// 128-bit intermediate keeps the floor exact for pool balances where the
// plain uint64 product would overflow. shareBps <= 10000 guarantees the
// quotient fits in 64 bits.
func shareAmount(balance, shareBps uint64) uint64 {
	hi, lo := bits.Mul64(balance, shareBps)
	q, _ := bits.Div64(hi, lo, BasisPointsTotal)
	return q
}
