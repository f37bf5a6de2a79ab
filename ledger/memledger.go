// Package ledger provides asset ledger gateways for the custody state
// machine: an in-memory ledger for tests and simulations, and a bbolt-backed
// ledger for the daemon. Both track a single pool plus per-recipient payout
// accounts; a transfer debits the pool and credits the recipient.
package ledger

import (
	"sync"

	"github.com/custodiaorg/libcustodia-go/custody"
)

// MemLedger is an in-memory custody.Gateway. The zero value is not usable;
// call NewMemLedger.
//
// The function hooks exist for tests: they run inside the corresponding call
// and can script failures or reentrant callbacks into the system under test.
type MemLedger struct {
	mu       sync.Mutex
	pool     map[custody.AssetID]uint64
	accounts map[custody.Identity]map[custody.AssetID]uint64

	// BeforeTransfer, when set, runs before balances move. Returning an
	// error fails the transfer without moving anything.
	BeforeTransfer func(asset custody.AssetID, recipient custody.Identity, amount uint64) error

	// BalanceErr, when set, makes BalanceOf fail.
	BalanceErr error
}

var _ custody.Gateway = (*MemLedger)(nil)

func NewMemLedger() *MemLedger {
	return &MemLedger{
		pool:     make(map[custody.AssetID]uint64),
		accounts: make(map[custody.Identity]map[custody.AssetID]uint64),
	}
}

// Deposit credits the pool. The original system accepts deposits at any
// time, before and after distribution is triggered.
func (l *MemLedger) Deposit(asset custody.AssetID, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pool[asset]+amount < l.pool[asset] {
		return ErrBalanceOverflow
	}
	l.pool[asset] += amount
	return nil
}

// BalanceOf reports the pool's balance of the asset.
func (l *MemLedger) BalanceOf(asset custody.AssetID) (uint64, error) {
	if l.BalanceErr != nil {
		return 0, l.BalanceErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pool[asset], nil
}

// Transfer debits the pool and credits the recipient's account.
func (l *MemLedger) Transfer(asset custody.AssetID, recipient custody.Identity, amount uint64) error {
	if recipient == custody.NoIdentity {
		return ErrInvalidRecipient
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if l.BeforeTransfer != nil {
		if err := l.BeforeTransfer(asset, recipient, amount); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pool[asset] < amount {
		return ErrInsufficientFunds
	}
	l.pool[asset] -= amount
	if l.accounts[recipient] == nil {
		l.accounts[recipient] = make(map[custody.AssetID]uint64)
	}
	l.accounts[recipient][asset] += amount
	return nil
}

// AccountBalance reports what the recipient has been paid so far.
func (l *MemLedger) AccountBalance(recipient custody.Identity, asset custody.AssetID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[recipient][asset]
}
