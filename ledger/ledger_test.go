package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodiaorg/libcustodia-go/custody"
)

const (
	alice = custody.Identity("alice")
	tokA  = custody.AssetID("token-a")
)

func TestMemLedger(t *testing.T) {
	l := NewMemLedger()

	assert.ErrorIs(t, l.Deposit(custody.NativeAsset, 0), ErrZeroAmount)
	require.NoError(t, l.Deposit(custody.NativeAsset, 1000))
	require.NoError(t, l.Deposit(tokA, 50))

	balance, err := l.BalanceOf(custody.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance)

	assert.ErrorIs(t, l.Transfer(custody.NativeAsset, custody.NoIdentity, 10), ErrInvalidRecipient)
	assert.ErrorIs(t, l.Transfer(custody.NativeAsset, alice, 1001), ErrInsufficientFunds)

	require.NoError(t, l.Transfer(custody.NativeAsset, alice, 400))
	balance, err = l.BalanceOf(custody.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), balance)
	assert.Equal(t, uint64(400), l.AccountBalance(alice, custody.NativeAsset))
	assert.Equal(t, uint64(0), l.AccountBalance(alice, tokA))
}

func TestBoltLedger(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "ledger.db")
	l, err := OpenBoltLedger(dbPath)
	require.NoError(t, err)

	require.NoError(t, l.Deposit(custody.NativeAsset, 1000))
	require.NoError(t, l.Deposit(tokA, 77))

	// Failed transfers leave both sides untouched.
	assert.ErrorIs(t, l.Transfer(custody.NativeAsset, alice, 2000), ErrInsufficientFunds)
	balance, err := l.BalanceOf(custody.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance)
	paid, err := l.AccountBalance(alice, custody.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), paid)

	require.NoError(t, l.Transfer(custody.NativeAsset, alice, 600))
	require.NoError(t, l.Close())

	// Balances survive reopen.
	l, err = OpenBoltLedger(dbPath)
	require.NoError(t, err)
	defer l.Close()

	balance, err = l.BalanceOf(custody.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), balance)
	paid, err = l.AccountBalance(alice, custody.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), paid)

	balance, err = l.BalanceOf(tokA)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), balance)
}
