package custody

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner   = Identity("owner")
	trusted = Identity("trusted-party")
	b1      = Identity("beneficiary-1")
	b2      = Identity("beneficiary-2")
	b3      = Identity("beneficiary-3")
	tokenA  = AssetID("token-a")
)

// fakeLedger is an in-test asset ledger with scriptable hooks, in the manner
// of a mock service with function fields.
type fakeLedger struct {
	balances map[AssetID]uint64
	paid     map[Identity]map[AssetID]uint64

	// beforeTransfer, when set, runs before balances move; returning an
	// error makes the transfer fail.
	beforeTransfer func(asset AssetID, recipient Identity, amount uint64) error

	balanceErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balances: make(map[AssetID]uint64),
		paid:     make(map[Identity]map[AssetID]uint64),
	}
}

func (l *fakeLedger) BalanceOf(asset AssetID) (uint64, error) {
	if l.balanceErr != nil {
		return 0, l.balanceErr
	}
	return l.balances[asset], nil
}

func (l *fakeLedger) Transfer(asset AssetID, recipient Identity, amount uint64) error {
	if l.beforeTransfer != nil {
		if err := l.beforeTransfer(asset, recipient, amount); err != nil {
			return err
		}
	}
	if l.balances[asset] < amount {
		return errors.New("fakeLedger: insufficient balance")
	}
	l.balances[asset] -= amount
	if l.paid[recipient] == nil {
		l.paid[recipient] = make(map[AssetID]uint64)
	}
	l.paid[recipient][asset] += amount
	return nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// recordingSink collects emitted events.
type recordingSink struct {
	events []Event
}

func (s *recordingSink) Notify(ev Event) { s.events = append(s.events, ev) }

func (s *recordingSink) types() []EventType {
	out := make([]EventType, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Type
	}
	return out
}

func newTestSystem(t *testing.T) (*System, *fakeLedger, *fakeClock, *recordingSink) {
	t.Helper()
	ledger := newFakeLedger()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	sink := &recordingSink{}
	sys, err := New(Params{
		Owner:        owner,
		TrustedParty: trusted,
		Gateway:      ledger,
		Timeout:      24 * time.Hour,
		Events:       sink,
		Now:          clock.Now,
	})
	require.NoError(t, err)
	return sys, ledger, clock, sink
}

func TestNew(t *testing.T) {
	ledger := newFakeLedger()

	t.Run("empty trusted party", func(t *testing.T) {
		_, err := New(Params{Owner: owner, Gateway: ledger})
		assert.ErrorIs(t, err, ErrInvalidOracle)
	})

	t.Run("nil gateway", func(t *testing.T) {
		_, err := New(Params{Owner: owner, TrustedParty: trusted})
		assert.ErrorIs(t, err, ErrNilGateway)
	})

	t.Run("defaults", func(t *testing.T) {
		sys, err := New(Params{Owner: owner, TrustedParty: trusted, Gateway: ledger})
		require.NoError(t, err)
		assert.Equal(t, DefaultTimeout, sys.Timeout())
		assert.Equal(t, PhaseOpen, sys.State())
		assert.Equal(t, owner, sys.Owner())
		assert.Equal(t, trusted, sys.TrustedParty())
		assert.False(t, sys.LastActive().IsZero())
	})
}

func TestAddOrUpdateBeneficiary(t *testing.T) {
	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name      string
			caller    Identity
			recipient Identity
			shareBps  uint64
			want      error
		}{
			{"not owner", b1, b1, 100, ErrUnauthorized},
			{"null recipient", owner, NoIdentity, 100, ErrInvalidBeneficiary},
			{"zero share", owner, b1, 0, ErrInvalidShare},
			{"share above 10000", owner, b1, 10001, ErrInvalidShare},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				sys, _, _, _ := newTestSystem(t)
				err := sys.AddOrUpdateBeneficiary(tt.caller, tt.recipient, tt.shareBps)
				assert.ErrorIs(t, err, tt.want)
				assert.Empty(t, sys.Beneficiaries())
			})
		}
	})

	t.Run("add then update", func(t *testing.T) {
		sys, _, _, sink := newTestSystem(t)

		require.NoError(t, sys.AddOrUpdateBeneficiary(owner, b1, 6000))
		require.NoError(t, sys.AddOrUpdateBeneficiary(owner, b2, 4000))
		assert.Equal(t, []Identity{b1, b2}, sys.Beneficiaries())
		assert.Equal(t, uint64(10000), sys.TotalShareBps())

		// Updating an existing entry replaces the share, it does not stack.
		require.NoError(t, sys.AddOrUpdateBeneficiary(owner, b1, 5000))
		got, err := sys.Beneficiary(b1)
		require.NoError(t, err)
		assert.Equal(t, uint64(5000), got.ShareBps)
		assert.False(t, got.Claimed)

		assert.Equal(t, []EventType{EventBeneficiaryAdded, EventBeneficiaryAdded, EventBeneficiaryUpdated}, sink.types())
	})

	t.Run("allocation exceeded leaves registry unchanged", func(t *testing.T) {
		sys, _, _, _ := newTestSystem(t)
		require.NoError(t, sys.AddOrUpdateBeneficiary(owner, b1, 6000))
		require.NoError(t, sys.AddOrUpdateBeneficiary(owner, b2, 4000))

		err := sys.AddOrUpdateBeneficiary(owner, b3, 1)
		assert.ErrorIs(t, err, ErrAllocationExceeded)
		assert.Equal(t, []Identity{b1, b2}, sys.Beneficiaries())
		assert.Equal(t, uint64(10000), sys.TotalShareBps())

		// An update that would overflow fails the same way.
		err = sys.AddOrUpdateBeneficiary(owner, b2, 4001)
		assert.ErrorIs(t, err, ErrAllocationExceeded)
		got, err2 := sys.Beneficiary(b2)
		require.NoError(t, err2)
		assert.Equal(t, uint64(4000), got.ShareBps)
	})

	t.Run("read-only after trigger", func(t *testing.T) {
		sys, _, _, _ := newTestSystem(t)
		require.NoError(t, sys.AddOrUpdateBeneficiary(owner, b1, 1000))
		require.NoError(t, sys.Trigger(trusted))

		assert.ErrorIs(t, sys.AddOrUpdateBeneficiary(owner, b2, 1000), ErrAlreadyFinalized)
		assert.ErrorIs(t, sys.RemoveBeneficiary(owner, b1), ErrAlreadyFinalized)
	})
}

func TestRemoveBeneficiary(t *testing.T) {
	sys, _, _, sink := newTestSystem(t)
	require.NoError(t, sys.AddOrUpdateBeneficiary(owner, b1, 100))
	require.NoError(t, sys.AddOrUpdateBeneficiary(owner, b2, 100))
	require.NoError(t, sys.AddOrUpdateBeneficiary(owner, b3, 100))

	assert.ErrorIs(t, sys.RemoveBeneficiary(b1, b2), ErrUnauthorized)
	assert.ErrorIs(t, sys.RemoveBeneficiary(owner, Identity("nobody")), ErrInvalidBeneficiary)

	require.NoError(t, sys.RemoveBeneficiary(owner, b1))
	// Swap-remove: the last entry takes the removed slot.
	assert.Equal(t, []Identity{b3, b2}, sys.Beneficiaries())
	assert.Equal(t, uint64(200), sys.TotalShareBps())

	_, err := sys.Beneficiary(b1)
	assert.ErrorIs(t, err, ErrInvalidBeneficiary)

	assert.Equal(t, EventBeneficiaryRemoved, sink.events[len(sink.events)-1].Type)
}

func TestRecordActivity(t *testing.T) {
	sys, _, clock, _ := newTestSystem(t)
	start := sys.LastActive()

	assert.ErrorIs(t, sys.RecordActivity(trusted), ErrUnauthorized)
	assert.Equal(t, start, sys.LastActive())

	clock.advance(6 * time.Hour)
	require.NoError(t, sys.RecordActivity(owner))
	assert.Equal(t, start.Add(6*time.Hour), sys.LastActive())
}

func TestTimeoutElapsed(t *testing.T) {
	sys, _, clock, _ := newTestSystem(t)
	start := clock.Now()

	assert.False(t, sys.TimeoutElapsed(start))
	assert.False(t, sys.TimeoutElapsed(start.Add(24*time.Hour-time.Nanosecond)))
	// Boundary is inclusive: now == lastActive + timeout counts as elapsed.
	assert.True(t, sys.TimeoutElapsed(start.Add(24*time.Hour)))

	clock.advance(12 * time.Hour)
	require.NoError(t, sys.RecordActivity(owner))
	assert.False(t, sys.TimeoutElapsed(start.Add(24*time.Hour)))
	assert.True(t, sys.TimeoutElapsed(start.Add(36*time.Hour)))
}

func TestTrigger(t *testing.T) {
	t.Run("empty registry", func(t *testing.T) {
		sys, _, _, _ := newTestSystem(t)
		assert.ErrorIs(t, sys.Trigger(trusted), ErrNoBeneficiaries)
	})

	t.Run("trusted party before timeout", func(t *testing.T) {
		sys, _, _, sink := newTestSystem(t)
		require.NoError(t, sys.AddOrUpdateBeneficiary(owner, b1, 100))

		require.NoError(t, sys.Trigger(trusted))
		assert.Equal(t, PhaseDistributing, sys.State())

		last := sink.events[len(sink.events)-1]
		assert.Equal(t, EventTriggered, last.Type)
		assert.Equal(t, trusted, last.Caller)
	})

	t.Run("anyone after timeout", func(t *testing.T) {
		sys, _, clock, _ := newTestSystem(t)
		require.NoError(t, sys.AddOrUpdateBeneficiary(owner, b1, 100))

		assert.ErrorIs(t, sys.Trigger(Identity("anyone")), ErrTimeLockNotExpired)
		assert.Equal(t, PhaseOpen, sys.State())

		clock.advance(24 * time.Hour)
		require.NoError(t, sys.Trigger(Identity("anyone")))
		assert.Equal(t, PhaseDistributing, sys.State())
	})

	t.Run("at most once", func(t *testing.T) {
		sys, _, _, _ := newTestSystem(t)
		require.NoError(t, sys.AddOrUpdateBeneficiary(owner, b1, 100))
		require.NoError(t, sys.Trigger(trusted))

		assert.ErrorIs(t, sys.Trigger(trusted), ErrAlreadyTriggered)
		assert.Equal(t, PhaseDistributing, sys.State())
	})
}

func TestShareAmount(t *testing.T) {
	tests := []struct {
		balance  uint64
		shareBps uint64
		want     uint64
	}{
		{1000, 6000, 600},
		{400, 4000, 160},
		{1, 9999, 0}, // truncation strands dust
		{3, 3333, 0}, // floor, not round
		{10000, 1, 1},
		{^uint64(0), 10000, ^uint64(0)}, // full balance at 100%, no overflow
		{^uint64(0), 5000, ^uint64(0) / 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shareAmount(tt.balance, tt.shareBps),
			"shareAmount(%d, %d)", tt.balance, tt.shareBps)
	}
}
