package events

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodiaorg/libcustodia-go/custody"
)

type captureSink struct {
	events []custody.Event
}

func (s *captureSink) Notify(ev custody.Event) { s.events = append(s.events, ev) }

func TestMultiSink(t *testing.T) {
	a := &captureSink{}
	b := &captureSink{}
	sink := MultiSink{a, b}

	ev := custody.Event{Type: custody.EventTriggered, Caller: "trusted"}
	sink.Notify(ev)

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, ev, a.events[0])
}

func TestLogSink(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	sink := NewLogSink(log)

	sink.Notify(custody.Event{
		Type:      custody.EventClaimed,
		At:        time.Unix(1_700_000_000, 0),
		Caller:    "b1",
		Recipient: "b1",
		Asset:     "token-a",
		Amount:    600,
	})

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "claimed", entry.Data["event"])
	assert.Equal(t, uint64(600), entry.Data["amount"])
	assert.Equal(t, "token-a", entry.Data["asset"])

	hook.Reset()
	sink.Notify(custody.Event{
		Type:      custody.EventBeneficiaryAdded,
		Caller:    "owner",
		Recipient: "b2",
		ShareBps:  4000,
	})
	entry = hook.LastEntry()
	assert.Equal(t, uint64(4000), entry.Data["share_bps"])
	assert.NotContains(t, entry.Data, "amount")
}
