// Package events provides custody.Sink implementations: structured log
// output, a Postgres audit log, and a fan-out combinator. Sinks are
// observational only; none of them may fail the operation that emitted the
// event, so persistence errors are logged and swallowed.
package events

import "github.com/custodiaorg/libcustodia-go/custody"

// MultiSink fans every event out to each member, in order.
type MultiSink []custody.Sink

func (m MultiSink) Notify(ev custody.Event) {
	for _, s := range m {
		s.Notify(ev)
	}
}
