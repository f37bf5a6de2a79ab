package events

import (
	"github.com/sirupsen/logrus"

	"github.com/custodiaorg/libcustodia-go/custody"
)

// LogSink writes every event as a structured log line.
type LogSink struct {
	log *logrus.Logger
}

func NewLogSink(log *logrus.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Notify(ev custody.Event) {
	fields := logrus.Fields{
		"event":  string(ev.Type),
		"caller": string(ev.Caller),
		"at":     ev.At,
	}
	if ev.Recipient != custody.NoIdentity {
		fields["recipient"] = string(ev.Recipient)
	}
	switch ev.Type {
	case custody.EventBeneficiaryAdded, custody.EventBeneficiaryUpdated:
		fields["share_bps"] = ev.ShareBps
	case custody.EventClaimed, custody.EventEmergencyWithdrawal:
		fields["asset"] = string(ev.Asset)
		fields["amount"] = ev.Amount
	}
	s.log.WithFields(fields).Info("custody event")
}
