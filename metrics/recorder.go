// Package metrics records page and verification metrics to Prometheus and, optionally,
// CloudWatch.
// file: metrics/recorder.go
package metrics

// Recorder is the set of application metrics.
type Recorder interface {
	// VerificationOutcome counts one finished answer check ("correct", "incorrect", "unavailable").
	VerificationOutcome(outcome string)
	// LivePages reports the number of open pages.
	LivePages(n int)
}

// Multi fans every call out to each recorder.
type Multi []Recorder

func (m Multi) VerificationOutcome(outcome string) {
	for _, r := range m {
		r.VerificationOutcome(outcome)
	}
}

func (m Multi) LivePages(n int) {
	for _, r := range m {
		r.LivePages(n)
	}
}
