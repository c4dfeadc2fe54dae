package cce

import "time"

// Default client settings
const (
	DefaultRecordLimit  = 500
	DefaultGracePeriod  = 5 * time.Second
	DefaultPollInterval = 10 * time.Second
	DefaultFetchTimeout = 100 * time.Second
)

type clientOptions struct {
	recordLimit    int
	gracePeriod    time.Duration
	pollInterval   time.Duration
	fetchTimeout   time.Duration
	clock          Clock
	ledger         Ledger
	correlationIDs CorrelationIDFunc
}

// Option configures a Client
type Option func(*clientOptions)

func defaultOptions() clientOptions {
	return clientOptions{
		recordLimit:    DefaultRecordLimit,
		gracePeriod:    DefaultGracePeriod,
		pollInterval:   DefaultPollInterval,
		fetchTimeout:   DefaultFetchTimeout,
		clock:          realClock{},
		correlationIDs: DateCorrelationIDs,
	}
}

// WithRecordLimit sets the default number of queue records requested per poll
func WithRecordLimit(limit int) Option {
	return func(o *clientOptions) {
		if limit > 0 {
			o.recordLimit = limit
		}
	}
}

// WithGracePeriod sets how long FetchDocuments waits before its first poll
func WithGracePeriod(d time.Duration) Option {
	return func(o *clientOptions) {
		if d >= 0 {
			o.gracePeriod = d
		}
	}
}

// WithPollInterval sets the delay between polls
func WithPollInterval(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithFetchTimeout sets the default FetchDocuments budget
func WithFetchTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.fetchTimeout = d
		}
	}
}

// WithClock replaces the wall clock, mainly for tests
func WithClock(clock Clock) Option {
	return func(o *clientOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLedger sets where consumed file ids are recorded
func WithLedger(ledger Ledger) Option {
	return func(o *clientOptions) {
		if ledger != nil {
			o.ledger = ledger
		}
	}
}

// WithCorrelationIDs sets the generator used when Submit is given no tracking id
func WithCorrelationIDs(fn CorrelationIDFunc) Option {
	return func(o *clientOptions) {
		if fn != nil {
			o.correlationIDs = fn
		}
	}
}
