package cce

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// LoopbackDescription is the acknowledgement text of the JNET loopback queue
const LoopbackDescription = "Routed to JNET Loopback Queue"

// Client drives the submit, poll and retrieve protocol over a Transport
type Client struct {
	transport      Transport
	logger         zerolog.Logger
	clock          Clock
	ledger         Ledger
	correlationIDs CorrelationIDFunc
	recordLimit    int
	gracePeriod    time.Duration
	pollInterval   time.Duration
	fetchTimeout   time.Duration
}

// NewClient creates a new CCE client
func NewClient(transport Transport, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, errors.New("transport is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.ledger == nil {
		o.ledger = NewMemoryLedger(o.clock)
	}

	return &Client{
		transport:      transport,
		logger:         logger,
		clock:          o.clock,
		ledger:         o.ledger,
		correlationIDs: o.correlationIDs,
		recordLimit:    o.recordLimit,
		gracePeriod:    o.gracePeriod,
		pollInterval:   o.pollInterval,
		fetchTimeout:   o.fetchTimeout,
	}, nil
}

// Submit asks JNET to look up key. An empty correlationID is replaced by a
// generated one.
func (c *Client) Submit(ctx context.Context, key BusinessKey, correlationID string) (SubmittedRequest, error) {
	if err := key.Validate(); err != nil {
		return SubmittedRequest{}, err
	}

	now := c.clock.Now()
	if correlationID == "" {
		correlationID = c.correlationIDs(now)
	}
	req := SubmittedRequest{
		CorrelationID: correlationID,
		Key:           key,
		SubmittedAt:   now,
	}

	reply, err := c.transport.Submit(ctx, req)
	if err != nil {
		return SubmittedRequest{}, fmt.Errorf("failed to submit %s: %w", key, err)
	}

	resp, ok := reply.Child("RequestCourtCaseEventResponse")
	if !ok {
		return SubmittedRequest{}, newError(KindProtocol, reply, "submit reply for %s has no RequestCourtCaseEventResponse", key)
	}
	req.Status, _ = resp.Text("ResponseStatusCode")
	req.Description, _ = resp.Text("ResponseStatusDescriptionText")
	if req.Status != "SUCCESS" {
		return SubmittedRequest{}, newError(KindUnknown, reply, "submit for %s returned %q: %s", key, req.Status, req.Description)
	}
	req.Loopback = req.Description == LoopbackDescription

	c.logger.Info().
		Str("tracking_id", req.CorrelationID).
		Str("key", key.String()).
		Bool("loopback", req.Loopback).
		Msg("Successfully submitted request")
	return req, nil
}
