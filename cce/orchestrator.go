package cce

import (
	"context"
	"time"
)

// FetchDocuments submits a lookup for key and waits for the answer. A
// non-positive timeout uses the client's default fetch timeout.
func (c *Client) FetchDocuments(ctx context.Context, key BusinessKey, timeout time.Duration) ([]RetrievedDocument, error) {
	req, err := c.Submit(ctx, key, "")
	if err != nil {
		return nil, err
	}
	return c.AwaitDocuments(ctx, req, timeout)
}

// AwaitDocuments polls for the answer to an already submitted request until a
// record for it is resolved, then reconciles and returns the documents. Empty
// polls and polls holding only queued records are retried until the timeout.
func (c *Client) AwaitDocuments(ctx context.Context, req SubmittedRequest, timeout time.Duration) ([]RetrievedDocument, error) {
	if timeout <= 0 {
		timeout = c.fetchTimeout
	}
	start := c.clock.Now()

	if err := c.clock.Sleep(ctx, c.gracePeriod); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		statuses, err := c.Poll(ctx, PollOptions{
			CorrelationID: req.CorrelationID,
			Key:           req.Key,
			PendingOnly:   true,
		})
		if err != nil {
			return nil, err
		}

		if hasResolved(statuses) {
			c.logger.Debug().
				Str("tracking_id", req.CorrelationID).
				Int("attempt", attempt).
				Msg("Request resolved, reconciling")
			return c.Reconcile(ctx, statuses, DefaultReconcileOptions())
		}

		elapsed := c.clock.Now().Sub(start)
		if elapsed > timeout {
			return nil, newError(KindTimeout, req, "no results for %s (tracking id %s) after %s", req.Key, req.CorrelationID, elapsed.Round(time.Second))
		}

		c.logger.Debug().
			Str("tracking_id", req.CorrelationID).
			Int("attempt", attempt).
			Int("queued", len(statuses)).
			Dur("elapsed", elapsed).
			Msg("No results yet, waiting")

		if err := c.clock.Sleep(ctx, c.pollInterval); err != nil {
			return nil, err
		}
	}
}

func hasResolved(statuses []RequestStatus) bool {
	for _, s := range statuses {
		if !s.Queued {
			return true
		}
	}
	return false
}
