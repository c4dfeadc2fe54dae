package cce

import (
	"context"
	"strings"
)

// ReconcileOptions controls which classified records Reconcile fetches
type ReconcileOptions struct {
	// IgnoreQueued leaves queued records without a ready counterpart untouched
	IgnoreQueued bool
	// IgnoreNotFound never fetches records resolved as not found
	IgnoreNotFound bool
	// Check raises aggregate NotFound and Queued errors before any fetch
	Check bool
}

// DefaultReconcileOptions returns options that leave lone queued records alone.
func DefaultReconcileOptions() ReconcileOptions {
	return ReconcileOptions{IgnoreQueued: true}
}

// ReconcilePlan lists what Reconcile will do with each record
type ReconcilePlan struct {
	// Keep are fetched and returned
	Keep []RequestStatus
	// Discard are fetched only to drain stale queued placeholders
	Discard []RequestStatus
	// Skip are left in the queue
	Skip []RequestStatus
}

type correlationGroup struct {
	queued   []RequestStatus
	notFound []RequestStatus
	ready    []RequestStatus
}

// PlanReconcile partitions statuses by tracking id and decides, without any
// I/O, which records to fetch. A queued record whose tracking id also has a
// ready record is a stale placeholder and is drained. A record that is
// neither queued nor resolved is Unclassifiable and nothing is fetched.
func PlanReconcile(statuses []RequestStatus, opts ReconcileOptions) (ReconcilePlan, error) {
	groups := make(map[string]*correlationGroup)
	for _, s := range statuses {
		if !s.Queued && !s.IsResolved() {
			return ReconcilePlan{}, newError(KindUnclassifiable, s, "record %s (tracking id %s) is neither queued nor resolved: %q", s.FileID, s.CorrelationID, s.Text)
		}
		g, ok := groups[s.CorrelationID]
		if !ok {
			g = &correlationGroup{}
			groups[s.CorrelationID] = g
		}
		switch {
		case s.Queued:
			g.queued = append(g.queued, s)
		case s.IsFound():
			g.ready = append(g.ready, s)
		default:
			g.notFound = append(g.notFound, s)
		}
	}

	var plan ReconcilePlan
	var notFound, queued []RequestStatus
	for _, s := range statuses {
		g := groups[s.CorrelationID]
		switch {
		case s.Queued && len(g.ready) > 0:
			plan.Discard = append(plan.Discard, s)
		case s.Queued && opts.IgnoreQueued:
			plan.Skip = append(plan.Skip, s)
		case s.Queued:
			queued = append(queued, s)
			plan.Keep = append(plan.Keep, s)
		case s.IsFound():
			plan.Keep = append(plan.Keep, s)
		case opts.IgnoreNotFound:
			plan.Skip = append(plan.Skip, s)
		default:
			notFound = append(notFound, s)
			plan.Keep = append(plan.Keep, s)
		}
	}

	if opts.Check && len(notFound) > 0 {
		return ReconcilePlan{}, newError(KindNotFound, notFound, "JNET did not find %s", describeStatuses(notFound))
	}
	if opts.Check && len(queued) > 0 {
		return ReconcilePlan{}, newError(KindQueued, queued, "still queued: %s", describeStatuses(queued))
	}
	return plan, nil
}

// Reconcile fetches the records PlanReconcile keeps, then drains the stale
// queued ones. When a kept fetch fails, the documents already consumed are
// returned together with the error.
func (c *Client) Reconcile(ctx context.Context, statuses []RequestStatus, opts ReconcileOptions) ([]RetrievedDocument, error) {
	plan, err := PlanReconcile(statuses, opts)
	if err != nil {
		return nil, err
	}

	docs := make([]RetrievedDocument, 0, len(plan.Keep))
	for _, s := range plan.Keep {
		r, err := c.Fetch(ctx, s.FileID)
		if err != nil {
			return docs, err
		}
		docs = append(docs, r.Document)
	}

	for _, s := range plan.Discard {
		if _, err := c.Fetch(ctx, s.FileID); err != nil {
			c.logger.Warn().Err(err).
				Str("file_id", string(s.FileID)).
				Str("tracking_id", s.CorrelationID).
				Msg("Failed to drain queued placeholder")
			continue
		}
		c.logger.Debug().Str("file_id", string(s.FileID)).Msg("Drained queued placeholder")
	}

	if len(plan.Skip) > 0 {
		c.logger.Debug().Msgf("Left %d queue records untouched", len(plan.Skip))
	}
	return docs, nil
}

func describeStatuses(statuses []RequestStatus) string {
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		label := s.BusinessKey().String()
		if label == "" {
			label = strings.TrimSpace(s.Text)
		}
		if label == "" {
			label = string(s.FileID)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}
